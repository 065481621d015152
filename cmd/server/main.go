package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/cache"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/handlers"
	"github.com/yukikurage/project-management-api/internal/logger"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log := logger.Setup(cfg.GinMode != gin.ReleaseMode, cfg.LogLevel)
	zerolog.DefaultContextLogger = &log

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// One Redis pool serves both sessions and the cache
	pool := cache.NewRedisPool(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	defer pool.Close()

	var backend cache.Backend
	switch cfg.CacheBackend {
	case "memory":
		memory := cache.NewMemoryBackend(0)
		defer memory.Close()
		backend = memory
	default:
		backend = cache.NewRedisBackend(pool)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	caches := cache.NewSet(backend, cache.TTLsFromConfig(cfg), cfg.CacheTimeout, log, cache.NewMetrics(registry))

	// Repositories and services
	orgRepo := repository.NewOrganizationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	userRepo := repository.NewUserRepository(db)

	resolver := access.NewResolver(orgRepo, projectRepo, taskRepo)

	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, userRepo, resolver, caches)
	projectService := services.NewProjectService(projectRepo, orgRepo, resolver, caches)
	taskService := services.NewTaskService(taskRepo, projectRepo, resolver, caches)
	commentService := services.NewCommentService(commentRepo, taskService, resolver, caches)

	// Initialize Gin router
	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())

	// Setup session middleware with Redis
	store, err := redisStore.NewStoreWithPool(pool, []byte(cfg.SessionSecret))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis session store")
	}
	isProduction := cfg.GinMode == gin.ReleaseMode
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	h := &handlers.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Organization: handlers.NewOrganizationHandler(orgService),
		Project:      handlers.NewProjectHandler(projectService),
		Task:         handlers.NewTaskHandler(taskService),
		Comment:      handlers.NewCommentHandler(commentService),
		Health:       handlers.NewHealthHandler(db, caches),
	}
	h.Register(r, middleware.RequireAuth(authService), middleware.ResolveOrganization(orgService))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("cache", cfg.CacheBackend).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
