package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/project-management-api/internal/cache"
	"github.com/yukikurage/project-management-api/internal/database"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports whether the database and the cache answer
type HealthHandler struct {
	db     *gorm.DB
	caches *cache.Set
}

func NewHealthHandler(db *gorm.DB, caches *cache.Set) *HealthHandler {
	return &HealthHandler{
		db:     db,
		caches: caches,
	}
}

// Health replies 200 when both dependencies answer and 503 otherwise. Cache
// statistics are included either way.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	dbErr := database.Ping(ctx, h.db)
	cacheErr := h.caches.Ping(ctx)

	body := gin.H{
		"status":   "ok",
		"database": dbErr == nil,
		"cache":    cacheErr == nil,
		"stats":    h.caches.Stats(),
	}
	if dbErr != nil || cacheErr != nil {
		zerolog.Ctx(c.Request.Context()).Warn().
			AnErr("database_error", dbErr).
			AnErr("cache_error", cacheErr).
			Msg("health check failed")
		body["status"] = "unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	c.JSON(http.StatusOK, body)
}
