package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPath        string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	SessionSecret string
	GinMode       string
	ListenAddr    string
	LogLevel      string

	// CacheBackend selects "redis" or "memory".
	CacheBackend         string
	CacheTimeout         time.Duration
	OrganizationCacheTTL time.Duration
	ProjectCacheTTL      time.Duration
	TaskCacheTTL         time.Duration
	CommentCacheTTL      time.Duration
}

func Load() *Config {
	return &Config{
		DBDriver:             getEnv("DB_DRIVER", "postgres"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "pmuser"),
		DBPassword:           getEnv("DB_PASSWORD", "pmpassword"),
		DBName:               getEnv("DB_NAME", "project_management"),
		DBPath:               getEnv("DB_PATH", "project_management.db"),
		RedisHost:            getEnv("REDIS_HOST", "localhost"),
		RedisPort:            getEnv("REDIS_PORT", "6379"),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		SessionSecret:        getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:              getEnv("GIN_MODE", "debug"),
		ListenAddr:           getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		CacheBackend:         getEnv("CACHE_BACKEND", "redis"),
		CacheTimeout:         getEnvDuration("CACHE_TIMEOUT", 100*time.Millisecond),
		OrganizationCacheTTL: getEnvDuration("CACHE_TTL_ORGANIZATIONS", 10*time.Minute),
		ProjectCacheTTL:      getEnvDuration("CACHE_TTL_PROJECTS", 5*time.Minute),
		TaskCacheTTL:         getEnvDuration("CACHE_TTL_TASKS", 3*time.Minute),
		CommentCacheTTL:      getEnvDuration("CACHE_TTL_COMMENTS", 2*time.Minute),
	}
}

// RedisAddr returns host:port of the Redis server shared by sessions and the cache.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
