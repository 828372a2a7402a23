package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-todo-cache/cache"
	"github.com/goliatone/go-todo-cache/storage"
)

// config is everything taskd reads from the environment.
type config struct {
	HTTPPort        int
	ShutdownTimeout time.Duration
	Cache           cache.Config
	Storage         storage.Config
}

func loadConfig() config {
	cacheCfg := cache.DefaultConfig()
	cacheCfg.Backend = cache.BackendKind(getEnv("CACHE_BACKEND", string(cacheCfg.Backend)))
	cacheCfg.TTL = getEnvDuration("CACHE_TTL", cacheCfg.TTL)
	for region, ttl := range cacheCfg.Regions {
		cacheCfg.Regions[region] = getEnvDuration(regionEnv(region), ttl)
	}
	cacheCfg.Capacity = getEnvInt("CACHE_CAPACITY", cacheCfg.Capacity)
	cacheCfg.InvalidationTimeout = getEnvDuration("CACHE_INVALIDATION_TIMEOUT", cacheCfg.InvalidationTimeout)
	cacheCfg.InvalidationRetries = getEnvInt("CACHE_INVALIDATION_RETRIES", cacheCfg.InvalidationRetries)
	cacheCfg.Redis.Addr = getEnv("REDIS_ADDR", cacheCfg.Redis.Addr)
	cacheCfg.Redis.Password = getEnv("REDIS_PASSWORD", cacheCfg.Redis.Password)
	cacheCfg.Redis.DB = getEnvInt("REDIS_DB", cacheCfg.Redis.DB)
	cacheCfg.Redis.Prefix = getEnv("CACHE_PREFIX", cacheCfg.Redis.Prefix)

	storeCfg := storage.DefaultConfig()
	storeCfg.Driver = getEnv("DB_DRIVER", storeCfg.Driver)
	storeCfg.DSN = getEnv("DB_DSN", storeCfg.DSN)
	storeCfg.QueryTimeout = getEnvDuration("DB_QUERY_TIMEOUT", storeCfg.QueryTimeout)
	storeCfg.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", storeCfg.MaxOpenConns)

	return config{
		HTTPPort:        getEnvInt("HTTP_PORT", 3000),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		Cache:           cacheCfg,
		Storage:         storeCfg,
	}
}

// regionEnv names the TTL override of a region, e.g. CACHE_TTL_TASK_BY_ID.
func regionEnv(region string) string {
	return "CACHE_TTL_" + strings.ToUpper(strings.ReplaceAll(region, "-", "_"))
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		slog.Warn("invalid int value, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		slog.Warn("invalid duration value, using default", "key", key, "value", value, "default", defaultValue)
	}
	return defaultValue
}
