package cache

import (
	"fmt"
	"time"
)

// BackendKind selects the cache implementation.
type BackendKind string

const (
	BackendMemory BackendKind = "memory"
	BackendRedis  BackendKind = "redis"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Backend BackendKind

	// TTL applies to any region without an entry in Regions.
	TTL time.Duration

	// Regions overrides TTL per region name.
	Regions map[string]time.Duration

	// Memory backend (sturdyc) sizing, applied to every region client.
	Capacity           int
	NumShards          int
	EvictionPercentage int
	EvictionInterval   time.Duration

	Redis RedisConfig

	// InvalidationTimeout bounds each eviction attempt after a write.
	InvalidationTimeout time.Duration
	// InvalidationRetries is the number of extra attempts after the first one fails.
	InvalidationRetries int
}

// RedisConfig holds the connection settings for the redis backend.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	Prefix       string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		TTL:     5 * time.Minute,
		Regions: map[string]time.Duration{
			"task-by-id":     10 * time.Minute,
			"tasks-by-owner": time.Minute,
			"task-count":     time.Minute,
			"user-by-id":     30 * time.Minute,
		},
		Capacity:           10000,
		NumShards:          256,
		EvictionPercentage: 10,
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			Prefix:       "todo:",
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		InvalidationTimeout: 2 * time.Second,
		InvalidationRetries: 1,
	}
}

// TTLFor returns the TTL configured for region, or the default TTL.
func (c Config) TTLFor(region string) time.Duration {
	if ttl, ok := c.Regions[region]; ok {
		return ttl
	}
	return c.TTL
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRedis:
	default:
		return &ConfigError{Field: "Backend", Message: fmt.Sprintf("unknown backend %q", c.Backend)}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	for region, ttl := range c.Regions {
		if ttl <= 0 {
			return &ConfigError{Field: "Regions." + region, Message: "must be greater than 0"}
		}
	}

	if c.Backend == BackendMemory {
		if c.Capacity <= 0 {
			return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
		}
		if c.NumShards <= 0 {
			return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
		}
		if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
			return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
		}
	}

	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return &ConfigError{Field: "Redis.Addr", Message: "cannot be empty"}
	}

	if c.InvalidationTimeout <= 0 {
		return &ConfigError{Field: "InvalidationTimeout", Message: "must be greater than 0"}
	}

	if c.InvalidationRetries < 0 {
		return &ConfigError{Field: "InvalidationRetries", Message: "must be non-negative"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
