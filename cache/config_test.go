package cache

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() on defaults = %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %v, want %v", cfg.Backend, BackendMemory)
	}
	if cfg.InvalidationRetries != 1 {
		t.Errorf("InvalidationRetries = %d, want 1", cfg.InvalidationRetries)
	}
}

func TestConfig_TTLFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Regions = map[string]time.Duration{"task-by-id": time.Hour}

	if got := cfg.TTLFor("task-by-id"); got != time.Hour {
		t.Errorf("TTLFor(task-by-id) = %v, want %v", got, time.Hour)
	}
	if got := cfg.TTLFor("unknown"); got != cfg.TTL {
		t.Errorf("TTLFor(unknown) = %v, want %v", got, cfg.TTL)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(c *Config)
		field string
	}{
		{"unknown backend", func(c *Config) { c.Backend = "memcached" }, "Backend"},
		{"zero ttl", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"negative region ttl", func(c *Config) { c.Regions["task-count"] = -time.Second }, "Regions.task-count"},
		{"zero region ttl", func(c *Config) { c.Regions["user-by-id"] = 0 }, "Regions.user-by-id"},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "Capacity"},
		{"zero shards", func(c *Config) { c.NumShards = 0 }, "NumShards"},
		{"eviction too high", func(c *Config) { c.EvictionPercentage = 101 }, "EvictionPercentage"},
		{"redis without addr", func(c *Config) { c.Backend = BackendRedis; c.Redis.Addr = "" }, "Redis.Addr"},
		{"zero invalidation timeout", func(c *Config) { c.InvalidationTimeout = 0 }, "InvalidationTimeout"},
		{"negative retries", func(c *Config) { c.InvalidationRetries = -1 }, "InvalidationRetries"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mut(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("ConfigError.Field = %v, want %v", cfgErr.Field, tt.field)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Error() = %q, want it to mention %q", err.Error(), tt.field)
			}
		})
	}
}

func TestConfig_RedisSkipsMemorySizing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendRedis
	cfg.Capacity = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
