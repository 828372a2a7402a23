package cacheinfra

import (
	"context"
	"fmt"

	"github.com/goliatone/go-todo-cache/cache"
)

// New builds the backend selected by cfg.Backend. The redis backend is pinged
// once so a bad address fails at startup instead of on the first request.
func New(ctx context.Context, cfg cache.Config) (cache.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Backend {
	case cache.BackendRedis:
		b := NewRedisBackend(NewRedisClient(cfg.Redis), cfg.Redis.Prefix)
		if err := b.Ping(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return b, nil
	default:
		return NewSturdycBackend(cfg)
	}
}
