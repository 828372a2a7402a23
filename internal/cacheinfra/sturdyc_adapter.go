package cacheinfra

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-todo-cache/cache"
)

// sturdycBackend keeps one sturdyc client per region. sturdyc fixes the TTL
// per client, so the region name (the key prefix before "::") selects the
// client and every region keeps its own lifetime.
type sturdycBackend struct {
	cfg     cache.Config
	regions *xsync.MapOf[string, *sturdyc.Client[[]byte]]
	index   *memoryIndex
}

// NewSturdycBackend creates the in-process backend.
// Missing record storage is never enabled: absence is not cached.
func NewSturdycBackend(cfg cache.Config) (cache.Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &sturdycBackend{
		cfg:     cfg,
		regions: xsync.NewMapOf[string, *sturdyc.Client[[]byte]](),
		index:   newMemoryIndex(time.Now),
	}, nil
}

func (b *sturdycBackend) sturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option
	if b.cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(b.cfg.EvictionInterval))
	}
	return options
}

// client returns the region client, creating it with ttl on first use.
func (b *sturdycBackend) client(region string, ttl time.Duration) *sturdyc.Client[[]byte] {
	c, _ := b.regions.LoadOrCompute(region, func() *sturdyc.Client[[]byte] {
		return sturdyc.New[[]byte](
			b.cfg.Capacity,
			b.cfg.NumShards,
			ttl,
			b.cfg.EvictionPercentage,
			b.sturdycOptions()...,
		)
	})
	return c
}

func (b *sturdycBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	c, ok := b.regions.Load(cache.RegionOf(key))
	if !ok {
		return nil, false, nil
	}
	value, ok := c.Get(key)
	return value, ok, nil
}

// Set stores value under key. The region's client is created with ttl the
// first time the region is written; later writes share that lifetime.
func (b *sturdycBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return &cache.ConfigError{Field: "ttl", Message: "must be greater than 0"}
	}
	b.client(cache.RegionOf(key), ttl).Set(key, value)
	return nil
}

func (b *sturdycBackend) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if c, ok := b.regions.Load(cache.RegionOf(key)); ok {
			c.Delete(key)
		}
	}
	return nil
}

func (b *sturdycBackend) Track(ctx context.Context, group, key string, ttl time.Duration) error {
	return b.index.Track(ctx, group, key, ttl)
}

func (b *sturdycBackend) Members(ctx context.Context, group string) ([]string, error) {
	return b.index.Members(ctx, group)
}

func (b *sturdycBackend) Forget(ctx context.Context, group string, keys ...string) error {
	return b.index.Forget(ctx, group, keys...)
}

func (b *sturdycBackend) Close() error {
	return nil
}
