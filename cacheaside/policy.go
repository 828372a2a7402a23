package cacheaside

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-todo-cache/cache"
	"github.com/goliatone/go-todo-cache/telemetry"
)

// Fetch loads a value from the store on a miss.
type Fetch[T any] func(ctx context.Context) (T, error)

// Policy applies the cache-aside protocol over a backend.
type Policy struct {
	backend cache.Backend
	keys    cache.KeySerializer
	codec   cache.Codec
	cfg     cache.Config
	sink    telemetry.Sink
	logger  *slog.Logger
	flight  singleflight.Group
}

// Option customises a Policy.
type Option func(*Policy)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Policy) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithSink(sink telemetry.Sink) Option {
	return func(p *Policy) {
		if sink != nil {
			p.sink = sink
		}
	}
}

func WithKeySerializer(keys cache.KeySerializer) Option {
	return func(p *Policy) {
		if keys != nil {
			p.keys = keys
		}
	}
}

func WithCodec(codec cache.Codec) Option {
	return func(p *Policy) {
		if codec != nil {
			p.codec = codec
		}
	}
}

// New creates a Policy. cfg supplies region TTLs and invalidation bounds.
func New(backend cache.Backend, cfg cache.Config, opts ...Option) *Policy {
	if cfg.InvalidationTimeout <= 0 {
		cfg.InvalidationTimeout = cache.DefaultConfig().InvalidationTimeout
	}

	p := &Policy{
		backend: backend,
		keys:    cache.NewDefaultKeySerializer(),
		codec:   cache.NewMsgpackCodec(),
		cfg:     cfg,
		sink:    telemetry.Nop{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Backend exposes the underlying backend.
func (p *Policy) Backend() cache.Backend {
	return p.backend
}

// Read serves l from the cache, or from fetch on a miss. See the package
// documentation for the full protocol.
func Read[T any](ctx context.Context, p *Policy, l Lookup, fetch Fetch[T]) (T, error) {
	key := p.Key(l)

	if data, ok := p.lookup(ctx, l.Region, key); ok {
		v, err := cache.Decode[T](p.codec, data)
		if err == nil {
			p.inc(telemetry.CacheHit)
			return v, nil
		}
		p.logger.Warn("discarding undecodable cache entry", "region", l.Region, "key", key, "err", err)
		p.inc(telemetry.CacheErrors)
	}
	p.inc(telemetry.CacheMiss)

	res, err, _ := p.flight.Do(key, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		data, err := cache.Encode(p.codec, v)
		if err != nil {
			return nil, err
		}
		p.populate(ctx, l, key, data)
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	data, ok := res.([]byte)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: singleflight returned %T", cache.ErrInvalidResultType, res)
	}
	return cache.Decode[T](p.codec, data)
}

// lookup returns the cached payload for key. Backend errors read as a miss.
func (p *Policy) lookup(ctx context.Context, region, key string) ([]byte, bool) {
	data, hit, err := p.backend.Get(ctx, key)
	if err != nil {
		p.logger.Warn("cache get failed, reading from store", "region", region, "key", key, "err", err)
		p.inc(telemetry.CacheErrors)
		return nil, false
	}
	return data, hit
}

// populate stores data under key. A tracked key that cannot be indexed is not
// stored, since no write could evict it.
func (p *Policy) populate(ctx context.Context, l Lookup, key string, data []byte) {
	ttl := p.cfg.TTLFor(l.Region)

	if l.Group != "" {
		if err := p.backend.Track(ctx, l.Group, key, ttl); err != nil {
			p.logger.Warn("cache track failed, skipping set", "region", l.Region, "key", key, "err", err)
			p.inc(telemetry.CacheErrors)
			return
		}
	}

	if err := p.backend.Set(ctx, key, data, ttl); err != nil {
		p.logger.Warn("cache set failed", "region", l.Region, "key", key, "err", err)
		p.inc(telemetry.CacheErrors)
	}
}

// Evict deletes the keys of lookups after a committed write.
func (p *Policy) Evict(ctx context.Context, lookups ...Lookup) {
	keys := make([]string, len(lookups))
	for i, l := range lookups {
		keys[i] = p.Key(l)
	}

	p.invalidate(ctx, keys, func(ctx context.Context) error {
		return p.backend.Delete(ctx, keys...)
	})
}

// EvictGroup deletes every key tracked under group together with the keys of
// extra, then forgets the group's members.
func (p *Policy) EvictGroup(ctx context.Context, group string, extra ...Lookup) {
	keys := make([]string, len(extra))
	for i, l := range extra {
		keys[i] = p.Key(l)
	}

	p.invalidate(ctx, append([]string{group}, keys...), func(ctx context.Context) error {
		members, err := p.backend.Members(ctx, group)
		if err != nil {
			return err
		}
		if err := p.backend.Delete(ctx, append(members, keys...)...); err != nil {
			return err
		}
		return p.backend.Forget(ctx, group, members...)
	})
}

func (p *Policy) invalidate(ctx context.Context, keys []string, op func(context.Context) error) {
	detached := context.WithoutCancel(ctx)

	var errs []error
	for attempt := 0; attempt <= p.cfg.InvalidationRetries; attempt++ {
		actx, cancel := context.WithTimeout(detached, p.cfg.InvalidationTimeout)
		err := op(actx)
		cancel()
		if err == nil {
			return
		}
		errs = append(errs, err)
	}

	p.logger.Error("cache invalidation failed",
		"keys", keys,
		"attempts", len(errs),
		"err", errors.Join(errs...),
	)
	p.inc(telemetry.InvalidationFailures)
}

func (p *Policy) inc(name string) {
	telemetry.SafeInc(p.sink, p.logger, name)
}

// TTL returns the lifetime applied to region.
func (p *Policy) TTL(region string) time.Duration {
	return p.cfg.TTLFor(region)
}
