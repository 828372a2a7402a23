package cache

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidResultType is returned when a cached payload cannot be decoded
// into the type the caller asked for.
var ErrInvalidResultType = errors.New("cache: cached value has unexpected type")

// KeySerializer builds a cache key from a region name + arbitrary args.
// It is responsible for producing stable keys across calls and processes.
type KeySerializer interface {
	SerializeKey(region string, args ...any) string
}

// Cache is the byte level contract every backend implements.
// A miss is reported with hit == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (value []byte, hit bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// KeyIndex tracks which keys were populated under a group so they can be
// invalidated exactly, without scanning the keyspace.
type KeyIndex interface {
	Track(ctx context.Context, group, key string, ttl time.Duration) error
	Members(ctx context.Context, group string) ([]string, error)
	Forget(ctx context.Context, group string, keys ...string) error
}

// Backend is what the cache-aside policy needs from a concrete store.
type Backend interface {
	Cache
	KeyIndex
	Close() error
}
