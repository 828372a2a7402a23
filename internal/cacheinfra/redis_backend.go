package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/goliatone/go-todo-cache/cache"
)

// RedisBackend stores entries as plain redis strings and index groups as
// redis sets. Every key is namespaced with prefix.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisClient builds a client with the timeouts from cfg. Timeouts bound
// every cache call at the client, not in the policy.
func NewRedisClient(cfg cache.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) key(k string) string {
	return b.prefix + k
}

func (b *RedisBackend) groupKey(group string) string {
	return b.prefix + "index:" + group
}

// Ping checks connectivity.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return &cache.ConfigError{Field: "ttl", Message: "must be greater than 0"}
	}
	if err := b.client.Set(ctx, b.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = b.key(k)
	}
	if err := b.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Track adds key to the group set and pushes the set's expiry out to ttl, so
// a group never outlives its newest member by more than one TTL.
func (b *RedisBackend) Track(ctx context.Context, group, key string, ttl time.Duration) error {
	gk := b.groupKey(group)
	pipe := b.client.TxPipeline()
	pipe.SAdd(ctx, gk, key)
	pipe.Expire(ctx, gk, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis track %s: %w", group, err)
	}
	return nil
}

func (b *RedisBackend) Members(ctx context.Context, group string) ([]string, error) {
	members, err := b.client.SMembers(ctx, b.groupKey(group)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis members %s: %w", group, err)
	}
	return members, nil
}

func (b *RedisBackend) Forget(ctx context.Context, group string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	members := make([]any, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	if err := b.client.SRem(ctx, b.groupKey(group), members...).Err(); err != nil {
		return fmt.Errorf("redis forget %s: %w", group, err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}
