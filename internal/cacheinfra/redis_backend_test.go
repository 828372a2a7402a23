package cacheinfra

import (
	"context"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Requires redis on localhost:6379; skipped otherwise.
const testRedisAddr = "localhost:6379"

func setupRedisBackend(t *testing.T, prefix string) *RedisBackend {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	cleanupKeys(ctx, client, prefix+"*")
	t.Cleanup(func() {
		cleanupKeys(ctx, client, prefix+"*")
		client.Close()
	})

	return NewRedisBackend(client, prefix)
}

func cleanupKeys(ctx context.Context, client *redis.Client, pattern string) {
	var cursor uint64
	for {
		keys, next, err := client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
}

func TestRedisBackend_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	b := setupRedisBackend(t, "todo-test-kv:")

	if _, hit, err := b.Get(ctx, "task-by-id::1"); hit || err != nil {
		t.Fatalf("Get() on empty = hit %v, err %v", hit, err)
	}

	if err := b.Set(ctx, "task-by-id::1", []byte("one"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, hit, err := b.Get(ctx, "task-by-id::1")
	if err != nil || !hit || string(got) != "one" {
		t.Fatalf("Get() = %q, hit %v, err %v", got, hit, err)
	}

	if err := b.Delete(ctx, "task-by-id::1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := b.Get(ctx, "task-by-id::1"); hit {
		t.Error("expected miss after Delete()")
	}
}

func TestRedisBackend_KeyIndex(t *testing.T) {
	ctx := context.Background()
	b := setupRedisBackend(t, "todo-test-idx:")

	b.Track(ctx, "tasks-by-owner::1", "tasks-by-owner::1,10,0", time.Minute)
	b.Track(ctx, "tasks-by-owner::1", "tasks-by-owner::1,5,5", time.Minute)

	got, err := b.Members(ctx, "tasks-by-owner::1")
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	sort.Strings(got)
	want := []string{"tasks-by-owner::1,10,0", "tasks-by-owner::1,5,5"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Members() = %v, want %v", got, want)
	}

	if err := b.Forget(ctx, "tasks-by-owner::1", want...); err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	got, _ = b.Members(ctx, "tasks-by-owner::1")
	if len(got) != 0 {
		t.Errorf("Members() after Forget = %v", got)
	}
}
