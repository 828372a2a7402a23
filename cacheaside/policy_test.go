package cacheaside

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-todo-cache/cache"
	"github.com/goliatone/go-todo-cache/internal/cacheinfra"
	"github.com/goliatone/go-todo-cache/pkg/testsupport"
	"github.com/goliatone/go-todo-cache/telemetry"
)

type record struct {
	ID    int64    `msgpack:"id"`
	Name  string   `msgpack:"name"`
	Items []string `msgpack:"items"`
}

var errBackend = errors.New("backend unavailable")

func newTestPolicy(t *testing.T) (*Policy, *testsupport.FlakyBackend, *telemetry.Memory) {
	t.Helper()

	cfg := cache.DefaultConfig()
	cfg.Capacity = 1000
	cfg.NumShards = 4
	cfg.InvalidationTimeout = 100 * time.Millisecond

	inner, err := cacheinfra.NewSturdycBackend(cfg)
	if err != nil {
		t.Fatalf("NewSturdycBackend() error = %v", err)
	}
	backend := testsupport.NewFlakyBackend(inner)
	sink := telemetry.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(backend, cfg, WithSink(sink), WithLogger(logger)), backend, sink
}

// counter is a fetch that records how often the store was consulted.
type counter struct {
	calls atomic.Int64
	value record
	err   error
}

func (c *counter) fetch(ctx context.Context) (record, error) {
	c.calls.Add(1)
	return c.value, c.err
}

func TestRead_MissThenHit(t *testing.T) {
	ctx := context.Background()
	p, backend, sink := newTestPolicy(t)
	src := &counter{value: record{ID: 1, Name: "a", Items: []string{"x"}}}

	first, err := Read(ctx, p, p.TaskByID(1), src.fetch)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !backend.Has(ctx, "task-by-id::1") {
		t.Fatal("expected task-by-id::1 to be cached after a miss")
	}

	second, err := Read(ctx, p, p.TaskByID(1), src.fetch)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got := src.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("hit = %+v, miss = %+v", second, first)
	}
	if sink.Value(telemetry.CacheMiss) != 1 || sink.Value(telemetry.CacheHit) != 1 {
		t.Errorf("counters = %v", sink.Snapshot())
	}
}

func TestRead_ReturnsIndependentCopies(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPolicy(t)
	src := &counter{value: record{ID: 1, Items: []string{"x"}}}

	first, _ := Read(ctx, p, p.TaskByID(1), src.fetch)
	first.Items[0] = "mutated"

	second, _ := Read(ctx, p, p.TaskByID(1), src.fetch)
	if second.Items[0] != "x" {
		t.Errorf("cached value was aliased: %+v", second)
	}
}

func TestRead_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	p, backend, _ := newTestPolicy(t)
	notFound := errors.New("not found")
	src := &counter{err: notFound}

	for i := 0; i < 2; i++ {
		if _, err := Read(ctx, p, p.UserByID(5), src.fetch); !errors.Is(err, notFound) {
			t.Fatalf("Read() error = %v, want %v", err, notFound)
		}
	}

	if got := src.calls.Load(); got != 2 {
		t.Errorf("fetch calls = %d, want 2", got)
	}
	if backend.Has(ctx, "user-by-id::5") {
		t.Error("absence must not be cached")
	}
}

func TestRead_BackendErrorsFallBackToStore(t *testing.T) {
	ctx := context.Background()
	p, backend, sink := newTestPolicy(t)
	backend.FailGets(errBackend)
	backend.FailSets(errBackend)
	src := &counter{value: record{ID: 3}}

	got, err := Read(ctx, p, p.TaskByID(3), src.fetch)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.ID != 3 {
		t.Errorf("Read() = %+v", got)
	}
	if sink.Value(telemetry.CacheErrors) != 2 {
		t.Errorf("cache.errors = %d, want 2", sink.Value(telemetry.CacheErrors))
	}
}

func TestRead_UndecodableEntryIsAMiss(t *testing.T) {
	ctx := context.Background()
	p, backend, sink := newTestPolicy(t)
	backend.Set(ctx, "task-by-id::4", []byte{0xc1}, time.Minute)
	src := &counter{value: record{ID: 4, Name: "fresh"}}

	got, err := Read(ctx, p, p.TaskByID(4), src.fetch)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.Name != "fresh" || src.calls.Load() != 1 {
		t.Errorf("Read() = %+v after %d fetches", got, src.calls.Load())
	}
	if sink.Value(telemetry.CacheErrors) != 1 {
		t.Errorf("cache.errors = %d, want 1", sink.Value(telemetry.CacheErrors))
	}

	// The refetched value replaced the bad payload.
	if _, err := Read(ctx, p, p.TaskByID(4), src.fetch); err != nil || src.calls.Load() != 1 {
		t.Errorf("second Read() err = %v, fetches = %d", err, src.calls.Load())
	}
}

func TestRead_CoalescesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	p, _, _ := newTestPolicy(t)

	release := make(chan struct{})
	var calls atomic.Int64
	fetch := func(ctx context.Context) (record, error) {
		calls.Add(1)
		<-release
		return record{ID: 9}, nil
	}

	const readers = 10
	var started, done sync.WaitGroup
	started.Add(readers)
	done.Add(readers)
	for i := 0; i < readers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			if _, err := Read(ctx, p, p.TaskByID(9), fetch); err != nil {
				t.Errorf("Read() error = %v", err)
			}
		}()
	}

	started.Wait()
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	if got := calls.Load(); got < 1 || got >= readers {
		t.Errorf("fetch calls = %d, want between 1 and %d", got, readers-1)
	}
}

func TestRead_TrackedWindows(t *testing.T) {
	ctx := context.Background()
	p, backend, _ := newTestPolicy(t)
	src := &counter{value: record{ID: 1}}

	Read(ctx, p, p.TasksByOwner(1, 10, 0), src.fetch)
	Read(ctx, p, p.TasksByOwner(1, 5, 5), src.fetch)
	Read(ctx, p, p.TasksByOwner(2, 10, 0), src.fetch)

	members, err := backend.Members(ctx, p.OwnerWindows(1))
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	sort.Strings(members)
	want := []string{"tasks-by-owner::1,10,0", "tasks-by-owner::1,5,5"}
	if !reflect.DeepEqual(members, want) {
		t.Errorf("Members() = %v, want %v", members, want)
	}
}

func TestRead_UntrackableWindowIsNotCached(t *testing.T) {
	ctx := context.Background()
	p, backend, _ := newTestPolicy(t)
	backend.FailTracks(errBackend)
	src := &counter{value: record{ID: 1}}

	if _, err := Read(ctx, p, p.TasksByOwner(1, 10, 0), src.fetch); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if backend.Has(ctx, "tasks-by-owner::1,10,0") {
		t.Error("a window that could not be tracked must not be cached")
	}
}

func TestEvictGroup_DeletesExactWindowsAndExtras(t *testing.T) {
	ctx := context.Background()
	p, backend, _ := newTestPolicy(t)
	src := &counter{value: record{ID: 1}}

	Read(ctx, p, p.TasksByOwner(1, 10, 0), src.fetch)
	Read(ctx, p, p.TasksByOwner(1, 2, 4), src.fetch)
	Read(ctx, p, p.TasksByOwner(2, 10, 0), src.fetch)
	Read(ctx, p, p.TaskCount(1), src.fetch)
	Read(ctx, p, p.TaskByID(1), src.fetch)

	p.EvictGroup(ctx, p.OwnerWindows(1), p.TaskCount(1))

	for _, key := range []string{"tasks-by-owner::1,10,0", "tasks-by-owner::1,2,4", "task-count::1"} {
		if backend.Has(ctx, key) {
			t.Errorf("%s should have been evicted", key)
		}
	}
	for _, key := range []string{"tasks-by-owner::2,10,0", "task-by-id::1"} {
		if !backend.Has(ctx, key) {
			t.Errorf("%s should still be cached", key)
		}
	}
	if members, _ := backend.Members(ctx, p.OwnerWindows(1)); len(members) != 0 {
		t.Errorf("Members() after eviction = %v", members)
	}
}

func TestEvict_RetriesOnce(t *testing.T) {
	ctx := context.Background()
	p, backend, sink := newTestPolicy(t)
	Read(ctx, p, p.TaskByID(1), (&counter{value: record{ID: 1}}).fetch)
	backend.FailDeletes(1, errBackend)

	p.Evict(ctx, p.TaskByID(1))

	if backend.Has(ctx, "task-by-id::1") {
		t.Error("expected eviction to succeed on retry")
	}
	if _, _, deletes := backend.Calls(); deletes != 2 {
		t.Errorf("delete calls = %d, want 2", deletes)
	}
	if sink.Value(telemetry.InvalidationFailures) != 0 {
		t.Errorf("invalidation failures = %d, want 0", sink.Value(telemetry.InvalidationFailures))
	}
}

func TestEvict_FinalFailureIsCountedNotReturned(t *testing.T) {
	ctx := context.Background()
	p, backend, sink := newTestPolicy(t)
	backend.FailDeletes(-1, errBackend)

	p.Evict(ctx, p.TaskByID(1))

	if _, _, deletes := backend.Calls(); deletes != 2 {
		t.Errorf("delete calls = %d, want 2", deletes)
	}
	if got := sink.Value(telemetry.InvalidationFailures); got != 1 {
		t.Errorf("invalidation failures = %d, want 1", got)
	}
}

func TestEvict_SurvivesCallerCancellation(t *testing.T) {
	p, backend, _ := newTestPolicy(t)
	Read(context.Background(), p, p.TaskByID(1), (&counter{value: record{ID: 1}}).fetch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sawErr error
	backend.OnDelete(func(ctx context.Context) { sawErr = ctx.Err() })

	p.Evict(ctx, p.TaskByID(1))

	if sawErr != nil {
		t.Errorf("eviction ran on a cancelled context: %v", sawErr)
	}
	if backend.Has(context.Background(), "task-by-id::1") {
		t.Error("expected eviction after caller cancellation")
	}
}

func TestPolicy_Keys(t *testing.T) {
	p, _, _ := newTestPolicy(t)

	tests := []struct {
		lookup Lookup
		want   string
	}{
		{p.TaskByID(1), "task-by-id::1"},
		{p.TasksByOwner(1, 10, 0), "tasks-by-owner::1,10,0"},
		{p.TaskCount(1), "task-count::1"},
		{p.UserByID(1), "user-by-id::1"},
	}

	for _, tt := range tests {
		if got := p.Key(tt.lookup); got != tt.want {
			t.Errorf("Key() = %v, want %v", got, tt.want)
		}
	}
	if got := p.OwnerWindows(1); got != "tasks-by-owner::1" {
		t.Errorf("OwnerWindows() = %v", got)
	}
}
