package testsupport

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-todo-cache/cache"
)

// FlakyBackend wraps a cache.Backend, records calls and can be told to fail
// individual operations.
type FlakyBackend struct {
	cache.Backend

	mu           sync.Mutex
	getErr       error
	setErr       error
	trackErr     error
	deleteErr    error
	deleteFailN  int
	getCalls     int
	setCalls     int
	deleteCalls  int
	deleted      []string
	beforeDelete func(ctx context.Context)
}

// NewFlakyBackend wraps inner.
func NewFlakyBackend(inner cache.Backend) *FlakyBackend {
	return &FlakyBackend{Backend: inner}
}

// FailGets makes every Get return err. A nil err restores normal behaviour.
func (f *FlakyBackend) FailGets(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

// FailSets makes every Set return err.
func (f *FlakyBackend) FailSets(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

// FailTracks makes every Track return err.
func (f *FlakyBackend) FailTracks(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trackErr = err
}

// FailDeletes makes the next n Delete calls return err. n < 0 fails forever.
func (f *FlakyBackend) FailDeletes(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteFailN = n
	f.deleteErr = err
}

// OnDelete registers a hook run at the start of every Delete.
func (f *FlakyBackend) OnDelete(fn func(ctx context.Context)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeDelete = fn
}

func (f *FlakyBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	f.getCalls++
	err := f.getErr
	f.mu.Unlock()

	if err != nil {
		return nil, false, err
	}
	return f.Backend.Get(ctx, key)
}

func (f *FlakyBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	f.mu.Lock()
	f.setCalls++
	err := f.setErr
	f.mu.Unlock()

	if err != nil {
		return err
	}
	return f.Backend.Set(ctx, key, value, ttl)
}

func (f *FlakyBackend) Track(ctx context.Context, group, key string, ttl time.Duration) error {
	f.mu.Lock()
	err := f.trackErr
	f.mu.Unlock()

	if err != nil {
		return err
	}
	return f.Backend.Track(ctx, group, key, ttl)
}

func (f *FlakyBackend) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	f.deleteCalls++
	hook := f.beforeDelete
	var err error
	if f.deleteFailN != 0 {
		err = f.deleteErr
		if f.deleteFailN > 0 {
			f.deleteFailN--
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.deleted = append(f.deleted, keys...)
	f.mu.Unlock()
	return f.Backend.Delete(ctx, keys...)
}

// Calls returns how many times Get, Set and Delete were invoked.
func (f *FlakyBackend) Calls() (gets, sets, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getCalls, f.setCalls, f.deleteCalls
}

// Deleted returns every key passed to a successful Delete.
func (f *FlakyBackend) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// Has reports whether key is currently cached in the wrapped backend.
func (f *FlakyBackend) Has(ctx context.Context, key string) bool {
	_, hit, err := f.Backend.Get(ctx, key)
	return err == nil && hit
}
