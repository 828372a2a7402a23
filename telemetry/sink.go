// Package telemetry holds the counter sink the services report to.
package telemetry

import (
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// Counter names emitted by this module.
const (
	TasksCompleted       = "tasks.completed.total"
	CacheHit             = "cache.hit"
	CacheMiss            = "cache.miss"
	CacheErrors          = "cache.errors"
	InvalidationFailures = "cache.invalidation.failures"
)

// Sink accepts named increment events.
type Sink interface {
	Inc(name string)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Inc(string) {}

// Memory counts events in process. Safe for concurrent use.
type Memory struct {
	counters *xsync.MapOf[string, *atomic.Int64]
}

func NewMemory() *Memory {
	return &Memory{counters: xsync.NewMapOf[string, *atomic.Int64]()}
}

func (m *Memory) Inc(name string) {
	c, _ := m.counters.LoadOrCompute(name, func() *atomic.Int64 { return new(atomic.Int64) })
	c.Add(1)
}

// Value returns the current count for name.
func (m *Memory) Value(name string) int64 {
	if c, ok := m.counters.Load(name); ok {
		return c.Load()
	}
	return 0
}

// Snapshot copies every counter.
func (m *Memory) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	m.counters.Range(func(name string, c *atomic.Int64) bool {
		out[name] = c.Load()
		return true
	})
	return out
}

// Names returns the counter names in sorted order.
func (m *Memory) Names() []string {
	var names []string
	m.counters.Range(func(name string, _ *atomic.Int64) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// SafeInc reports name to sink and never lets a failing sink reach the
// caller: panics are recovered and logged.
func SafeInc(sink Sink, logger *slog.Logger, name string) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			if logger == nil {
				logger = slog.Default()
			}
			logger.Warn("telemetry sink panicked", "metric", name, "panic", r)
		}
	}()
	sink.Inc(name)
}
