package telemetry

import (
	"reflect"
	"sync"
	"testing"
)

func TestMemory_IncAndSnapshot(t *testing.T) {
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Inc(CacheHit)
		}()
	}
	wg.Wait()
	m.Inc(TasksCompleted)

	if got := m.Value(CacheHit); got != 100 {
		t.Errorf("Value(%s) = %d, want 100", CacheHit, got)
	}
	if got := m.Value(CacheMiss); got != 0 {
		t.Errorf("Value(%s) = %d, want 0", CacheMiss, got)
	}

	want := map[string]int64{CacheHit: 100, TasksCompleted: 1}
	if got := m.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("Snapshot() = %v, want %v", got, want)
	}
	if got := m.Names(); !reflect.DeepEqual(got, []string{CacheHit, TasksCompleted}) {
		t.Errorf("Names() = %v", got)
	}
}

type panicSink struct{}

func (panicSink) Inc(string) { panic("boom") }

func TestSafeInc(t *testing.T) {
	SafeInc(panicSink{}, nil, TasksCompleted)
	SafeInc(nil, nil, TasksCompleted)
	SafeInc(Nop{}, nil, TasksCompleted)

	m := NewMemory()
	SafeInc(m, nil, TasksCompleted)
	if got := m.Value(TasksCompleted); got != 1 {
		t.Errorf("Value() = %d, want 1", got)
	}
}
