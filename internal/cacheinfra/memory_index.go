package cacheinfra

import (
	"context"
	"sort"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// memoryIndex is the in-process cache.KeyIndex. Each group holds its members
// with an expiry; sets are replaced on write so readers never see a map that
// is being mutated.
type memoryIndex struct {
	groups *xsync.MapOf[string, map[string]time.Time]
	now    func() time.Time
}

func newMemoryIndex(now func() time.Time) *memoryIndex {
	return &memoryIndex{
		groups: xsync.NewMapOf[string, map[string]time.Time](),
		now:    now,
	}
}

func (x *memoryIndex) Track(_ context.Context, group, key string, ttl time.Duration) error {
	now := x.now()
	x.groups.Compute(group, func(old map[string]time.Time, _ bool) (map[string]time.Time, bool) {
		next := make(map[string]time.Time, len(old)+1)
		for member, expires := range old {
			if expires.After(now) {
				next[member] = expires
			}
		}
		next[key] = now.Add(ttl)
		return next, false
	})
	return nil
}

// Members returns every recorded member of group. Expired members are only
// pruned by Track, so a key whose entry outlived its index slot is still
// returned and deleted.
func (x *memoryIndex) Members(_ context.Context, group string) ([]string, error) {
	set, ok := x.groups.Load(group)
	if !ok {
		return nil, nil
	}

	members := make([]string, 0, len(set))
	for member := range set {
		members = append(members, member)
	}
	sort.Strings(members)
	return members, nil
}

func (x *memoryIndex) Forget(_ context.Context, group string, keys ...string) error {
	x.groups.Compute(group, func(old map[string]time.Time, loaded bool) (map[string]time.Time, bool) {
		if !loaded {
			return nil, true
		}
		next := make(map[string]time.Time, len(old))
		for member, expires := range old {
			next[member] = expires
		}
		for _, key := range keys {
			delete(next, key)
		}
		return next, len(next) == 0
	})
	return nil
}
