// Package cacheaside implements the read-through / write-invalidate protocol
// between the services and a cache.Backend.
//
// # Read path
//
// Read derives the key "region::args", returns a decoded copy on a hit and
// otherwise runs the fetch, encodes the result, stores it with the region's
// TTL and returns a decoded copy of exactly what was stored:
//
//	task, err := cacheaside.Read(ctx, policy, policy.TaskByID(id), func(ctx context.Context) (domain.Task, error) {
//		return store.FindTaskByID(ctx, id)
//	})
//
// Fetch errors (including not-found) are returned and never cached. Backend
// errors are logged and counted, then the read falls through to the store.
// Concurrent misses on one key share a single fetch. A payload that no longer
// decodes is treated as a miss.
//
// Lookups with a Group are tracked in the backend's KeyIndex before they are
// stored. The write path can then evict exactly the windows that exist.
//
// # Write path
//
// Services mutate the store first and only then call Evict or EvictGroup.
// Eviction runs on a context detached from the caller, so a request cancelled
// after the commit still invalidates. Each attempt is bounded by the configured
// invalidation timeout and failed attempts are retried. A final failure is
// logged and counted as cache.invalidation.failures; it is never returned.
package cacheaside
