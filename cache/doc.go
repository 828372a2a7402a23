// Package cache defines the byte level cache contract, key derivation and value
// encoding shared by the cache-aside policy and the concrete backends.
//
// # Overview
//
// The package exports the following pieces:
//
//   - Cache: Get/Set/Delete over opaque bytes, with per call TTLs
//   - KeyIndex: group membership used to invalidate exact sets of keys
//   - Backend: Cache + KeyIndex + Close, implemented in internal/cacheinfra
//   - KeySerializer: builds "region::arg1,arg2" keys
//   - Codec: msgpack encoding of service values
//   - Config: backend selection, region TTLs and invalidation bounds
//
// # Keys
//
// Every key starts with its region name, so two read operations can never
// collide even when they are called with the same arguments:
//
//	serializer := cache.NewDefaultKeySerializer()
//	serializer.SerializeKey("task-by-id", 42)            // task-by-id::42
//	serializer.SerializeKey("tasks-by-owner", 7, 10, 0)  // tasks-by-owner::7,10,0
//
// Argument order is significant. The write path must derive eviction keys
// with the same argument order the read path used to populate them.
//
// # Values
//
// Values are stored encoded. A reader always decodes its own copy, so a caller
// mutating a returned value cannot change what the next reader sees:
//
//	data, _ := cache.Encode(codec, task)
//	task, err := cache.Decode[domain.Task](codec, data)
//
// A payload that cannot be decoded yields ErrInvalidResultType. The policy
// treats that as a miss and refetches from the store.
//
// # Regions and TTL
//
// Config.TTLFor resolves a region's TTL, falling back to Config.TTL. Zero and
// negative TTLs are rejected by Config.Validate, so every cached entry expires.
package cache
