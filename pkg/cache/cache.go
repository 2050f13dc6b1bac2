// Package cache defines the key/value store used by the values resolver and
// provides an in-memory LRU implementation.
//
// Values are opaque byte slices so that backends can persist them without
// knowing the resolver's types. Implementations must tolerate concurrent
// reads and writes; concurrent writes to the same key are last-write-wins.
package cache

import (
	"context"
	"time"
)

// NoExpiration stores an entry until it is evicted or deleted.
const NoExpiration time.Duration = 0

// Cache is the storage capability consumed by the resolver.
type Cache interface {
	// Get returns the entry for key. ok is false if the key is missing or
	// its TTL has elapsed; expired entries are never returned.
	Get(ctx context.Context, key string) (value []byte, ok bool)

	// Set stores value under key. A ttl of NoExpiration keeps the entry
	// until eviction.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)

	// Delete removes key.
	Delete(ctx context.Context, key string)

	// Clear removes every entry.
	Clear(ctx context.Context)
}

// PrefixDeleter is implemented by caches that can drop a key range.
// The resolver uses it to invalidate every cached page of one endpoint.
type PrefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) int
}
