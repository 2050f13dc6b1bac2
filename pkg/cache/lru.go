package cache

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMaxItems bounds the memory cache when no size is given.
const DefaultMaxItems = 1024

type memoryEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
	gen       uint64
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Memory is a thread-safe LRU cache with per-entry TTLs.
type Memory struct {
	cache *lru.Cache[string, memoryEntry]
	now   func() time.Time

	// writeMu orders Set against expiry removal so that Get never drops an
	// entry written after the one it found expired.
	writeMu sync.Mutex
	gen     uint64
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source, mainly for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an LRU cache holding at most maxItems entries.
func NewMemory(maxItems int, opts ...MemoryOption) (*Memory, error) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	c, err := lru.New[string, memoryEntry](maxItems)
	if err != nil {
		return nil, err
	}
	m := &Memory{cache: c, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Get returns a copy of the stored value. Expired entries are dropped.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	entry, ok := m.cache.Get(key)
	if !ok {
		return nil, false
	}
	if entry.expired(m.now()) {
		m.removeExpired(key, entry)
		return nil, false
	}
	return bytes.Clone(entry.value), true
}

// Set adds or replaces an entry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	entry := memoryEntry{value: bytes.Clone(value)}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	m.gen++
	entry.gen = m.gen
	m.cache.Add(key, entry)
}

// removeExpired removes key only if it still holds stale.
func (m *Memory) removeExpired(key string, stale memoryEntry) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	if cur, ok := m.cache.Peek(key); ok && cur.gen == stale.gen {
		m.cache.Remove(key)
	}
}

// Delete removes an entry.
func (m *Memory) Delete(_ context.Context, key string) {
	m.cache.Remove(key)
}

// Clear removes every entry.
func (m *Memory) Clear(_ context.Context) {
	m.cache.Purge()
}

// DeletePrefix removes every entry whose key starts with prefix.
func (m *Memory) DeletePrefix(_ context.Context, prefix string) int {
	removed := 0
	for _, key := range m.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			m.cache.Remove(key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	return m.cache.Len()
}
