package cache

import (
	"context"
	"sync"
	"time"

	"studyhub/internal/domain"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero => never expires
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache is an in-process TTL store implementing domain.Cache.
// Expired entries are removed lazily on Get and swept from the whole map on every Set;
// there is no size bound.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// MemoryCacheOption configures a MemoryCache.
type MemoryCacheOption func(*MemoryCache)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) MemoryCacheOption {
	return func(c *MemoryCache) {
		c.now = now
	}
}

// NewMemoryCache creates an empty MemoryCache.
func NewMemoryCache(opts ...MemoryCacheOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored value, or domain.ErrCacheMiss when the key is absent or expired.
func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	if entry.expired(c.now()) {
		delete(c.entries, key)
		return "", domain.ErrCacheMiss
	}
	return entry.value, nil
}

// Set stores value for expiration (non-positive means no expiry) and sweeps expired entries.
func (c *MemoryCache) Set(_ context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = now.Add(expiration)
	}
	c.entries[key] = entry

	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Delete removes key if present.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Ping always succeeds for the in-process store.
func (c *MemoryCache) Ping(_ context.Context) error {
	return nil
}

// Len returns the number of stored entries, expired ones included until swept.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var _ domain.Cache = (*MemoryCache)(nil)
