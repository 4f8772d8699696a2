package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const snapshotCleanupInterval = 10 * time.Minute

// SnapshotCache holds short-lived upstream snapshots (order lists, retail
// summaries, subscription counts) keyed by name
type SnapshotCache struct {
	c *gocache.Cache
}

// NewSnapshotCache creates a snapshot cache with a default lifetime
func NewSnapshotCache(defaultTTL time.Duration) *SnapshotCache {
	return &SnapshotCache{c: gocache.New(defaultTTL, snapshotCleanupInterval)}
}

// Get returns a cached value
func (s *SnapshotCache) Get(key string) (any, bool) {
	return s.c.Get(key)
}

// Set stores a value. A zero ttl uses the cache default.
func (s *SnapshotCache) Set(key string, value any, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	s.c.Set(key, value, ttl)
}

// Delete removes one key
func (s *SnapshotCache) Delete(key string) {
	s.c.Delete(key)
}

// Flush removes everything
func (s *SnapshotCache) Flush() {
	s.c.Flush()
}

// Len returns the number of cached items, expired ones included until cleanup
func (s *SnapshotCache) Len() int {
	return s.c.ItemCount()
}

// Load returns the cached value for key, or calls fn and caches its result.
// Errors are not cached. A cached value of another type counts as a miss.
func Load[T any](ctx context.Context, s *SnapshotCache, key string, ttl time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	s.Set(key, v, ttl)
	return v, nil
}
