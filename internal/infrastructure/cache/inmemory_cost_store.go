package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homecooks/profitability/internal/domain/report"
)

// costEntry is a cached variant cost. A nil cost marks a variant without one.
type costEntry struct {
	cost      *decimal.Decimal
	expiresAt time.Time
}

// InMemoryCostStore implements report.CostStore using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryCostStore struct {
	mu        sync.RWMutex
	entries   map[int64]costEntry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCostStore creates a new in-memory cost store whose entries live for ttl.
// It starts a background goroutine to clean up expired entries
func NewInMemoryCostStore(ttl time.Duration) *InMemoryCostStore {
	store := &InMemoryCostStore{
		entries:  make(map[int64]costEntry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Get returns the cached cost and whether the variant is cached and unexpired
func (s *InMemoryCostStore) Get(_ context.Context, variantID int64) (*decimal.Decimal, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[variantID]
	if !exists || !s.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	if e.cost == nil {
		return nil, true, nil
	}
	cost := *e.cost
	return &cost, true, nil
}

// Set caches a cost, nil included
func (s *InMemoryCostStore) Set(_ context.Context, variantID int64, cost *decimal.Decimal) error {
	var stored *decimal.Decimal
	if cost != nil {
		c := *cost
		stored = &c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[variantID] = costEntry{cost: stored, expiresAt: s.now().Add(s.ttl)}
	return nil
}

// Clear drops every cached cost
func (s *InMemoryCostStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[int64]costEntry)
	return nil
}

// MissingVariants lists unexpired variants cached without a cost, in ascending order
func (s *InMemoryCostStore) MissingVariants(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	missing := make([]int64, 0)
	for id, e := range s.entries {
		if e.cost == nil && now.Before(e.expiresAt) {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing, nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (s *InMemoryCostStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (s *InMemoryCostStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryCostStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

// Size returns the number of entries in the store (for testing/monitoring)
func (s *InMemoryCostStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

var _ report.CostStore = (*InMemoryCostStore)(nil)
