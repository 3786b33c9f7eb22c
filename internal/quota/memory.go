package quota

import (
	"context"
	"sync"

	"filmflow/internal/domain"
)

// MemoryStore is an in-process UsageStore. It is meant for development and
// tests; counters are lost on restart and not shared between instances.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[domain.UsageKey]int64
}

var _ domain.UsageStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[domain.UsageKey]int64)}
}

func (s *MemoryStore) Get(_ context.Context, key domain.UsageKey) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key], nil
}

func (s *MemoryStore) Increment(_ context.Context, key domain.UsageKey, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] += amount
	return s.counters[key], nil
}

func (s *MemoryStore) IncrementWithin(_ context.Context, key domain.UsageKey, amount, limit int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.counters[key]
	if current+amount > limit {
		return current, false, nil
	}
	s.counters[key] = current + amount
	return s.counters[key], true, nil
}

// Set seeds a counter. Intended for tests.
func (s *MemoryStore) Set(key domain.UsageKey, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key] = count
}

// Len returns the number of counters held.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}
