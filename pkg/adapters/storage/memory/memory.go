package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
)

// InMemoryResultStorage implements ResultStore using an in-memory map.
// Entries expire after the configured TTL.
type InMemoryResultStorage struct {
	results map[string]entry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

type entry struct {
	result    *domain.Result
	expiresAt time.Time
}

// NewInMemoryResultStorage creates a new in-memory result storage. A zero
// ttl keeps results forever.
func NewInMemoryResultStorage(ttl time.Duration) *InMemoryResultStorage {
	return &InMemoryResultStorage{
		results: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SaveResult stores a copy of result (ports.ResultStore interface)
func (s *InMemoryResultStorage) SaveResult(ctx context.Context, result *domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resultCopy := *result
	e := entry{result: &resultCopy}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.results[result.SessionID] = e
	s.purgeLocked()
	return nil
}

// LoadResult retrieves a result (ports.ResultStore interface)
func (s *InMemoryResultStorage) LoadResult(ctx context.Context, sessionID string) (*domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.results[sessionID]
	if !ok || s.expired(e) {
		return nil, domain.ErrSessionNotFound
	}
	resultCopy := *e.result
	return &resultCopy, nil
}

// DeleteResult removes a result (ports.ResultStore interface)
func (s *InMemoryResultStorage) DeleteResult(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.results, sessionID)
	return nil
}

// Len returns the number of unexpired results
func (s *InMemoryResultStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.results {
		if !s.expired(e) {
			n++
		}
	}
	return n
}

func (s *InMemoryResultStorage) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// purgeLocked drops expired entries. Must be called with the lock held.
func (s *InMemoryResultStorage) purgeLocked() {
	for id, e := range s.results {
		if s.expired(e) {
			delete(s.results, id)
		}
	}
}
