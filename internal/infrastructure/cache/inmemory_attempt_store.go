package cache

import (
	"context"
	"sync"
	"time"

	"github.com/tableside/backend/internal/domain/shared"
)

type entry struct {
	expiresAt time.Time
}

// InMemoryAttemptStore implements AttemptStore with an in-memory map.
// Suitable for the single-instance per-venue deployment and for tests.
type InMemoryAttemptStore struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryAttemptStore creates a new in-memory attempt store with a
// background sweep of expired entries.
func NewInMemoryAttemptStore() *InMemoryAttemptStore {
	store := &InMemoryAttemptStore{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}
	store.wg.Add(1)
	go store.cleanupLoop()
	return store
}

// MarkProcessed marks an attempt as processed with a TTL.
// Returns true if the attempt was newly marked.
func (s *InMemoryAttemptStore) MarkProcessed(ctx context.Context, attemptID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[attemptID]; exists && time.Now().Before(e.expiresAt) {
		return false, nil
	}
	s.entries[attemptID] = entry{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// IsProcessed checks if an attempt has already been processed
func (s *InMemoryAttemptStore) IsProcessed(ctx context.Context, attemptID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[attemptID]
	if !exists || time.Now().After(e.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryAttemptStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored attempts (for tests)
func (s *InMemoryAttemptStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *InMemoryAttemptStore) cleanupLoop() {
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

func (s *InMemoryAttemptStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for attemptID, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, attemptID)
		}
	}
}

var _ shared.AttemptStore = (*InMemoryAttemptStore)(nil)
