package store

import (
	"context"
	"sync"
	"time"

	"github.com/xrpstake/stakeboard/ports"
)

type memoryEntry struct {
	outcome string
	expires time.Time
}

// MemoryStore is an in-memory implementation of the consumption store.
type MemoryStore struct {
	entries map[string]memoryEntry
	mu      sync.Mutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() ports.ConsumptionStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// Consume records outcome for requestID unless an unexpired record
// already exists.
func (s *MemoryStore) Consume(ctx context.Context, requestID, outcome string, ttl time.Duration) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, exists := s.entries[requestID]; exists && time.Now().Before(entry.expires) {
		return entry.outcome, true, nil
	}

	expires := time.Now().Add(ttl)
	s.entries[requestID] = memoryEntry{outcome: outcome, expires: expires}

	// Drop the record once the TTL has passed.
	go func() {
		time.Sleep(ttl)

		s.mu.Lock()
		defer s.mu.Unlock()

		if entry, exists := s.entries[requestID]; exists && !entry.expires.After(expires) {
			delete(s.entries, requestID)
		}
	}()

	return outcome, false, nil
}
