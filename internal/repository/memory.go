package repository

import (
	"context"
	"sync"

	"ciboard/internal/ciboard"
	"ciboard/internal/ciboard/ports"
)

var _ ports.SnapshotStore = (*MemoryStore)(nil)

// MemoryStore keeps the latest snapshot in memory. Used in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	snap ciboard.Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snap: ciboard.Snapshot{}}
}

func (s *MemoryStore) Save(_ context.Context, snap ciboard.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

func (s *MemoryStore) Load(_ context.Context) (ciboard.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, nil
}
