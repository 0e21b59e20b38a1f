package memory

import (
	"context"
	"sync"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/storage"
)

// Storage is an in-memory implementation of the snapshot store
type Storage struct {
	mu sync.RWMutex

	snapshot *model.Snapshot
	saves    int

	// SaveErr, when set, is returned by Save instead of storing
	SaveErr error
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{}
}

// Ensure Storage implements the interface
var _ storage.SnapshotStore = (*Storage)(nil)

func (s *Storage) Load(ctx context.Context) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, model.ErrCacheMiss
	}
	return s.snapshot.Clone(), nil
}

func (s *Storage) Save(ctx context.Context, snapshot *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.snapshot = snapshot.Clone()
	s.saves++
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// Saves returns how many snapshots have been stored
func (s *Storage) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
