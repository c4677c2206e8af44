// Package storage provides catalog persistence implementations.
package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface check.
var _ domain.SnapshotStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory snapshot store. Safe for concurrent access.
// Nothing survives the process; use it for scratch sessions and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	snap     domain.Snapshot
	saves    int
	failNext error
	log      *logger.Logger
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		snap: domain.EmptySnapshot(),
		log:  log,
	}
}

// Load returns a copy of the last saved snapshot.
func (s *MemoryStore) Load(ctx context.Context) (domain.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.log.Debug("loading memory snapshot (recipes=%d, ingredients=%d)", len(s.snap.Recipes), len(s.snap.Ingredients))
	return s.snap.Clone(), nil
}

// Save stores a copy of the snapshot.
func (s *MemoryStore) Save(ctx context.Context, snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saves++
	if err := s.failNext; err != nil {
		s.failNext = nil
		s.log.Debug("memory save #%d failing: %v", s.saves, err)
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.snap = snap.Clone()
	s.snap.Normalize()
	s.log.Debug("memory save #%d (recipes=%d, ingredients=%d)", s.saves, len(snap.Recipes), len(snap.Ingredients))
	return nil
}

// Saves returns how many times Save has been called, failed calls included.
func (s *MemoryStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// FailNextSave makes the next Save return err instead of storing anything.
func (s *MemoryStore) FailNextSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}
