package memory

import (
	"context"
	"sort"
	"sync"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// EntityStore is an in-memory implementation of storage.EntityStore.
type EntityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Entity // keyed by entity_id
}

// NewEntityStore creates a new in-memory entity store.
func NewEntityStore() *EntityStore {
	return &EntityStore{
		data: make(map[string]*domain.Entity),
	}
}

// Insert adds a new entity. Returns ErrDuplicateKey if entity_id exists.
func (s *EntityStore) Insert(_ context.Context, e *domain.Entity) error {
	if e == nil || e.EntityID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.EntityID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[e.EntityID] = cloneEntity(e)
	return nil
}

// GetByID retrieves an entity by its ID. Returns ErrNotFound if not exists.
func (s *EntityStore) GetByID(_ context.Context, entityID string) (*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[entityID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return cloneEntity(e), nil
}

// GetAll retrieves every entity, ordered by entity_id ASC.
func (s *EntityStore) GetAll(_ context.Context) ([]*domain.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Entity, 0, len(s.data))
	for _, e := range s.data {
		result = append(result, cloneEntity(e))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EntityID < result[j].EntityID
	})

	return result, nil
}

var _ storage.EntityStore = (*EntityStore)(nil)
