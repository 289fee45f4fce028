package memory

import (
	"context"
	"sort"
	"sync"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore.
type FeatureStore struct {
	mu   sync.RWMutex
	data map[string]*domain.FeatureRecord // keyed by entity_id
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore() *FeatureStore {
	return &FeatureStore{
		data: make(map[string]*domain.FeatureRecord),
	}
}

// InsertBulk adds multiple feature records. Fails entire batch on
// duplicate entity_id.
func (s *FeatureStore) InsertBulk(_ context.Context, records []*domain.FeatureRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, f := range records {
		if f == nil || f.EntityID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[f.EntityID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[f.EntityID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[f.EntityID] = struct{}{}
	}

	for _, f := range records {
		s.data[f.EntityID] = cloneFeatureRecord(f)
	}

	return nil
}

// GetByEntityID retrieves one feature record. Returns ErrNotFound if not exists.
func (s *FeatureStore) GetByEntityID(_ context.Context, entityID string) (*domain.FeatureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, exists := s.data[entityID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return cloneFeatureRecord(f), nil
}

// GetAll retrieves every feature record, ordered by entity_id ASC.
func (s *FeatureStore) GetAll(_ context.Context) ([]*domain.FeatureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FeatureRecord, 0, len(s.data))
	for _, f := range s.data {
		result = append(result, cloneFeatureRecord(f))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].EntityID < result[j].EntityID
	})

	return result, nil
}

var _ storage.FeatureStore = (*FeatureStore)(nil)
