package memory

import (
	"context"
	"sync"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// ValuationStore is an in-memory implementation of storage.ValuationStore.
type ValuationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ChildRecord // keyed by record_id
}

// NewValuationStore creates a new in-memory valuation store.
func NewValuationStore() *ValuationStore {
	return &ValuationStore{
		data: make(map[string]*domain.ChildRecord),
	}
}

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate record_id.
func (s *ValuationStore) InsertBulk(_ context.Context, records []*domain.ChildRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[r.RecordID] = struct{}{}
	}

	for _, r := range records {
		s.data[r.RecordID] = cloneRecord(r)
	}

	return nil
}

// GetByOwnerIDs retrieves all snapshots owned by any of the given ids,
// ordered by (event_date ASC, record_id ASC).
func (s *ValuationStore) GetByOwnerIDs(_ context.Context, ownerIDs []string) ([]*domain.ChildRecord, error) {
	owners := make(map[string]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		owners[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ChildRecord
	for _, r := range s.data {
		if _, ok := owners[r.OwnerID]; ok {
			result = append(result, cloneRecord(r))
		}
	}

	sortRecords(result)
	return result, nil
}

// GetByOwnerIDsSince retrieves snapshots with event_date in (since, until].
func (s *ValuationStore) GetByOwnerIDsSince(ctx context.Context, ownerIDs []string, since, until time.Time) ([]*domain.ChildRecord, error) {
	all, err := s.GetByOwnerIDs(ctx, ownerIDs)
	if err != nil {
		return nil, err
	}

	var result []*domain.ChildRecord
	for _, r := range all {
		if r.EventDate.After(since) && !r.EventDate.After(until) {
			result = append(result, r)
		}
	}
	return result, nil
}

var _ storage.ValuationStore = (*ValuationStore)(nil)
