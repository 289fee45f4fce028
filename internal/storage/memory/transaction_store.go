package memory

import (
	"context"
	"sort"
	"sync"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ChildRecord // keyed by record_id
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		data: make(map[string]*domain.ChildRecord),
	}
}

// Insert adds a new transaction. Returns ErrDuplicateKey if record_id exists.
func (s *TransactionStore) Insert(_ context.Context, r *domain.ChildRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RecordID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.RecordID] = cloneRecord(r)
	return nil
}

// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(_ context.Context, records []*domain.ChildRecord) error {
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

// GetByOwnerIDs retrieves all transactions owned by any of the given
// ids, ordered by (event_date ASC, record_id ASC).
func (s *TransactionStore) GetByOwnerIDs(_ context.Context, ownerIDs []string) ([]*domain.ChildRecord, error) {
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

// sortRecords orders by (event_date ASC, record_id ASC).
func sortRecords(records []*domain.ChildRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].EventDate.Equal(records[j].EventDate) {
			return records[i].EventDate.Before(records[j].EventDate)
		}
		return records[i].RecordID < records[j].RecordID
	})
}

var _ storage.TransactionStore = (*TransactionStore)(nil)
