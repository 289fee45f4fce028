package memory

import (
	"context"
	"sort"
	"sync"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// AccountStore is an in-memory implementation of storage.AccountStore.
type AccountStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Account // keyed by account_id
}

// NewAccountStore creates a new in-memory account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		data: make(map[string]*domain.Account),
	}
}

// Insert adds a new account. Returns ErrDuplicateKey if account_id exists.
func (s *AccountStore) Insert(_ context.Context, a *domain.Account) error {
	if a == nil || a.AccountID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[a.AccountID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[a.AccountID] = cloneAccount(a)
	return nil
}

// InsertBulk adds multiple accounts atomically. Fails entire batch on any duplicate.
func (s *AccountStore) InsertBulk(_ context.Context, accounts []*domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		if a == nil || a.AccountID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[a.AccountID]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[a.AccountID]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[a.AccountID] = struct{}{}
	}

	for _, a := range accounts {
		s.data[a.AccountID] = cloneAccount(a)
	}

	return nil
}

// GetByOwnerID retrieves all accounts owned by an entity, ordered by account_id ASC.
func (s *AccountStore) GetByOwnerID(_ context.Context, ownerID string) ([]*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Account
	for _, a := range s.data {
		if a.OwnerID == ownerID {
			result = append(result, cloneAccount(a))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].AccountID < result[j].AccountID
	})

	return result, nil
}

var _ storage.AccountStore = (*AccountStore)(nil)
