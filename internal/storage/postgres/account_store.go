package postgres

import (
	"context"
	"fmt"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// AccountStore implements storage.AccountStore using PostgreSQL.
type AccountStore struct {
	pool *Pool
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *Pool) *AccountStore {
	return &AccountStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AccountStore = (*AccountStore)(nil)

const accountInsertQuery = `
	INSERT INTO accounts (
		account_id, owner_id, status, open_date, close_date, reopen_date,
		account_type, domicile_country, domicile_state, book_currency,
		capital_commitment, objective
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Insert adds a new account. Returns ErrDuplicateKey if account_id exists.
func (s *AccountStore) Insert(ctx context.Context, a *domain.Account) error {
	if a == nil || a.AccountID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, accountInsertQuery,
		a.AccountID, a.OwnerID, string(a.Status),
		a.OpenDate, a.CloseDate, a.ReopenDate,
		a.AccountType, a.DomicileCountry, a.DomicileState, a.BookCurrency,
		a.CapitalCommitment, a.Objective,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// InsertBulk adds multiple accounts atomically. Fails entire batch on any duplicate.
func (s *AccountStore) InsertBulk(ctx context.Context, accounts []*domain.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, a := range accounts {
		if a == nil || a.AccountID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, accountInsertQuery,
			a.AccountID, a.OwnerID, string(a.Status),
			a.OpenDate, a.CloseDate, a.ReopenDate,
			a.AccountType, a.DomicileCountry, a.DomicileState, a.BookCurrency,
			a.CapitalCommitment, a.Objective,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert account in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByOwnerID retrieves all accounts owned by an entity, ordered by account_id ASC.
func (s *AccountStore) GetByOwnerID(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	query := `
		SELECT account_id, owner_id, status, open_date, close_date, reopen_date,
		       account_type, domicile_country, domicile_state, book_currency,
		       capital_commitment, objective
		FROM accounts
		WHERE owner_id = $1
		ORDER BY account_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query accounts by owner: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var a domain.Account
		var status string
		var openDate, closeDate, reopenDate *time.Time

		err := rows.Scan(
			&a.AccountID, &a.OwnerID, &status,
			&openDate, &closeDate, &reopenDate,
			&a.AccountType, &a.DomicileCountry, &a.DomicileState, &a.BookCurrency,
			&a.CapitalCommitment, &a.Objective,
		)
		if err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}

		a.Status = domain.Status(status)
		a.OpenDate = openDate
		a.CloseDate = closeDate
		a.ReopenDate = reopenDate
		accounts = append(accounts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}

	return accounts, nil
}
