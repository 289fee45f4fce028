package postgres

import (
	"context"
	"fmt"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// EntityStore implements storage.EntityStore using PostgreSQL. Reads
// join in the owned accounts so callers always receive a fully
// populated entity.
type EntityStore struct {
	pool     *Pool
	accounts *AccountStore
}

// NewEntityStore creates a new EntityStore.
func NewEntityStore(pool *Pool) *EntityStore {
	return &EntityStore{pool: pool, accounts: NewAccountStore(pool)}
}

// Compile-time interface check.
var _ storage.EntityStore = (*EntityStore)(nil)

// Insert adds a new entity. Returns ErrDuplicateKey if entity_id
// exists. Accounts are inserted separately through the AccountStore.
func (s *EntityStore) Insert(ctx context.Context, e *domain.Entity) error {
	if e == nil || e.EntityID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO entities (
			entity_id, status, opened_at, closed_at,
			domicile_country, domicile_state, book_currency,
			capital_commitment, objective
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.pool.Exec(ctx, query,
		e.EntityID, string(e.Status), e.OpenedAt, e.ClosedAt,
		e.DomicileCountry, e.DomicileState, e.BookCurrency,
		e.CapitalCommitment, e.Objective,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert entity: %w", err)
	}
	return nil
}

// GetByID retrieves an entity with its accounts. Returns ErrNotFound
// if not exists.
func (s *EntityStore) GetByID(ctx context.Context, entityID string) (*domain.Entity, error) {
	query := `
		SELECT entity_id, status, opened_at, closed_at,
		       domicile_country, domicile_state, book_currency,
		       capital_commitment, objective
		FROM entities
		WHERE entity_id = $1
	`

	e, err := scanEntity(s.pool.QueryRow(ctx, query, entityID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("query entity by id: %w", err)
	}

	accounts, err := s.accounts.GetByOwnerID(ctx, entityID)
	if err != nil {
		return nil, err
	}
	e.Accounts = accounts
	return e, nil
}

// GetAll retrieves every entity with accounts, ordered by entity_id ASC.
func (s *EntityStore) GetAll(ctx context.Context) ([]*domain.Entity, error) {
	query := `
		SELECT entity_id, status, opened_at, closed_at,
		       domicile_country, domicile_state, book_currency,
		       capital_commitment, objective
		FROM entities
		ORDER BY entity_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all entities: %w", err)
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entity row: %w", err)
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity rows: %w", err)
	}

	for _, e := range entities {
		accounts, err := s.accounts.GetByOwnerID(ctx, e.EntityID)
		if err != nil {
			return nil, err
		}
		e.Accounts = accounts
	}

	return entities, nil
}

// rowScanner abstracts pgx.Row and pgx.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*domain.Entity, error) {
	var e domain.Entity
	var status string
	var openedAt, closedAt *time.Time

	err := row.Scan(
		&e.EntityID, &status, &openedAt, &closedAt,
		&e.DomicileCountry, &e.DomicileState, &e.BookCurrency,
		&e.CapitalCommitment, &e.Objective,
	)
	if err != nil {
		return nil, err
	}

	e.Status = domain.Status(status)
	e.OpenedAt = openedAt
	e.ClosedAt = closedAt
	return &e, nil
}
