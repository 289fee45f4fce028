package postgres

import (
	"context"
	"fmt"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// TransactionStore implements storage.TransactionStore using
// PostgreSQL. The amount column is TEXT: rows are staged verbatim from
// the upstream extract, and malformed values must reach the aggregator
// so they can be reported as skipped records instead of failing the
// load.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

const transactionInsertQuery = `
	INSERT INTO transactions (
		record_id, owner_id, event_date, amount, event_type
	) VALUES ($1, $2, $3, $4, $5)
`

// Insert adds a new transaction. Returns ErrDuplicateKey if record_id exists.
func (s *TransactionStore) Insert(ctx context.Context, r *domain.ChildRecord) error {
	if r == nil || r.RecordID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, transactionInsertQuery,
		r.RecordID, r.OwnerID, r.EventDate,
		r.NumericFields[domain.FieldAmount],
		r.CategoryFields[domain.FieldEventType],
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(ctx context.Context, records []*domain.ChildRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, transactionInsertQuery,
			r.RecordID, r.OwnerID, r.EventDate,
			r.NumericFields[domain.FieldAmount],
			r.CategoryFields[domain.FieldEventType],
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert transaction in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByOwnerIDs retrieves all transactions owned by any of the given
// ids, ordered by (event_date ASC, record_id ASC).
func (s *TransactionStore) GetByOwnerIDs(ctx context.Context, ownerIDs []string) ([]*domain.ChildRecord, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT record_id, owner_id, event_date, amount, event_type
		FROM transactions
		WHERE owner_id = ANY($1)
		ORDER BY event_date ASC, record_id ASC
	`

	rows, err := s.pool.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("query transactions by owners: %w", err)
	}
	defer rows.Close()

	var records []*domain.ChildRecord
	for rows.Next() {
		var r domain.ChildRecord
		var eventDate time.Time
		var amount, eventType string

		if err := rows.Scan(&r.RecordID, &r.OwnerID, &eventDate, &amount, &eventType); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		r.EventDate = eventDate.UTC()
		r.NumericFields = map[string]string{domain.FieldAmount: amount}
		r.CategoryFields = map[string]string{domain.FieldEventType: eventType}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return records, nil
}
