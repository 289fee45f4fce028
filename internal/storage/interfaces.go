package storage

import (
	"context"
	"time"

	"churn-feature-lab/internal/domain"
)

// EntityStore provides access to the entity master.
type EntityStore interface {
	// Insert adds a new entity. Returns ErrDuplicateKey if entity_id exists.
	Insert(ctx context.Context, e *domain.Entity) error

	// GetByID retrieves an entity by its ID, with owned accounts
	// populated. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, entityID string) (*domain.Entity, error)

	// GetAll retrieves every entity with accounts populated, ordered by
	// entity_id ASC.
	GetAll(ctx context.Context) ([]*domain.Entity, error)
}

// AccountStore provides access to the account master.
type AccountStore interface {
	// Insert adds a new account. Returns ErrDuplicateKey if account_id exists.
	Insert(ctx context.Context, a *domain.Account) error

	// InsertBulk adds multiple accounts atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, accounts []*domain.Account) error

	// GetByOwnerID retrieves all accounts owned by an entity, ordered by account_id ASC.
	GetByOwnerID(ctx context.Context, ownerID string) ([]*domain.Account, error)
}

// TransactionStore provides access to transaction child records.
type TransactionStore interface {
	// Insert adds a new transaction. Returns ErrDuplicateKey if record_id exists.
	Insert(ctx context.Context, r *domain.ChildRecord) error

	// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.ChildRecord) error

	// GetByOwnerIDs retrieves all transactions owned by any of the given
	// entity/account ids, ordered by (event_date ASC, record_id ASC).
	GetByOwnerIDs(ctx context.Context, ownerIDs []string) ([]*domain.ChildRecord, error)
}

// ValuationStore provides access to daily valuation snapshot records.
// Valuations are the high-volume stream, so reads are range-limited;
// the concrete stores also expose an unbounded GetByOwnerIDs for
// ad hoc inspection.
type ValuationStore interface {
	// InsertBulk adds multiple snapshots. Fails entire batch on duplicate record_id.
	InsertBulk(ctx context.Context, records []*domain.ChildRecord) error

	// GetByOwnerIDsSince retrieves snapshots owned by any of the given
	// entity/account ids with event_date in (since, until], ordered by
	// (event_date ASC, record_id ASC).
	GetByOwnerIDsSince(ctx context.Context, ownerIDs []string, since, until time.Time) ([]*domain.ChildRecord, error)
}

// FeatureStore persists assembled feature records.
type FeatureStore interface {
	// InsertBulk adds multiple feature records. Fails entire batch on
	// duplicate entity_id.
	InsertBulk(ctx context.Context, records []*domain.FeatureRecord) error

	// GetByEntityID retrieves one feature record. Returns ErrNotFound if not exists.
	GetByEntityID(ctx context.Context, entityID string) (*domain.FeatureRecord, error)

	// GetAll retrieves every feature record, ordered by entity_id ASC.
	GetAll(ctx context.Context) ([]*domain.FeatureRecord, error)
}
