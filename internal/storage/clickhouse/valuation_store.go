package clickhouse

import (
	"context"
	"fmt"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// ValuationStore implements storage.ValuationStore using ClickHouse.
// Numeric columns are stored as raw strings, exactly as extracted
// upstream: malformed values must survive the load so the aggregator
// can report them as skipped records.
type ValuationStore struct {
	conn *Conn
}

// NewValuationStore creates a new ValuationStore.
func NewValuationStore(conn *Conn) *ValuationStore {
	return &ValuationStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ValuationStore = (*ValuationStore)(nil)

// InsertBulk adds multiple snapshots. Fails entire batch on duplicate
// record_id, checked explicitly since MergeTree does not enforce
// uniqueness at insert time.
func (s *ValuationStore) InsertBulk(ctx context.Context, records []*domain.ChildRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RecordID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[r.RecordID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[r.RecordID] = struct{}{}
	}

	for _, r := range records {
		exists, err := s.exists(ctx, r.RecordID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO valuations (
			record_id, owner_id, event_date,
			market_value, unrealized_gain_loss, asset_class
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			r.RecordID, r.OwnerID, r.EventDate,
			r.NumericFields[domain.FieldMarketValue],
			r.NumericFields[domain.FieldUnrealizedGain],
			r.CategoryFields[domain.FieldAssetClass],
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByOwnerIDs retrieves all snapshots owned by any of the given ids,
// ordered by (event_date ASC, record_id ASC).
func (s *ValuationStore) GetByOwnerIDs(ctx context.Context, ownerIDs []string) ([]*domain.ChildRecord, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT record_id, owner_id, event_date,
		       market_value, unrealized_gain_loss, asset_class
		FROM valuations
		WHERE owner_id IN (?)
		ORDER BY event_date ASC, record_id ASC
	`

	rows, err := s.conn.Query(ctx, query, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("query valuations by owners: %w", err)
	}
	defer rows.Close()

	return scanValuations(rows)
}

// GetByOwnerIDsSince retrieves snapshots with event_date in (since, until].
func (s *ValuationStore) GetByOwnerIDsSince(ctx context.Context, ownerIDs []string, since, until time.Time) ([]*domain.ChildRecord, error) {
	if len(ownerIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT record_id, owner_id, event_date,
		       market_value, unrealized_gain_loss, asset_class
		FROM valuations
		WHERE owner_id IN (?) AND event_date > ? AND event_date <= ?
		ORDER BY event_date ASC, record_id ASC
	`

	rows, err := s.conn.Query(ctx, query, ownerIDs, since, until)
	if err != nil {
		return nil, fmt.Errorf("query valuations by date range: %w", err)
	}
	defer rows.Close()

	return scanValuations(rows)
}

// exists checks if a snapshot with the given record_id exists.
func (s *ValuationStore) exists(ctx context.Context, recordID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM valuations WHERE record_id = ?`, recordID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanValuations scans multiple rows.
func scanValuations(rows chRows) ([]*domain.ChildRecord, error) {
	var records []*domain.ChildRecord

	for rows.Next() {
		var r domain.ChildRecord
		var eventDate time.Time
		var marketValue, unrealizedGain, assetClass string

		err := rows.Scan(
			&r.RecordID, &r.OwnerID, &eventDate,
			&marketValue, &unrealizedGain, &assetClass,
		)
		if err != nil {
			return nil, fmt.Errorf("scan valuation row: %w", err)
		}

		r.EventDate = eventDate.UTC()
		r.NumericFields = map[string]string{
			domain.FieldMarketValue:    marketValue,
			domain.FieldUnrealizedGain: unrealizedGain,
		}
		r.CategoryFields = map[string]string{
			domain.FieldAssetClass: assetClass,
		}
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate valuation rows: %w", err)
	}

	return records, nil
}
