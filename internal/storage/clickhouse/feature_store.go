package clickhouse

import (
	"context"
	"fmt"
	"sort"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// FeatureStore implements storage.FeatureStore using ClickHouse.
// Numeric features are stored as parallel name/value arrays with
// Nullable(Float64) values so explicit nulls survive a round trip —
// collapsing them to a sentinel would recreate exactly the
// no-data-versus-zero confusion the engine exists to avoid.
type FeatureStore struct {
	conn *Conn
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(conn *Conn) *FeatureStore {
	return &FeatureStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// InsertBulk adds multiple feature records. Fails entire batch on
// duplicate entity_id.
func (s *FeatureStore) InsertBulk(ctx context.Context, records []*domain.FeatureRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(records))
	for _, f := range records {
		if f == nil || f.EntityID == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[f.EntityID]; exists {
			return storage.ErrDuplicateKey
		}
		seen[f.EntityID] = struct{}{}
	}

	for _, f := range records {
		exists, err := s.exists(ctx, f.EntityID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO feature_records (
			entity_id, reference_date, churn_label, account_closed,
			feature_names, feature_values, categorical_names, categorical_values
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, f := range records {
		featureNames, featureValues := numericArrays(f)
		categoricalNames, categoricalValues := categoricalArrays(f)

		err = batch.Append(
			f.EntityID, f.ReferenceDate,
			boolUInt8(f.ChurnLabel), boolUInt8(f.AccountClosed),
			featureNames, featureValues, categoricalNames, categoricalValues,
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

// GetByEntityID retrieves one feature record. Returns ErrNotFound if not exists.
func (s *FeatureStore) GetByEntityID(ctx context.Context, entityID string) (*domain.FeatureRecord, error) {
	query := featureSelect + ` WHERE entity_id = ?`

	rows, err := s.conn.Query(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("query feature record by id: %w", err)
	}
	defer rows.Close()

	records, err := scanFeatureRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// GetAll retrieves every feature record, ordered by entity_id ASC.
func (s *FeatureStore) GetAll(ctx context.Context) ([]*domain.FeatureRecord, error) {
	query := featureSelect + ` ORDER BY entity_id ASC`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all feature records: %w", err)
	}
	defer rows.Close()

	return scanFeatureRecords(rows)
}

const featureSelect = `
	SELECT entity_id, reference_date, churn_label, account_closed,
	       feature_names, feature_values, categorical_names, categorical_values
	FROM feature_records
`

// exists checks if a feature record for the entity exists.
func (s *FeatureStore) exists(ctx context.Context, entityID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM feature_records WHERE entity_id = ?`, entityID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// numericArrays flattens the numeric map into sorted parallel arrays.
func numericArrays(f *domain.FeatureRecord) ([]string, []*float64) {
	names := make([]string, 0, len(f.Numeric))
	for name := range f.Numeric {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]*float64, len(names))
	for i, name := range names {
		values[i] = f.Numeric[name]
	}
	return names, values
}

// categoricalArrays flattens the categorical map into sorted parallel arrays.
func categoricalArrays(f *domain.FeatureRecord) ([]string, []string) {
	names := make([]string, 0, len(f.Categorical))
	for name := range f.Categorical {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]string, len(names))
	for i, name := range names {
		values[i] = f.Categorical[name]
	}
	return names, values
}

// scanFeatureRecords scans multiple rows.
func scanFeatureRecords(rows chRows) ([]*domain.FeatureRecord, error) {
	var records []*domain.FeatureRecord

	for rows.Next() {
		var f domain.FeatureRecord
		var referenceDate time.Time
		var churnLabel, accountClosed uint8
		var featureNames []string
		var featureValues []*float64
		var categoricalNames, categoricalValues []string

		err := rows.Scan(
			&f.EntityID, &referenceDate, &churnLabel, &accountClosed,
			&featureNames, &featureValues, &categoricalNames, &categoricalValues,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature record row: %w", err)
		}

		f.ReferenceDate = referenceDate.UTC()
		f.ChurnLabel = churnLabel != 0
		f.AccountClosed = accountClosed != 0

		f.Numeric = make(map[string]*float64, len(featureNames))
		for i, name := range featureNames {
			f.Numeric[name] = featureValues[i]
		}
		f.Categorical = make(map[string]string, len(categoricalNames))
		for i, name := range categoricalNames {
			f.Categorical[name] = categoricalValues[i]
		}

		records = append(records, &f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature record rows: %w", err)
	}

	return records, nil
}

func boolUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
