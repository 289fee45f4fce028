// Package ingestion loads upstream extract files into the backing
// stores. Numeric values are staged verbatim; only structural problems
// (missing columns, unparseable dates) fail a load. Malformed numeric
// values are surfaced later by the aggregation pass as diagnostics.
package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/idhash"
	"churn-feature-lab/internal/storage"
)

const dateLayout = "2006-01-02"

// Expected extract headers, in column order.
var (
	transactionHeader = []string{"record_id", "owner_id", "event_date", "amount", "event_type"}
	valuationHeader   = []string{"record_id", "owner_id", "event_date", "market_value", "unrealized_gain_loss", "asset_class"}
)

// Loader stages extract rows into the transaction and valuation stores.
// Deterministic ordering is enforced before insert; duplicates are
// rejected by the storage layer.
type Loader struct {
	txnStore storage.TransactionStore
	valStore storage.ValuationStore
}

// NewLoader creates a Loader over the given stores.
func NewLoader(txnStore storage.TransactionStore, valStore storage.ValuationStore) *Loader {
	return &Loader{txnStore: txnStore, valStore: valStore}
}

// LoadResult summarizes one extract load.
type LoadResult struct {
	Loaded      int // rows inserted
	GeneratedID int // rows that arrived without a record_id
}

// LoadTransactions reads a transaction extract and bulk-inserts it.
func (l *Loader) LoadTransactions(ctx context.Context, r io.Reader) (*LoadResult, error) {
	rows, generated, err := readExtract(r, domain.StreamTransactions, transactionHeader, func(cols []string) (map[string]string, map[string]string) {
		numeric := map[string]string{domain.FieldAmount: cols[3]}
		category := map[string]string{domain.FieldEventType: cols[4]}
		return numeric, category
	})
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		if err := l.txnStore.InsertBulk(ctx, rows); err != nil {
			return nil, fmt.Errorf("insert transactions: %w", err)
		}
	}
	return &LoadResult{Loaded: len(rows), GeneratedID: generated}, nil
}

// LoadValuations reads a valuation snapshot extract and bulk-inserts it.
func (l *Loader) LoadValuations(ctx context.Context, r io.Reader) (*LoadResult, error) {
	rows, generated, err := readExtract(r, domain.StreamValuations, valuationHeader, func(cols []string) (map[string]string, map[string]string) {
		numeric := map[string]string{
			domain.FieldMarketValue:    cols[3],
			domain.FieldUnrealizedGain: cols[4],
		}
		category := map[string]string{domain.FieldAssetClass: cols[5]}
		return numeric, category
	})
	if err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		if err := l.valStore.InsertBulk(ctx, rows); err != nil {
			return nil, fmt.Errorf("insert valuations: %w", err)
		}
	}
	return &LoadResult{Loaded: len(rows), GeneratedID: generated}, nil
}

// readExtract parses a CSV extract into child records. The first row
// must match the expected header exactly. Rows with an empty record_id
// get a deterministic generated one.
func readExtract(
	r io.Reader,
	stream string,
	header []string,
	fields func(cols []string) (numeric, category map[string]string),
) ([]*domain.ChildRecord, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(header)

	first, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read %s header: %w", stream, err)
	}
	if err := checkHeader(first, header); err != nil {
		return nil, 0, fmt.Errorf("%s extract: %w", stream, err)
	}

	var (
		rows      []*domain.ChildRecord
		generated int
	)
	for rowIndex := 0; ; rowIndex++ {
		cols, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read %s row: %w", stream, err)
		}

		eventDate, err := time.ParseInLocation(dateLayout, cols[2], time.UTC)
		if err != nil {
			return nil, 0, fmt.Errorf("%s row %d: bad event_date %q", stream, rowIndex+1, cols[2])
		}
		if cols[1] == "" {
			return nil, 0, fmt.Errorf("%s row %d: empty owner_id", stream, rowIndex+1)
		}

		recordID := cols[0]
		if recordID == "" {
			recordID = idhash.ComputeRecordID(stream, cols[1], eventDate, rowIndex)
			generated++
		}

		numeric, category := fields(cols)
		rows = append(rows, &domain.ChildRecord{
			RecordID:       recordID,
			OwnerID:        cols[1],
			EventDate:      eventDate,
			NumericFields:  numeric,
			CategoryFields: category,
		})
	}

	sortRecords(rows)
	return rows, generated, nil
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("expected %d columns, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("expected column %d to be %q, got %q", i, want[i], got[i])
		}
	}
	return nil
}

// sortRecords enforces the canonical (event_date ASC, record_id ASC)
// ordering before insert.
func sortRecords(records []*domain.ChildRecord) {
	sort.Slice(records, func(i, j int) bool {
		if !records[i].EventDate.Equal(records[j].EventDate) {
			return records[i].EventDate.Before(records[j].EventDate)
		}
		return records[i].RecordID < records[j].RecordID
	})
}
