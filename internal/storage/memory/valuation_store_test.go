package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

func testVal(id, owner string, date time.Time) *domain.ChildRecord {
	return &domain.ChildRecord{
		RecordID:  id,
		OwnerID:   owner,
		EventDate: date,
		NumericFields: map[string]string{
			domain.FieldMarketValue:    "1000",
			domain.FieldUnrealizedGain: "50",
		},
		CategoryFields: map[string]string{domain.FieldAssetClass: "equity"},
	}
}

func TestValuationStore_InsertBulkAndGet(t *testing.T) {
	store := NewValuationStore()
	ctx := context.Background()

	records := []*domain.ChildRecord{
		testVal("v2", "acc_201", domain.Date(2024, time.April, 30)),
		testVal("v1", "acc_201", domain.Date(2024, time.February, 28)),
	}
	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByOwnerIDs(ctx, []string{"acc_201"})
	if err != nil {
		t.Fatalf("GetByOwnerIDs failed: %v", err)
	}
	if len(got) != 2 || got[0].RecordID != "v1" {
		t.Errorf("unexpected result: %v", got)
	}
}

func TestValuationStore_DuplicateRejected(t *testing.T) {
	store := NewValuationStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.ChildRecord{testVal("v1", "acc_201", domain.Date(2024, time.April, 30))}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	err := store.InsertBulk(ctx, []*domain.ChildRecord{testVal("v1", "acc_201", domain.Date(2024, time.May, 31))})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestValuationStore_GetByOwnerIDsSince(t *testing.T) {
	store := NewValuationStore()
	ctx := context.Background()

	since := domain.Date(2024, time.February, 28)
	until := domain.Date(2024, time.May, 31)
	records := []*domain.ChildRecord{
		testVal("v1", "acc_201", since),                             // on since: excluded
		testVal("v2", "acc_201", domain.Date(2024, time.April, 30)), // inside
		testVal("v3", "acc_201", until),                             // on until: included
		testVal("v4", "acc_201", domain.Date(2024, time.June, 28)),  // after until
	}
	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByOwnerIDsSince(ctx, []string{"acc_201"}, since, until)
	if err != nil {
		t.Fatalf("GetByOwnerIDsSince failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records in (since, until], got %d", len(got))
	}
	if got[0].RecordID != "v2" || got[1].RecordID != "v3" {
		t.Errorf("unexpected records: %s, %s", got[0].RecordID, got[1].RecordID)
	}
}
