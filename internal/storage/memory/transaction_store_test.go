package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

func testTxn(id, owner string, date time.Time) *domain.ChildRecord {
	return &domain.ChildRecord{
		RecordID:      id,
		OwnerID:       owner,
		EventDate:     date,
		NumericFields: map[string]string{domain.FieldAmount: "100"},
	}
}

func TestTransactionStore_InsertBulkAndGet(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	records := []*domain.ChildRecord{
		testTxn("r2", "acc_101", domain.Date(2024, time.May, 20)),
		testTxn("r1", "acc_101", domain.Date(2024, time.May, 15)),
		testTxn("r3", "acc_999", domain.Date(2024, time.May, 10)),
	}
	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByOwnerIDs(ctx, []string{"acc_101"})
	if err != nil {
		t.Fatalf("GetByOwnerIDs failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	// Canonical ordering: (event_date ASC, record_id ASC).
	if got[0].RecordID != "r1" || got[1].RecordID != "r2" {
		t.Errorf("unexpected order: %s, %s", got[0].RecordID, got[1].RecordID)
	}
}

func TestTransactionStore_InsertBulkAtomicOnDuplicate(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testTxn("r1", "acc_101", domain.Date(2024, time.May, 15))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	batch := []*domain.ChildRecord{
		testTxn("r2", "acc_101", domain.Date(2024, time.May, 16)),
		testTxn("r1", "acc_101", domain.Date(2024, time.May, 17)), // duplicate
	}
	if err := store.InsertBulk(ctx, batch); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// Nothing from the failed batch may be visible.
	got, _ := store.GetByOwnerIDs(ctx, []string{"acc_101"})
	if len(got) != 1 {
		t.Errorf("failed batch leaked records: got %d", len(got))
	}
}

func TestTransactionStore_InsertBulkRejectsIntraBatchDuplicate(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	batch := []*domain.ChildRecord{
		testTxn("r1", "acc_101", domain.Date(2024, time.May, 15)),
		testTxn("r1", "acc_101", domain.Date(2024, time.May, 16)),
	}
	if err := store.InsertBulk(ctx, batch); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestTransactionStore_GetByOwnerIDs_Empty(t *testing.T) {
	store := NewTransactionStore()

	got, err := store.GetByOwnerIDs(context.Background(), []string{"acc_101"})
	if err != nil {
		t.Fatalf("GetByOwnerIDs failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}

func TestTransactionStore_ReturnsCopies(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testTxn("r1", "acc_101", domain.Date(2024, time.May, 15))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	first, _ := store.GetByOwnerIDs(ctx, []string{"acc_101"})
	first[0].NumericFields[domain.FieldAmount] = "mutated"

	second, _ := store.GetByOwnerIDs(ctx, []string{"acc_101"})
	if second[0].NumericFields[domain.FieldAmount] != "100" {
		t.Error("stored record mutated through returned copy")
	}
}
