package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

func testTransaction(id, owner string, date time.Time, amount string) *domain.ChildRecord {
	return &domain.ChildRecord{
		RecordID:      id,
		OwnerID:       owner,
		EventDate:     date,
		NumericFields: map[string]string{domain.FieldAmount: amount},
		CategoryFields: map[string]string{
			domain.FieldEventType: "deposit",
		},
	}
}

func TestTransactionStore_InsertBulkAndGetByOwnerIDs(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransactionStore(pool)
	ctx := context.Background()

	records := []*domain.ChildRecord{
		testTransaction("txn_002", "acc_101", domain.Date(2024, time.May, 20), "-30"),
		testTransaction("txn_001", "acc_101", domain.Date(2024, time.May, 15), "100"),
		testTransaction("txn_003", "acc_999", domain.Date(2024, time.May, 10), "50"),
	}
	require.NoError(t, store.InsertBulk(ctx, records))

	got, err := store.GetByOwnerIDs(ctx, []string{"acc_101"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Canonical ordering: (event_date ASC, record_id ASC).
	assert.Equal(t, "txn_001", got[0].RecordID)
	assert.Equal(t, "txn_002", got[1].RecordID)
	assert.Equal(t, "100", got[0].NumericFields[domain.FieldAmount])
	assert.Equal(t, "deposit", got[0].CategoryFields[domain.FieldEventType])
	assert.True(t, got[0].EventDate.Equal(domain.Date(2024, time.May, 15)))
}

func TestTransactionStore_MalformedAmountRoundTrips(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransactionStore(pool)
	ctx := context.Background()

	// The amount column is TEXT: a malformed value must survive storage
	// so the aggregation pass can report it as a skipped record.
	require.NoError(t, store.Insert(ctx, testTransaction("txn_bad", "acc_101", domain.Date(2024, time.May, 15), "n/a")))

	got, err := store.GetByOwnerIDs(ctx, []string{"acc_101"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n/a", got[0].NumericFields[domain.FieldAmount])
}

func TestTransactionStore_InsertBulkAtomicOnDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransactionStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testTransaction("txn_001", "acc_101", domain.Date(2024, time.May, 15), "100")))

	batch := []*domain.ChildRecord{
		testTransaction("txn_002", "acc_101", domain.Date(2024, time.May, 16), "10"),
		testTransaction("txn_001", "acc_101", domain.Date(2024, time.May, 17), "20"), // duplicate
	}
	assert.ErrorIs(t, store.InsertBulk(ctx, batch), storage.ErrDuplicateKey)

	// The transaction must have rolled back: nothing from the batch.
	got, err := store.GetByOwnerIDs(ctx, []string{"acc_101"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTransactionStore_EmptyOwnerList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewTransactionStore(pool)

	got, err := store.GetByOwnerIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAccountStore_InsertAndGetByOwnerID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAccountStore(pool)
	ctx := context.Background()

	account := &domain.Account{
		AccountID:         "acc_101",
		OwnerID:           "ent_001",
		Status:            domain.StatusClosed,
		OpenDate:          ptr(domain.Date(2021, time.March, 10)),
		CloseDate:         ptr(domain.Date(2024, time.May, 20)),
		AccountType:       "brokerage",
		DomicileCountry:   "US",
		DomicileState:     "NY",
		BookCurrency:      "USD",
		CapitalCommitment: ptr(100000.0),
		Objective:         "income",
	}
	require.NoError(t, store.Insert(ctx, account))

	got, err := store.GetByOwnerID(ctx, "ent_001")
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, account.AccountID, got[0].AccountID)
	assert.Equal(t, account.Status, got[0].Status)
	assert.True(t, got[0].CloseDate.Equal(*account.CloseDate))
	assert.Equal(t, *account.CapitalCommitment, *got[0].CapitalCommitment)
}

func TestAccountStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewAccountStore(pool)
	ctx := context.Background()

	account := &domain.Account{AccountID: "acc_dup", OwnerID: "ent_001", Status: domain.StatusOpen}

	require.NoError(t, store.Insert(ctx, account))
	assert.ErrorIs(t, store.Insert(ctx, account), storage.ErrDuplicateKey)
}
