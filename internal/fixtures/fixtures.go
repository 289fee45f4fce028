package fixtures

import (
	"context"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

// Load populates stores with a deterministic demonstration batch:
// a mix of active, churned, and unresolvable entities with enough
// transaction and valuation history to exercise every window.
//
// The batch is built for a run date of 2024-09-30.
func Load(
	ctx context.Context,
	entityStore storage.EntityStore,
	accountStore storage.AccountStore,
	txnStore storage.TransactionStore,
	valStore storage.ValuationStore,
) error {
	if err := loadEntities(ctx, entityStore, accountStore); err != nil {
		return err
	}

	if err := loadTransactions(ctx, txnStore); err != nil {
		return err
	}

	return loadValuations(ctx, valStore)
}

// RunDate is the run date the fixture batch is built around.
func RunDate() time.Time {
	return domain.Date(2024, time.September, 30)
}

func loadEntities(ctx context.Context, entityStore storage.EntityStore, accountStore storage.AccountStore) error {
	entities := []*domain.Entity{
		// Active client with two open accounts and steady history.
		{
			EntityID:          "ent_001",
			Status:            domain.StatusActive,
			OpenedAt:          datePtr(2022, time.January, 15),
			DomicileCountry:   "US",
			DomicileState:     "CA",
			BookCurrency:      "USD",
			CapitalCommitment: floatPtr(500000),
			Objective:         "growth",
			Accounts: []*domain.Account{
				{
					AccountID:       "acc_101",
					OwnerID:         "ent_001",
					Status:          domain.StatusOpen,
					OpenDate:        datePtr(2022, time.January, 15),
					AccountType:     "brokerage",
					DomicileCountry: "US",
					DomicileState:   "CA",
					BookCurrency:    "USD",
					Objective:       "growth",
				},
				{
					AccountID:       "acc_102",
					OwnerID:         "ent_001",
					Status:          domain.StatusOpen,
					OpenDate:        datePtr(2023, time.March, 1),
					AccountType:     "retirement",
					DomicileCountry: "US",
					DomicileState:   "CA",
					BookCurrency:    "USD",
					Objective:       "income",
				},
			},
		},
		// Suspended 2024-06-01: churned, windows anchor at the closure date.
		{
			EntityID:          "ent_002",
			Status:            domain.StatusSuspended,
			OpenedAt:          datePtr(2021, time.March, 10),
			ClosedAt:          datePtr(2024, time.June, 1),
			DomicileCountry:   "US",
			DomicileState:     "NY",
			BookCurrency:      "USD",
			CapitalCommitment: floatPtr(250000),
			Objective:         "preservation",
			Accounts: []*domain.Account{
				{
					AccountID:       "acc_201",
					OwnerID:         "ent_002",
					Status:          domain.StatusClosed,
					OpenDate:        datePtr(2021, time.March, 10),
					CloseDate:       datePtr(2024, time.May, 20),
					AccountType:     "brokerage",
					DomicileCountry: "US",
					DomicileState:   "NY",
					BookCurrency:    "USD",
					Objective:       "preservation",
				},
			},
		},
		// Closed account-level entity: no owned accounts, churned.
		{
			EntityID:        "ent_003",
			Status:          domain.StatusClosed,
			OpenedAt:        datePtr(2020, time.July, 1),
			ClosedAt:        datePtr(2024, time.August, 1),
			DomicileCountry: "GB",
			BookCurrency:    "GBP",
			Objective:       "speculation",
		},
		// Active entity carrying a malformed amount in its history.
		{
			EntityID:        "ent_004",
			Status:          domain.StatusActive,
			OpenedAt:        datePtr(2023, time.November, 5),
			DomicileCountry: "US",
			DomicileState:   "TX",
			BookCurrency:    "USD",
			Objective:       "growth",
		},
		// Unrecognized status: resolver must drop it.
		{
			EntityID:        "ent_005",
			Status:          domain.Status("dormant"),
			OpenedAt:        datePtr(2022, time.May, 5),
			DomicileCountry: "US",
			BookCurrency:    "USD",
		},
		// Terminal status with no closure date: resolver must drop it.
		{
			EntityID:        "ent_006",
			Status:          domain.StatusLocked,
			OpenedAt:        datePtr(2022, time.February, 20),
			DomicileCountry: "DE",
			BookCurrency:    "EUR",
		},
	}

	for _, e := range entities {
		if err := entityStore.Insert(ctx, e); err != nil {
			return err
		}
		if len(e.Accounts) > 0 {
			if err := accountStore.InsertBulk(ctx, e.Accounts); err != nil {
				return err
			}
		}
	}
	return nil
}

func loadTransactions(ctx context.Context, store storage.TransactionStore) error {
	records := []*domain.ChildRecord{
		// ent_001: steady deposits and withdrawals over the past year.
		txn("txn_001", "acc_101", domain.Date(2023, time.October, 12), "15000", "deposit"),
		txn("txn_002", "acc_101", domain.Date(2024, time.January, 8), "5000", "deposit"),
		txn("txn_003", "acc_101", domain.Date(2024, time.April, 22), "-1200", "withdrawal"),
		txn("txn_004", "acc_102", domain.Date(2024, time.July, 3), "2500", "deposit"),
		txn("txn_005", "acc_101", domain.Date(2024, time.September, 10), "800", "deposit"),
		txn("txn_006", "acc_102", domain.Date(2024, time.September, 25), "-300", "withdrawal"),

		// ent_002: one deposit inside the 90-day window before suspension,
		// one post-closure transaction that must never contribute.
		txn("txn_101", "acc_201", domain.Date(2024, time.May, 15), "100", "deposit"),
		txn("txn_102", "acc_201", domain.Date(2024, time.July, 1), "-30", "withdrawal"),

		// ent_003: thinning activity before closure.
		txn("txn_201", "ent_003", domain.Date(2024, time.February, 14), "-4000", "withdrawal"),
		txn("txn_202", "ent_003", domain.Date(2024, time.June, 30), "-2500", "withdrawal"),
		txn("txn_203", "ent_003", domain.Date(2024, time.July, 28), "-1800", "withdrawal"),

		// ent_004: one well-formed and one malformed amount.
		txn("txn_301", "ent_004", domain.Date(2024, time.August, 19), "950", "deposit"),
		txn("txn_302", "ent_004", domain.Date(2024, time.September, 2), "n/a", "deposit"),
	}

	return store.InsertBulk(ctx, records)
}

func loadValuations(ctx context.Context, store storage.ValuationStore) error {
	records := []*domain.ChildRecord{
		// ent_001: quarterly snapshots across both accounts.
		val("val_001", "acc_101", domain.Date(2023, time.December, 29), "118000", "2400", "equity"),
		val("val_002", "acc_101", domain.Date(2024, time.March, 29), "121500", "4100", "equity"),
		val("val_003", "acc_101", domain.Date(2024, time.June, 28), "119200", "1800", "equity"),
		val("val_004", "acc_101", domain.Date(2024, time.September, 27), "123400", "5600", "equity"),
		val("val_005", "acc_102", domain.Date(2024, time.June, 28), "40300", "-700", "fixed_income"),
		val("val_006", "acc_102", domain.Date(2024, time.September, 27), "41100", "100", "fixed_income"),

		// ent_002: shrinking portfolio up to the suspension, plus one
		// post-closure snapshot that must never contribute.
		val("val_101", "acc_201", domain.Date(2024, time.February, 28), "82000", "-1500", "equity"),
		val("val_102", "acc_201", domain.Date(2024, time.April, 30), "74500", "-3800", "equity"),
		val("val_103", "acc_201", domain.Date(2024, time.May, 31), "69800", "-5100", "equity"),
		val("val_104", "acc_201", domain.Date(2024, time.June, 28), "67000", "-6000", "equity"),

		// ent_003: sparse mixed-class snapshots before closure.
		val("val_201", "ent_003", domain.Date(2024, time.March, 28), "31000", "900", "fixed_income"),
		val("val_202", "ent_003", domain.Date(2024, time.June, 28), "24200", "-400", "fixed_income"),
		val("val_203", "ent_003", domain.Date(2024, time.July, 31), "18900", "-1100", "cash"),

		// ent_004: single recent snapshot.
		val("val_301", "ent_004", domain.Date(2024, time.September, 27), "9600", "150", "equity"),
	}

	return store.InsertBulk(ctx, records)
}

func txn(recordID, ownerID string, eventDate time.Time, amount, eventType string) *domain.ChildRecord {
	return &domain.ChildRecord{
		RecordID:  recordID,
		OwnerID:   ownerID,
		EventDate: eventDate,
		NumericFields: map[string]string{
			domain.FieldAmount: amount,
		},
		CategoryFields: map[string]string{
			domain.FieldEventType: eventType,
		},
	}
}

func val(recordID, ownerID string, eventDate time.Time, marketValue, unrealizedGain, assetClass string) *domain.ChildRecord {
	return &domain.ChildRecord{
		RecordID:  recordID,
		OwnerID:   ownerID,
		EventDate: eventDate,
		NumericFields: map[string]string{
			domain.FieldMarketValue:    marketValue,
			domain.FieldUnrealizedGain: unrealizedGain,
		},
		CategoryFields: map[string]string{
			domain.FieldAssetClass: assetClass,
		},
	}
}

func datePtr(year int, month time.Month, day int) *time.Time {
	t := domain.Date(year, month, day)
	return &t
}

func floatPtr(v float64) *float64 {
	return &v
}
