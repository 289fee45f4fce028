package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

func testFeature(entityID string) *domain.FeatureRecord {
	count := 3.0
	return &domain.FeatureRecord{
		EntityID:      entityID,
		ReferenceDate: domain.Date(2024, time.June, 1),
		ChurnLabel:    true,
		Numeric: map[string]*float64{
			"transactions_amount_count_90d": &count,
			"transactions_amount_mean_30d":  nil, // explicit null
		},
		Categorical: map[string]string{domain.StaticPrimaryAssetClass: "equity"},
	}
}

func TestFeatureStore_InsertBulkAndGet(t *testing.T) {
	store := NewFeatureStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.FeatureRecord{testFeature("ent_001")}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByEntityID(ctx, "ent_001")
	if err != nil {
		t.Fatalf("GetByEntityID failed: %v", err)
	}
	if !got.ChurnLabel {
		t.Error("label lost on round trip")
	}
	if v, ok := got.NumericValue("transactions_amount_count_90d"); !ok || v != 3 {
		t.Errorf("expected count 3, got %v (%v)", v, ok)
	}
	// Explicit nulls must survive storage; a nil entry is a value.
	if stored, ok := got.Numeric["transactions_amount_mean_30d"]; !ok || stored != nil {
		t.Error("explicit null not preserved")
	}
}

func TestFeatureStore_DuplicateEntity(t *testing.T) {
	store := NewFeatureStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.FeatureRecord{testFeature("ent_001")}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	err := store.InsertBulk(ctx, []*domain.FeatureRecord{testFeature("ent_001")})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestFeatureStore_NotFound(t *testing.T) {
	store := NewFeatureStore()

	_, err := store.GetByEntityID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFeatureStore_GetAllOrdered(t *testing.T) {
	store := NewFeatureStore()
	ctx := context.Background()

	batch := []*domain.FeatureRecord{
		testFeature("ent_002"),
		testFeature("ent_001"),
	}
	if err := store.InsertBulk(ctx, batch); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 2 || all[0].EntityID != "ent_001" {
		t.Errorf("unexpected ordering: %v", all)
	}
}

func TestFeatureStore_ReturnsCopies(t *testing.T) {
	store := NewFeatureStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.FeatureRecord{testFeature("ent_001")}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	first, _ := store.GetByEntityID(ctx, "ent_001")
	*first.Numeric["transactions_amount_count_90d"] = 999
	first.Categorical[domain.StaticPrimaryAssetClass] = "mutated"

	second, _ := store.GetByEntityID(ctx, "ent_001")
	if v, _ := second.NumericValue("transactions_amount_count_90d"); v != 3 {
		t.Error("stored numeric mutated through returned copy")
	}
	if second.Categorical[domain.StaticPrimaryAssetClass] != "equity" {
		t.Error("stored categorical mutated through returned copy")
	}
}
