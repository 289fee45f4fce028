package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churn-feature-lab/internal/domain"
	"churn-feature-lab/internal/storage"
)

func featureRecord(entityID string) *domain.FeatureRecord {
	return &domain.FeatureRecord{
		EntityID:      entityID,
		ReferenceDate: domain.Date(2024, time.September, 30),
		ChurnLabel:    true,
		AccountClosed: false,
		Numeric: map[string]*float64{
			"transactions_amount_count_30d": ptr(3.0),
			"transactions_amount_sum_30d":   ptr(1250.5),
			"transactions_amount_mean_90d":  nil, // empty window stays null
		},
		Categorical: map[string]string{
			"top_asset_class": "equity",
		},
	}
}

func TestFeatureStore_InsertAndGetByEntityID(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	want := featureRecord("ent_001")
	err := store.InsertBulk(ctx, []*domain.FeatureRecord{want})
	require.NoError(t, err)

	got, err := store.GetByEntityID(ctx, "ent_001")
	require.NoError(t, err)

	assert.Equal(t, "ent_001", got.EntityID)
	assert.Equal(t, want.ReferenceDate, got.ReferenceDate)
	assert.True(t, got.ChurnLabel)
	assert.False(t, got.AccountClosed)
	assert.Equal(t, "equity", got.Categorical["top_asset_class"])

	require.Len(t, got.Numeric, 3)
	require.NotNil(t, got.Numeric["transactions_amount_count_30d"])
	assert.Equal(t, 3.0, *got.Numeric["transactions_amount_count_30d"])
	require.NotNil(t, got.Numeric["transactions_amount_sum_30d"])
	assert.Equal(t, 1250.5, *got.Numeric["transactions_amount_sum_30d"])
}

func TestFeatureStore_NullValueSurvivesRoundTrip(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.FeatureRecord{featureRecord("ent_001")})
	require.NoError(t, err)

	got, err := store.GetByEntityID(ctx, "ent_001")
	require.NoError(t, err)

	// The null entry must come back present and nil, not dropped and
	// not collapsed to zero.
	stored, ok := got.Numeric["transactions_amount_mean_90d"]
	require.True(t, ok, "null feature entry must survive the round trip")
	assert.Nil(t, stored)
}

func TestFeatureStore_GetByEntityID_NotFound(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	_, err := store.GetByEntityID(ctx, "ent_missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFeatureStore_InsertBulk_DuplicateEntity(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.FeatureRecord{featureRecord("ent_001")})
	require.NoError(t, err)

	// Stored duplicate rejects the batch
	err = store.InsertBulk(ctx, []*domain.FeatureRecord{featureRecord("ent_001")})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Intra-batch duplicate rejects the batch
	err = store.InsertBulk(ctx, []*domain.FeatureRecord{
		featureRecord("ent_002"),
		featureRecord("ent_002"),
	})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByEntityID(ctx, "ent_002")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFeatureStore_InsertBulk_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.FeatureRecord{featureRecord("")})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestFeatureStore_GetAll_Ordering(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewFeatureStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.FeatureRecord{
		featureRecord("ent_003"),
		featureRecord("ent_001"),
		featureRecord("ent_002"),
	})
	require.NoError(t, err)

	got, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ent_001", got[0].EntityID)
	assert.Equal(t, "ent_002", got[1].EntityID)
	assert.Equal(t, "ent_003", got[2].EntityID)
}
