package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybersweeft1/sweeftprojects/internal/models"
	"github.com/cybersweeft1/sweeftprojects/pkg/config"
)

func entitlementFixture(t *testing.T) (*EntitlementRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	repo := NewEntitlementRepository(client, config.EntitlementConfig{
		StorageKeyPrefix: "cybersweeft_purchases_v1",
		LastPurchaseTTL:  time.Hour,
	}, nil)
	return repo, mr
}

func testProject(id string) models.Project {
	return models.Project{
		ID:         id,
		Name:       "Project " + id,
		Department: "Department of Marketing",
		School:     models.SchoolBusiness,
		Price:      2500,
		AssetRef:   "ref-" + id,
	}
}

func TestEntitlementsEmptyByDefault(t *testing.T) {
	repo, _ := entitlementFixture(t)
	ctx := context.Background()

	ids, err := repo.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	owned, err := repo.Has(ctx, "dev-1", "P1")
	require.NoError(t, err)
	assert.False(t, owned)

	last, err := repo.LastPurchase(ctx, "dev-1")
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestRecordGrantsOwnership(t *testing.T) {
	repo, _ := entitlementFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "dev-1", testProject("P1"), "PRJ_1_AAAAAA"))

	owned, err := repo.Has(ctx, "dev-1", "P1")
	require.NoError(t, err)
	assert.True(t, owned)

	// Scoped to the device, not global.
	owned, err = repo.Has(ctx, "dev-2", "P1")
	require.NoError(t, err)
	assert.False(t, owned)

	last, err := repo.LastPurchase(ctx, "dev-1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "P1", last.Project.ID)
	assert.Equal(t, "PRJ_1_AAAAAA", last.Reference)
}

func TestRecordIsIdempotentOnOwnedSet(t *testing.T) {
	repo, _ := entitlementFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "dev-1", testProject("P1"), "PRJ_1_AAAAAA"))
	require.NoError(t, repo.Record(ctx, "dev-1", testProject("P1"), "PRJ_2_BBBBBB"))

	ids, err := repo.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)

	// The last-purchase record still refreshes on every call.
	last, err := repo.LastPurchase(ctx, "dev-1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, "PRJ_2_BBBBBB", last.Reference)
}

func TestRecordAppendsInPurchaseOrder(t *testing.T) {
	repo, _ := entitlementFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "dev-1", testProject("P3"), "PRJ_1_AAAAAA"))
	require.NoError(t, repo.Record(ctx, "dev-1", testProject("P1"), "PRJ_2_BBBBBB"))

	ids, err := repo.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"P3", "P1"}, ids)
}

func TestCorruptOwnedRecordReadsAsEmpty(t *testing.T) {
	repo, mr := entitlementFixture(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("cybersweeft_purchases_v1:dev-1", "{{{ not json"))

	ids, err := repo.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	// A fresh purchase overwrites the corrupt record.
	require.NoError(t, repo.Record(ctx, "dev-1", testProject("P1"), "PRJ_1_AAAAAA"))
	ids, err = repo.List(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, ids)
}

func TestLastPurchaseExpires(t *testing.T) {
	repo, mr := entitlementFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, "dev-1", testProject("P1"), "PRJ_1_AAAAAA"))

	mr.FastForward(2 * time.Hour)

	last, err := repo.LastPurchase(ctx, "dev-1")
	require.NoError(t, err)
	assert.Nil(t, last)

	// Ownership has no expiry.
	owned, err := repo.Has(ctx, "dev-1", "P1")
	require.NoError(t, err)
	assert.True(t, owned)
}

func TestCorruptLastPurchaseReadsAsMissing(t *testing.T) {
	repo, mr := entitlementFixture(t)

	require.NoError(t, mr.Set("last_purchase:dev-1", "not json either"))

	last, err := repo.LastPurchase(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Nil(t, last)
}
