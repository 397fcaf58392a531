package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/Baaaki/car-marketplace/internal/models"
	"github.com/Baaaki/car-marketplace/internal/repository"
	"github.com/Baaaki/car-marketplace/internal/service"
	"github.com/Baaaki/car-marketplace/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	ctx := context.Background()

	stats := service.NewStatsService(repository.NewStatsRepository(testDB.DB))

	empty, err := stats.MarketplaceSummary(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.Listings.Total)
	assert.Zero(t, empty.Pricing.Average)
	assert.Empty(t, empty.PopularBodyTypes)

	alice := testutil.CreateTestUser(t, testDB.DB, "alice", "alice@example.com", "secret1", models.RoleUser)
	bob := testutil.CreateTestUser(t, testDB.DB, "bob", "bob@example.com", "secret2", models.RoleUser)

	testutil.CreateTestListing(t, testDB.DB, alice.ID, "Toyota", "Camry", "Sedan", 20000)
	testutil.CreateTestListing(t, testDB.DB, alice.ID, "Toyota", "RAV4", "SUV", 30000)
	sold := testutil.CreateTestListing(t, testDB.DB, bob.ID, "Honda", "Civic", "Sedan", 10000)
	require.NoError(t, testDB.DB.Model(sold).Update("status", models.ListingSold).Error)

	testutil.CreateTestMessage(t, testDB.DB, alice.ID, bob.ID, "hi", time.Now().UTC().Add(-time.Hour).Truncate(time.Second))

	t.Run("listing stats", func(t *testing.T) {
		got, err := stats.ListingStats(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(3), got.Total)
		assert.Equal(t, int64(2), got.ByStatus["available"])
		assert.Equal(t, int64(1), got.ByStatus["sold"])
		require.NotEmpty(t, got.TopMakes)
		assert.Equal(t, "Toyota", got.TopMakes[0].Label)
		assert.Equal(t, int64(2), got.TopMakes[0].Count)
		assert.InDelta(t, 20000, got.PriceRange.Average, 0.01)
		assert.InDelta(t, 10000, got.PriceRange.Minimum, 0.01)
		assert.InDelta(t, 30000, got.PriceRange.Maximum, 0.01)
		require.Len(t, got.ByYear, 1)
		assert.Equal(t, "2018", got.ByYear[0].Label)
	})

	t.Run("marketplace summary", func(t *testing.T) {
		got, err := stats.MarketplaceSummary(ctx)
		require.NoError(t, err)

		assert.Equal(t, service.StatusCounts{Total: 3, Available: 2, Sold: 1}, got.Listings)
		assert.InDelta(t, 25000, got.Pricing.Average, 0.01)
		assert.Len(t, got.PopularBodyTypes, 2)
	})

	t.Run("listings by make", func(t *testing.T) {
		got, err := stats.ListingsByMake(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Toyota", got[0].Label)
		assert.Equal(t, "Honda", got[1].Label)
	})

	t.Run("user activity", func(t *testing.T) {
		got, err := stats.UserActivity(ctx, 0)
		require.NoError(t, err)

		assert.Len(t, got.RecentListings, 3)
		assert.Equal(t, "Honda", got.RecentListings[0].Make)
		assert.Equal(t, "bob", got.RecentListings[0].SellerName)
		require.Len(t, got.TopSellers, 2)
		assert.Equal(t, "alice", got.TopSellers[0].Username)
		assert.Equal(t, int64(2), got.TopSellers[0].ListingCount)
		require.Len(t, got.MessageActivity, 1)
		assert.Equal(t, int64(1), got.MessageActivity[0].Count)
	})
}
