package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "analyzer.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleAnalysis() *model.EnrichedAnalysis {
	return &model.EnrichedAnalysis{
		RentEstimate:     2000,
		TotalMonthlyRent: 2000,
		RentConfidence:   model.ConfidenceHigh,
		RentSource:       model.RentSourcePrimary,
		UnitCount:        1,
		InvestmentScore:  15,
		InvestmentBadge:  model.BadgeAvoid,
	}
}

func TestSQLiteCacheRoundTrip(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	key := "500 oak ave fort worth tx 76102"

	got, err := s.GetCachedAnalysis(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got, "miss on empty cache")

	require.NoError(t, s.SetCachedAnalysis(ctx, key, sampleAnalysis(), time.Hour))

	got, err = s.GetCachedAnalysis(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2000.0, got.RentEstimate)
	assert.Equal(t, model.ConfidenceHigh, got.RentConfidence)
	assert.Equal(t, model.BadgeAvoid, got.InvestmentBadge)

	// Different key still misses.
	got, err = s.GetCachedAnalysis(ctx, "another key")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLiteCacheExpiry(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetCachedAnalysis(ctx, "expired", sampleAnalysis(), -time.Hour))
	require.NoError(t, s.SetCachedAnalysis(ctx, "fresh", sampleAnalysis(), time.Hour))

	got, err := s.GetCachedAnalysis(ctx, "expired")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entries behave as misses")

	stats, err := s.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 1, stats.Expired)

	pruned, err := s.PruneExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	stats, err = s.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
	assert.Zero(t, stats.Expired)
}

func TestSQLiteFavorites(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveFavorite(ctx, model.Favorite{
		Address:           "500 Oak Ave, Fort Worth, TX 76102",
		RentEstimate:      2000,
		InvestmentBadge:   model.BadgeFair,
		QuickScore:        55,
		EstimatedCashFlow: 120.50,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID, "store assigns an id")
	assert.False(t, saved.SavedAt.IsZero())

	favs, err := s.ListFavorites(ctx, 10)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, saved.ID, favs[0].ID)
	assert.Equal(t, saved.Address, favs[0].Address)
	assert.Equal(t, model.BadgeFair, favs[0].InvestmentBadge)
	assert.Equal(t, 55, favs[0].QuickScore)
	assert.InDelta(t, 120.50, favs[0].EstimatedCashFlow, 1e-9)

	require.NoError(t, s.DeleteFavorite(ctx, saved.ID))

	favs, err = s.ListFavorites(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestSQLiteDeleteFavoriteNotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.DeleteFavorite(context.Background(), "no-such-id")
	assert.Error(t, err)
}
