package analyzer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfolio/analyzer-cli/internal/config"
	"github.com/rentfolio/analyzer-cli/internal/finance"
	"github.com/rentfolio/analyzer-cli/internal/model"
	"github.com/rentfolio/analyzer-cli/internal/store"
	"github.com/rentfolio/analyzer-cli/pkg/homeharvest"
	"github.com/rentfolio/analyzer-cli/pkg/parcelrec"
	"github.com/rentfolio/analyzer-cli/pkg/rentcast"
)

type fakeRentCast struct {
	estimate *rentcast.Estimate
	err      error
}

func (f *fakeRentCast) RentEstimate(ctx context.Context, req rentcast.EstimateRequest) (*rentcast.Estimate, error) {
	return f.estimate, f.err
}

type fakeHomeHarvest struct {
	listings []homeharvest.Listing
	err      error
}

func (f *fakeHomeHarvest) Property(ctx context.Context, address string) (*homeharvest.Property, error) {
	return nil, errors.New("not used")
}

func (f *fakeHomeHarvest) Search(ctx context.Context, q homeharvest.SearchQuery) ([]homeharvest.Listing, error) {
	return f.listings, f.err
}

type fakeParcelRec struct {
	record *parcelrec.Record
	err    error
}

func (f *fakeParcelRec) Record(ctx context.Context, address string) (*parcelrec.Record, error) {
	return f.record, f.err
}

// memStore is an in-memory Store for tests. TTLs are not enforced.
type memStore struct {
	mu     sync.Mutex
	cache  map[string]*model.EnrichedAnalysis
	favs   []model.Favorite
	setErr error
}

func newMemStore() *memStore {
	return &memStore{cache: map[string]*model.EnrichedAnalysis{}}
}

func (m *memStore) GetCachedAnalysis(ctx context.Context, key string) (*model.EnrichedAnalysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache[key], nil
}

func (m *memStore) SetCachedAnalysis(ctx context.Context, key string, a *model.EnrichedAnalysis, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.cache[key] = a
	return nil
}

func (m *memStore) PruneExpired(ctx context.Context) (int, error) { return 0, nil }

func (m *memStore) CacheStats(ctx context.Context) (*store.CacheStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &store.CacheStats{Entries: len(m.cache)}, nil
}

func (m *memStore) SaveFavorite(ctx context.Context, fav model.Favorite) (*model.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favs = append(m.favs, fav)
	return &fav, nil
}

func (m *memStore) ListFavorites(ctx context.Context, limit int) ([]model.Favorite, error) {
	return m.favs, nil
}

func (m *memStore) DeleteFavorite(ctx context.Context, id string) error { return nil }
func (m *memStore) Migrate(ctx context.Context) error                   { return nil }
func (m *memStore) Close() error                                        { return nil }

func testConfig() *config.Config {
	return &config.Config{}
}

func testRecord() model.PropertyRecord {
	return model.PropertyRecord{
		"street": "500 Oak Ave",
		"city":   "Fort Worth",
		"state":  "TX",
		"zip":    "76102",
		"price":  300000,
		"beds":   3,
		"baths":  2,
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	t.Parallel()

	a := New(testConfig(), newMemStore(),
		&fakeRentCast{estimate: &rentcast.Estimate{Rent: 2000}},
		&fakeHomeHarvest{listings: []homeharvest.Listing{
			{ListPrice: 1900}, {ListPrice: 2000}, {ListPrice: 2100},
		}},
		nil,
	)

	res, err := a.Analyze(context.Background(), testRecord())
	require.NoError(t, err)
	require.NotNil(t, res.Analysis)
	assert.False(t, res.FromCache)

	got := res.Analysis

	// Primary 2000 vs comps median 2000 agree: high confidence, primary wins.
	assert.Equal(t, 2000.0, got.RentEstimate)
	assert.Equal(t, model.ConfidenceHigh, got.RentConfidence)
	assert.Equal(t, model.RentSourcePrimary, got.RentSource)
	assert.Equal(t, 1, got.UnitCount)
	assert.False(t, got.IsMultiFamily)

	require.NotNil(t, got.Metrics)
	assert.InDelta(t, 4.1, got.Metrics.CapRate, 1e-6)
	assert.InDelta(t, -571.73, got.Metrics.MonthlyCashFlow, 0.01)
	assert.InDelta(t, 69000, got.Metrics.TotalInvestment, 1e-9)

	assert.Equal(t, 15, got.InvestmentScore)
	assert.Equal(t, model.BadgeAvoid, got.InvestmentBadge)
	require.NotNil(t, got.CashFlow)
	assert.InDelta(t, got.Metrics.MonthlyCashFlow, *got.CashFlow, 1e-9)
	require.NotNil(t, got.ROI)
}

func TestAnalyzeDeterministic(t *testing.T) {
	t.Parallel()

	build := func() *Analyzer {
		return New(testConfig(), nil,
			&fakeRentCast{estimate: &rentcast.Estimate{Rent: 2000}},
			&fakeHomeHarvest{listings: []homeharvest.Listing{{ListPrice: 2300}, {ListPrice: 2300}, {ListPrice: 2300}}},
			nil,
		)
	}

	first, err := build().Analyze(context.Background(), testRecord())
	require.NoError(t, err)
	second, err := build().Analyze(context.Background(), testRecord())
	require.NoError(t, err)

	assert.Equal(t, first.Analysis, second.Analysis)

	// Moderate disagreement: 60/40 blend of 2000 and 2300.
	assert.Equal(t, 2120.0, first.Analysis.RentEstimate)
	assert.Equal(t, model.ConfidenceMedium, first.Analysis.RentConfidence)
	assert.Equal(t, model.RentSourceBlended, first.Analysis.RentSource)
}

func TestAnalyzeCacheRoundTrip(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	a := New(testConfig(), st, &fakeRentCast{estimate: &rentcast.Estimate{Rent: 2000}}, nil, nil)

	first, err := a.Analyze(context.Background(), testRecord())
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := a.Analyze(context.Background(), testRecord())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Analysis, second.Analysis)

	hasCacheHit := false
	for _, ev := range second.Events {
		if ev.Type == EventCacheHit {
			hasCacheHit = true
		}
	}
	assert.True(t, hasCacheHit)
}

func TestAnalyzeDegradesOnLookupFailure(t *testing.T) {
	t.Parallel()

	a := New(testConfig(), nil,
		&fakeRentCast{err: errors.New("rentcast down")},
		&fakeHomeHarvest{err: errors.New("homeharvest down")},
		&fakeParcelRec{err: errors.New("parcelrec down")},
	)

	res, err := a.Analyze(context.Background(), testRecord())
	require.NoError(t, err)

	// All lookups failed, so rent falls back to the feature heuristic.
	got := res.Analysis
	assert.Equal(t, model.RentSourceHeuristic, got.RentSource)
	assert.Equal(t, model.ConfidenceLow, got.RentConfidence)
	assert.Greater(t, got.RentEstimate, 0.0)
	require.NotNil(t, got.Metrics)

	failures := 0
	for _, ev := range res.Events {
		if ev.Type == EventLookupFailed {
			failures++
		}
	}
	assert.Equal(t, 3, failures)
}

func TestAnalyzeInsufficientData(t *testing.T) {
	t.Parallel()

	a := New(testConfig(), nil, nil, nil, nil)

	res, err := a.Analyze(context.Background(), model.PropertyRecord{"street": "1 Nowhere Ln"})
	require.NoError(t, err)

	got := res.Analysis
	assert.Nil(t, got.Metrics)
	assert.Nil(t, got.CashFlow)
	assert.Nil(t, got.ROI)
	assert.Zero(t, got.InvestmentScore)
	assert.Equal(t, model.BadgeInsufficientData, got.InvestmentBadge)
	assert.NotEmpty(t, got.BadgeDescription)
}

func TestAnalyzeMultiFamilyTotalRent(t *testing.T) {
	t.Parallel()

	units := 4
	a := New(testConfig(), nil,
		&fakeRentCast{estimate: &rentcast.Estimate{Rent: 1100}},
		nil,
		&fakeParcelRec{record: &parcelrec.Record{Units: &units}},
	)

	record := testRecord()
	record["property_type"] = "Fourplex"

	res, err := a.Analyze(context.Background(), record)
	require.NoError(t, err)

	got := res.Analysis
	assert.Equal(t, 4, got.UnitCount)
	assert.True(t, got.IsMultiFamily)
	assert.Equal(t, 1100.0, got.RentEstimate)
	assert.Equal(t, 4400.0, got.TotalMonthlyRent)
	require.NotNil(t, got.Features)
	require.NotNil(t, got.Features.Units)
	assert.Equal(t, 4, *got.Features.Units)
}

func TestAnalyzeCancelledContext(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	a := New(testConfig(), st, &fakeRentCast{estimate: &rentcast.Estimate{Rent: 2000}}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := a.Analyze(ctx, testRecord())
	assert.Error(t, err)
	assert.Nil(t, res)
	assert.Empty(t, st.cache, "cancelled analyses are not cached")
}

func TestAnalyzeCacheWriteFailure(t *testing.T) {
	t.Parallel()

	st := newMemStore()
	st.setErr = errors.New("disk full")
	a := New(testConfig(), st, &fakeRentCast{estimate: &rentcast.Estimate{Rent: 2000}}, nil, nil)

	res, err := a.Analyze(context.Background(), testRecord())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "cache write")
}

func TestAnalyzeWithOverriddenAssumptions(t *testing.T) {
	t.Parallel()

	a := New(testConfig(), nil, &fakeRentCast{estimate: &rentcast.Estimate{Rent: 2000}}, nil, nil)

	as := finance.DefaultAssumptions()
	as.DownPaymentFraction = 1.0 // all cash
	a.SetAssumptions(as)
	assert.Equal(t, as, a.Assumptions())

	res, err := a.Analyze(context.Background(), testRecord())
	require.NoError(t, err)

	got := res.Analysis
	require.NotNil(t, got.Metrics)
	assert.Zero(t, got.Expenses.Mortgage)
	assert.Zero(t, got.Metrics.DSCR)
	assert.InDelta(t, 309000, got.Metrics.TotalInvestment, 1e-9)
}

func TestGatherSignalsEvents(t *testing.T) {
	t.Parallel()

	a := New(testConfig(), nil,
		&fakeRentCast{estimate: &rentcast.Estimate{Rent: 1500}},
		&fakeHomeHarvest{listings: []homeharvest.Listing{{ListPrice: 1450}}},
		nil,
	)

	events := &Recorder{}
	signals, features := a.gatherSignals(context.Background(), model.Normalize(testRecord()), events)

	assert.Len(t, signals, 2)
	assert.Nil(t, features)
	assert.True(t, events.Has(EventLookupAttempted, "rentcast"))
	assert.True(t, events.Has(EventLookupSucceeded, "rentcast"))
	assert.True(t, events.Has(EventLookupAttempted, "homeharvest"))
	assert.False(t, events.Has(EventLookupAttempted, "parcelrec"))
}
