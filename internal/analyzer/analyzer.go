// Package analyzer orchestrates a full property analysis: normalization,
// external rent-signal lookups, reconciliation, financial metrics, and
// scoring.
package analyzer

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rentfolio/analyzer-cli/internal/config"
	"github.com/rentfolio/analyzer-cli/internal/finance"
	"github.com/rentfolio/analyzer-cli/internal/model"
	"github.com/rentfolio/analyzer-cli/internal/rent"
	"github.com/rentfolio/analyzer-cli/internal/score"
	"github.com/rentfolio/analyzer-cli/internal/store"
	"github.com/rentfolio/analyzer-cli/internal/units"
	"github.com/rentfolio/analyzer-cli/pkg/homeharvest"
	"github.com/rentfolio/analyzer-cli/pkg/parcelrec"
	"github.com/rentfolio/analyzer-cli/pkg/rentcast"
)

// Result bundles an analysis with its observability trail.
type Result struct {
	Analysis  *model.EnrichedAnalysis `json:"analysis"`
	Events    []Event                 `json:"events,omitempty"`
	FromCache bool                    `json:"fromCache"`
}

// Analyzer runs the analysis pipeline. Any of the three clients may be nil;
// the corresponding rent signal is simply never gathered.
type Analyzer struct {
	cfg         *config.Config
	store       store.Store
	rentcast    rentcast.Client
	homeharvest homeharvest.Client
	parcelrec   parcelrec.Client
	assumptions finance.Assumptions
}

// New creates an Analyzer with all dependencies.
func New(cfg *config.Config, st store.Store, rc rentcast.Client, hh homeharvest.Client, pr parcelrec.Client) *Analyzer {
	return &Analyzer{
		cfg:         cfg,
		store:       st,
		rentcast:    rc,
		homeharvest: hh,
		parcelrec:   pr,
		assumptions: assumptionsFromConfig(cfg.Assumptions),
	}
}

// Assumptions returns the underwriting assumptions in effect.
func (a *Analyzer) Assumptions() finance.Assumptions {
	return a.assumptions
}

// SetAssumptions replaces the underwriting assumptions, overriding the
// config-derived set. Used when the caller loads an assumptions file.
func (a *Analyzer) SetAssumptions(as finance.Assumptions) {
	a.assumptions = as
}

// Analyze produces the enriched analysis for one raw property record.
// External lookup failures degrade the result rather than failing it; the
// worst case is a fully populated insufficient-data analysis. Errors are
// reserved for context cancellation and store write failures, both of
// which the caller may retry.
func (a *Analyzer) Analyze(ctx context.Context, record model.PropertyRecord) (*Result, error) {
	prop := model.Normalize(record)
	events := &Recorder{}
	log := zap.L().With(zap.String("address", prop.Address.String()))

	// Cache short-circuit, keyed by normalized address.
	key := prop.CacheKey()
	if a.store != nil && key != "" {
		cached, err := a.store.GetCachedAnalysis(ctx, key)
		if err != nil {
			log.Warn("analyzer: cache read failed", zap.Error(err))
		}
		if cached != nil {
			events.Record(Event{Type: EventCacheHit, Fields: map[string]any{"key": key}})
			return &Result{Analysis: cached, Events: events.Events(), FromCache: true}, nil
		}
		events.Record(Event{Type: EventCacheMiss, Fields: map[string]any{"key": key}})
	}

	signals, features := a.gatherSignals(ctx, prop, events)

	// A cancelled analysis must not be scored or cached; the signal set is
	// whatever happened to finish before cancellation.
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "analyzer: analysis cancelled")
	}

	var authoritativeUnits *int
	if features != nil {
		authoritativeUnits = features.Units
	}
	unitCount := units.Resolve(prop, authoritativeUnits)
	prop.UnitCount = unitCount

	estimate, decision := rent.Reconcile(signals, prop)
	events.Record(Event{Type: EventReconciled, Fields: map[string]any{
		"rule":          decision.Rule,
		"per_unit_rent": estimate.PerUnitRent,
		"confidence":    string(estimate.Confidence),
	}})

	totalRent := estimate.PerUnitRent * float64(unitCount)

	analysis := &model.EnrichedAnalysis{
		Property:         prop,
		RentEstimate:     estimate.PerUnitRent,
		TotalMonthlyRent: totalRent,
		RentConfidence:   estimate.Confidence,
		RentSource:       estimate.Source,
		UnitCount:        unitCount,
		IsMultiFamily:    unitCount > 1,
		Features:         features,
	}

	// Metrics require both price and rent; otherwise the score engine
	// reports insufficient data.
	var metrics *model.FinancialMetrics
	if prop.Price > 0 && estimate.Known() {
		expenses := finance.EstimateExpenses(prop.Price, totalRent, a.assumptions)
		m, err := finance.ComputeMetrics(prop.Price, totalRent, expenses, a.assumptions)
		if err != nil {
			log.Warn("analyzer: metrics computation failed", zap.Error(err))
		} else {
			metrics = m
			analysis.Expenses = &expenses
		}
	}

	result := score.Score(metrics)
	analysis.InvestmentScore = result.Score
	analysis.InvestmentBadge = result.Badge
	analysis.BadgeDescription = result.BadgeDescription
	analysis.Metrics = metrics
	if metrics != nil {
		cashFlow := metrics.MonthlyCashFlow
		roi := metrics.CashOnCashReturn
		analysis.CashFlow = &cashFlow
		analysis.ROI = &roi
	}

	if a.store != nil && key != "" {
		ttl := time.Duration(a.cfg.Lookup.CacheTTLHours) * time.Hour
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		if err := a.store.SetCachedAnalysis(ctx, key, analysis, ttl); err != nil {
			return nil, eris.Wrap(err, "analyzer: cache write")
		}
	}

	log.Info("analyzer: analysis complete",
		zap.Int("score", analysis.InvestmentScore),
		zap.String("badge", string(analysis.InvestmentBadge)),
		zap.Float64("rent_estimate", analysis.RentEstimate),
		zap.Int("unit_count", unitCount),
	)

	return &Result{Analysis: analysis, Events: events.Events()}, nil
}

// gatherSignals queries the external sources concurrently, one in-flight
// request per source, each with its own timeout. Failures drop the signal.
func (a *Analyzer) gatherSignals(ctx context.Context, prop model.NormalizedProperty, rec *Recorder) ([]model.RentSignal, *model.FeatureRecord) {
	timeout := time.Duration(a.cfg.Lookup.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	address := prop.Address.String()

	var (
		primarySignal *model.RentSignal
		compsSignal   *model.RentSignal
		features      *model.FeatureRecord
	)

	g, gctx := errgroup.WithContext(ctx)

	if a.rentcast != nil && address != "" {
		g.Go(func() error {
			rec.Record(Event{Type: EventLookupAttempted, Source: "rentcast"})
			callCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			est, err := a.rentcast.RentEstimate(callCtx, rentcast.EstimateRequest{
				Address:      address,
				Beds:         prop.Beds,
				Baths:        prop.Baths,
				Sqft:         prop.Sqft,
				PropertyType: prop.PropertyTypeRaw,
			})
			if err != nil {
				rec.Record(Event{Type: EventLookupFailed, Source: "rentcast", Fields: map[string]any{"error": err.Error()}})
				return nil
			}
			if est != nil && est.Rent > 0 {
				primarySignal = &model.RentSignal{Value: est.Rent, Source: model.RentSourcePrimary, SampleSize: 1}
				rec.Record(Event{Type: EventLookupSucceeded, Source: "rentcast", Fields: map[string]any{"rent": est.Rent}})
			}
			return nil
		})
	}

	if a.homeharvest != nil && address != "" {
		g.Go(func() error {
			rec.Record(Event{Type: EventLookupAttempted, Source: "homeharvest"})
			callCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			query := homeharvest.SearchQuery{
				Location:    compsLocation(prop),
				ListingType: homeharvest.ListingForRent,
				Limit:       25,
			}
			if beds := int(prop.Beds); beds > 0 {
				query.BedsMin = beds - 1
				query.BedsMax = beds + 1
			}

			listings, err := a.homeharvest.Search(callCtx, query)
			if err != nil {
				rec.Record(Event{Type: EventLookupFailed, Source: "homeharvest", Fields: map[string]any{"error": err.Error()}})
				return nil
			}

			rents := compRents(listings)
			if len(rents) > 0 {
				compsSignal = &model.RentSignal{
					Value:      medianOf(rents),
					Source:     model.RentSourceComparables,
					SampleSize: len(rents),
				}
				rec.Record(Event{Type: EventLookupSucceeded, Source: "homeharvest", Fields: map[string]any{"comps": len(rents)}})
			}
			return nil
		})
	}

	if a.parcelrec != nil && address != "" {
		g.Go(func() error {
			rec.Record(Event{Type: EventLookupAttempted, Source: "parcelrec"})
			callCtx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()

			record, err := a.parcelrec.Record(callCtx, address)
			if err != nil {
				rec.Record(Event{Type: EventLookupFailed, Source: "parcelrec", Fields: map[string]any{"error": err.Error()}})
				return nil
			}
			if record != nil {
				features = featureRecord(record)
				rec.Record(Event{Type: EventLookupSucceeded, Source: "parcelrec"})
			}
			return nil
		})
	}

	// Lookups never return errors; Wait only observes context cancellation.
	_ = g.Wait()

	var signals []model.RentSignal
	if primarySignal != nil {
		signals = append(signals, *primarySignal)
	}
	if compsSignal != nil {
		signals = append(signals, *compsSignal)
	}
	return signals, features
}

// compsLocation prefers city/state/zip so the rental search covers the
// neighborhood rather than the single parcel.
func compsLocation(prop model.NormalizedProperty) string {
	if prop.Address.City != "" && prop.Address.State != "" {
		loc := prop.Address.City + ", " + prop.Address.State
		if prop.Address.Zip != "" {
			loc += " " + prop.Address.Zip
		}
		return loc
	}
	return prop.Address.String()
}

func compRents(listings []homeharvest.Listing) []float64 {
	var rents []float64
	for _, l := range listings {
		if l.ListPrice > 0 {
			rents = append(rents, l.ListPrice)
		}
	}
	return rents
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func featureRecord(rec *parcelrec.Record) *model.FeatureRecord {
	fr := &model.FeatureRecord{
		Units:     rec.Units,
		YearBuilt: rec.YearBuilt,
	}
	for _, ta := range rec.TaxAssessments {
		fr.TaxAssessments = append(fr.TaxAssessments, model.TaxAssessment{Year: ta.Year, Value: ta.Value})
	}
	return fr
}

func assumptionsFromConfig(c config.AssumptionsConfig) finance.Assumptions {
	a := finance.DefaultAssumptions()
	if c.DownPaymentFraction > 0 {
		a.DownPaymentFraction = c.DownPaymentFraction
	}
	if c.AnnualInterestRate > 0 {
		a.AnnualInterestRate = c.AnnualInterestRate
	}
	if c.TermYears > 0 {
		a.TermYears = c.TermYears
	}
	if c.ClosingCostFraction > 0 {
		a.ClosingCostFraction = c.ClosingCostFraction
	}
	if c.PropertyTaxRate > 0 {
		a.PropertyTaxRate = c.PropertyTaxRate
	}
	if c.InsuranceRate > 0 {
		a.InsuranceRate = c.InsuranceRate
	}
	if c.MaintenanceRate > 0 {
		a.MaintenanceRate = c.MaintenanceRate
	}
	if c.VacancyRate > 0 {
		a.VacancyRate = c.VacancyRate
	}
	if c.ManagementRate > 0 {
		a.ManagementRate = c.ManagementRate
	}
	if c.MonthlyHOA > 0 {
		a.MonthlyHOA = c.MonthlyHOA
	}
	return a
}
