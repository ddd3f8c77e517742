// Package rent reconciles disagreeing rent signals from multiple data
// sources into a single confidence-rated per-unit estimate.
package rent

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

// Disagreement bands between the primary estimate and the comparables
// median. Below the first band the primary value is trusted unchanged;
// inside each band the values are blended with the fixed weights.
const (
	agreementBand    = 0.10 // below: high confidence, primary wins
	disagreementBand = 0.20 // below: medium confidence, 60/40 blend
)

// minCompsForMedium is the comparable sample size required for comps alone
// to carry medium confidence.
const minCompsForMedium = 3

// Decision records how an estimate was reached, for structured event
// emission and tests.
type Decision struct {
	Rule         string  `json:"rule"`
	PrimaryValue float64 `json:"primary_value,omitempty"`
	CompsMedian  float64 `json:"comps_median,omitempty"`
	CompsSamples int     `json:"comps_samples,omitempty"`
	Disagreement float64 `json:"disagreement,omitempty"` // relative to primary
}

// Reconcile merges the available rent signals into one estimate. With both
// a primary signal and comparables it applies the disagreement bands; with
// one source it grades confidence by that source's strength; with none it
// falls back to the feature heuristic. Confidence is unknown only when no
// signal exists and the property has no price to anchor the heuristic.
func Reconcile(signals []model.RentSignal, prop model.NormalizedProperty) (model.RentEstimate, Decision) {
	primary, hasPrimary := primarySignal(signals)
	compsMedian, compsSamples := comparablesMedian(signals)
	hasComps := compsSamples >= 1 && compsMedian > 0

	var est model.RentEstimate
	var dec Decision

	switch {
	case hasPrimary && hasComps:
		disagreement := math.Abs(primary.Value-compsMedian) / primary.Value
		dec = Decision{
			PrimaryValue: primary.Value,
			CompsMedian:  compsMedian,
			CompsSamples: compsSamples,
			Disagreement: disagreement,
		}
		switch {
		case disagreement < agreementBand:
			dec.Rule = "primary-confirmed"
			est = model.RentEstimate{
				PerUnitRent: math.Round(primary.Value),
				Confidence:  model.ConfidenceHigh,
				Source:      model.RentSourcePrimary,
			}
		case disagreement < disagreementBand:
			dec.Rule = "primary-comps-blend"
			est = model.RentEstimate{
				PerUnitRent: math.Round(0.6*primary.Value + 0.4*compsMedian),
				Confidence:  model.ConfidenceMedium,
				Source:      model.RentSourceBlended,
			}
		default:
			dec.Rule = "primary-comps-split"
			est = model.RentEstimate{
				PerUnitRent: math.Round(0.5*primary.Value + 0.5*compsMedian),
				Confidence:  model.ConfidenceLow,
				Source:      model.RentSourceBlended,
			}
		}

	case hasPrimary:
		dec = Decision{Rule: "primary-only", PrimaryValue: primary.Value}
		est = model.RentEstimate{
			PerUnitRent: math.Round(primary.Value),
			Confidence:  model.ConfidenceMedium,
			Source:      model.RentSourcePrimary,
		}

	case hasComps:
		confidence := model.ConfidenceLow
		if compsSamples >= minCompsForMedium {
			confidence = model.ConfidenceMedium
		}
		dec = Decision{Rule: "comps-only", CompsMedian: compsMedian, CompsSamples: compsSamples}
		est = model.RentEstimate{
			PerUnitRent: math.Round(compsMedian),
			Confidence:  confidence,
			Source:      model.RentSourceComparables,
		}

	default:
		if heuristic := HeuristicEstimate(prop); heuristic > 0 {
			dec = Decision{Rule: "heuristic"}
			est = model.RentEstimate{
				PerUnitRent: heuristic,
				Confidence:  model.ConfidenceLow,
				Source:      model.RentSourceHeuristic,
			}
		} else {
			// No signals and no price to anchor the heuristic.
			dec = Decision{Rule: "none"}
			est = model.RentEstimate{Confidence: model.ConfidenceUnknown}
		}
	}

	zap.L().Debug("reconcile: rent estimate",
		zap.String("rule", dec.Rule),
		zap.Float64("per_unit_rent", est.PerUnitRent),
		zap.String("confidence", string(est.Confidence)),
		zap.String("source", string(est.Source)),
	)

	return est, dec
}

// primarySignal returns the first usable primary-source signal.
func primarySignal(signals []model.RentSignal) (model.RentSignal, bool) {
	for _, s := range signals {
		if s.Source == model.RentSourcePrimary && s.Value > 0 {
			return s, true
		}
	}
	return model.RentSignal{}, false
}

// comparablesMedian aggregates all comparables signals into their median
// value and combined sample size. A signal that already carries an
// aggregated median contributes its own sample size.
func comparablesMedian(signals []model.RentSignal) (float64, int) {
	var values []float64
	var samples int
	for _, s := range signals {
		if s.Source != model.RentSourceComparables || s.Value <= 0 || s.SampleSize < 1 {
			continue
		}
		values = append(values, s.Value)
		samples += s.SampleSize
	}
	if len(values) == 0 {
		return 0, 0
	}
	return median(values), samples
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
