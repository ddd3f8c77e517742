package model

// RentSource identifies where a rent signal or estimate came from.
type RentSource string

const (
	RentSourcePrimary     RentSource = "primary"
	RentSourceComparables RentSource = "comparables"
	RentSourceHeuristic   RentSource = "heuristic"
	RentSourceBlended     RentSource = "blended"
)

// Confidence grades how much trust to place in a rent estimate.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// RentSignal is one candidate per-unit rent estimate from a single source.
type RentSignal struct {
	Value      float64    `json:"value"`
	Source     RentSource `json:"source"`
	SampleSize int        `json:"sample_size"`
}

// RentEstimate is the reconciled per-unit rent. PerUnitRent is positive
// whenever Confidence is not unknown.
type RentEstimate struct {
	PerUnitRent float64    `json:"per_unit_rent"`
	Confidence  Confidence `json:"confidence"`
	Source      RentSource `json:"source"`
}

// Known reports whether the estimate carries a usable rent number.
func (e RentEstimate) Known() bool {
	return e.Confidence != ConfidenceUnknown && e.PerUnitRent > 0
}
