package rent

import (
	"math"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

// Per-bedroom base rents for the feature heuristic. Counts outside the
// table fall back to beds x 600.
var bedroomBaseRent = map[int]float64{
	1: 1200,
	2: 1500,
	3: 1800,
	4: 2200,
	5: 2600,
}

const (
	bathBonus    = 125  // per bath beyond the first
	rentPerSqft  = 1.35 // monthly, blended 50/50 with the bedroom base
	clampFloor   = 0.005
	clampCeiling = 0.009
)

// HeuristicEstimate derives a per-unit monthly rent from property features
// alone. The result is clamped to [0.5%, 0.9%] of price per month so rent
// is never an unconstrained fraction of price. Returns 0 when price is
// unknown, since the clamp band is undefined without it.
func HeuristicEstimate(prop model.NormalizedProperty) float64 {
	if prop.Price <= 0 {
		return 0
	}

	beds := int(math.Round(prop.Beds))
	base, ok := bedroomBaseRent[beds]
	if !ok {
		base = float64(beds) * 600
	}
	if prop.Baths > 1 {
		base += (prop.Baths - 1) * bathBonus
	}

	estimate := base
	if prop.Sqft != nil && *prop.Sqft > 0 {
		estimate = 0.5*base + 0.5*(*prop.Sqft*rentPerSqft)
	}

	// Round before clamping so the clamp band stays exact; rounding after
	// could push the result past the ceiling by up to half a dollar.
	low := prop.Price * clampFloor
	high := prop.Price * clampCeiling
	return math.Min(math.Max(math.Round(estimate), low), high)
}
