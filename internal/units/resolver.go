// Package units determines how many rentable units a parcel represents.
// All rent figures for multi-unit parcels are per unit, so an accurate
// count is required before total rent can be computed.
package units

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/rentfolio/analyzer-cli/internal/model"
)

// plexTypes maps literal multi-unit type names to their unit counts.
var plexTypes = map[string]int{
	"duplex":   2,
	"triplex":  3,
	"quadplex": 4,
	"fourplex": 4,
}

// multiUnitHints are type-string fragments that indicate a general
// multi-unit category without a specific count.
var multiUnitHints = []string{"apartment", "multi"}

// Resolve returns the rentable unit count for a property, always at least 1.
// An authoritative count from the feature-record provider wins over the
// record's own unit field, which wins over inference from the type string.
func Resolve(prop model.NormalizedProperty, authoritative *int) int {
	if authoritative != nil && *authoritative >= 1 {
		return *authoritative
	}
	if prop.UnitCount >= 1 {
		return prop.UnitCount
	}

	typ := strings.ToLower(prop.PropertyTypeRaw)
	for name, count := range plexTypes {
		if strings.Contains(typ, name) {
			return count
		}
	}

	for _, hint := range multiUnitHints {
		if strings.Contains(typ, hint) {
			estimated := int(math.Round(prop.Beds / 2))
			if estimated < 2 {
				estimated = 2
			}
			zap.L().Debug("units: estimated count from bedrooms",
				zap.String("property_type", prop.PropertyTypeRaw),
				zap.Float64("beds", prop.Beds),
				zap.Int("units", estimated),
			)
			return estimated
		}
	}

	return 1
}
