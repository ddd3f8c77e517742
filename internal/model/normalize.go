package model

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fieldAliases maps each canonical field to the raw record keys that may
// carry it, in priority order. Upstream sources disagree on naming, so the
// mapping is kept as one table rather than inline fallback chains.
var fieldAliases = map[string][]string{
	"street":       {"street", "address", "streetAddress", "formattedAddress", "full_street_line", "addressLine1"},
	"city":         {"city"},
	"state":        {"state", "stateCode"},
	"zip":          {"zip", "zipCode", "zip_code", "postalCode"},
	"price":        {"price", "listPrice", "list_price", "askingPrice", "listingPrice"},
	"beds":         {"beds", "bedrooms", "bed", "br"},
	"baths":        {"baths", "bathrooms", "bath", "full_baths"},
	"sqft":         {"sqft", "squareFootage", "square_feet", "livingArea", "buildingSize"},
	"lotSqft":      {"lotSqft", "lotSize", "lot_sqft", "lotSizeSqft"},
	"unitCount":    {"unitCount", "units", "unit_count", "numberOfUnits"},
	"propertyType": {"propertyType", "property_type", "style", "homeType", "type"},
}

var titleCaser = cases.Title(language.AmericanEnglish)

// Normalize maps a raw record into the canonical NormalizedProperty.
// Missing or malformed numeric fields become zero (nil for Sqft/LotSqft)
// rather than errors; upstream records are known to be heterogeneous and
// the leniency is deliberate.
func Normalize(rec PropertyRecord) NormalizedProperty {
	p := NormalizedProperty{
		Address: Address{
			Street: titleCaser.String(firstString(rec, "street")),
			City:   titleCaser.String(firstString(rec, "city")),
			State:  strings.ToUpper(firstString(rec, "state")),
			Zip:    firstString(rec, "zip"),
		},
		Price:           numberOrZero(firstNumber(rec, "price")),
		Beds:            numberOrZero(firstNumber(rec, "beds")),
		Baths:           numberOrZero(firstNumber(rec, "baths")),
		Sqft:            firstNumber(rec, "sqft"),
		LotSqft:         firstNumber(rec, "lotSqft"),
		PropertyTypeRaw: firstString(rec, "propertyType"),
	}

	if n := firstNumber(rec, "unitCount"); n != nil && *n >= 1 {
		p.UnitCount = int(*n)
	}

	if photos, ok := rec["photos"].([]any); ok {
		for _, ph := range photos {
			if s, ok := ph.(string); ok && s != "" {
				p.Photos = append(p.Photos, s)
			}
		}
	} else if photos, ok := rec["photos"].([]string); ok {
		p.Photos = append(p.Photos, photos...)
	}

	return p
}

// CoerceNumber converts an arbitrary value to a non-negative float64, or nil
// when the value is absent, non-numeric, or negative. Strings may carry
// currency formatting ("$1,250").
func CoerceNumber(v any) *float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(n))
		if cleaned == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f < 0 {
		return nil
	}
	return &f
}

func firstNumber(rec PropertyRecord, field string) *float64 {
	for _, key := range fieldAliases[field] {
		if v, ok := rec[key]; ok {
			if n := CoerceNumber(v); n != nil {
				return n
			}
		}
	}
	return nil
}

func firstString(rec PropertyRecord, field string) string {
	for _, key := range fieldAliases[field] {
		if v, ok := rec[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func numberOrZero(n *float64) float64 {
	if n == nil {
		return 0
	}
	return *n
}
