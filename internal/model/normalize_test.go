package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	rec := PropertyRecord{
		"street":        "123 main st",
		"city":          "fort worth",
		"state":         "tx",
		"zip":           "76102",
		"listPrice":     "$329,000",
		"bedrooms":      3,
		"baths":         2.5,
		"squareFootage": 1850.0,
		"property_type": "Duplex",
		"units":         2,
		"photos":        []any{"https://img.example/1.jpg", ""},
	}

	p := Normalize(rec)

	assert.Equal(t, "123 Main St", p.Address.Street)
	assert.Equal(t, "Fort Worth", p.Address.City)
	assert.Equal(t, "TX", p.Address.State)
	assert.Equal(t, "76102", p.Address.Zip)

	assert.Equal(t, 329000.0, p.Price)
	assert.Equal(t, 3.0, p.Beds)
	assert.Equal(t, 2.5, p.Baths)
	require.NotNil(t, p.Sqft)
	assert.Equal(t, 1850.0, *p.Sqft)
	assert.Nil(t, p.LotSqft)

	assert.Equal(t, 2, p.UnitCount)
	assert.Equal(t, "Duplex", p.PropertyTypeRaw)
	assert.Equal(t, []string{"https://img.example/1.jpg"}, p.Photos)
}

func TestNormalizeAliasPriority(t *testing.T) {
	t.Parallel()

	// "price" outranks "listPrice" when both are present.
	p := Normalize(PropertyRecord{"price": 250000, "listPrice": 999999})
	assert.Equal(t, 250000.0, p.Price)

	// A malformed higher-priority alias falls through to the next one.
	p = Normalize(PropertyRecord{"price": "n/a", "listPrice": 250000})
	assert.Equal(t, 250000.0, p.Price)
}

func TestNormalizeEmptyRecord(t *testing.T) {
	t.Parallel()

	p := Normalize(PropertyRecord{})
	assert.Zero(t, p.Price)
	assert.Zero(t, p.Beds)
	assert.Nil(t, p.Sqft)
	assert.Zero(t, p.UnitCount)
	assert.Empty(t, p.Address.String())
}

func TestCoerceNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"float64", 1250.5, ptr(1250.5)},
		{"int", 42, ptr(42.0)},
		{"int64", int64(7), ptr(7.0)},
		{"float32", float32(2), ptr(2.0)},
		{"plain string", "1850", ptr(1850.0)},
		{"currency string", "$1,250", ptr(1250.0)},
		{"padded string", "  900 ", ptr(900.0)},
		{"empty string", "", nil},
		{"word string", "three", nil},
		{"negative", -5.0, nil},
		{"nil", nil, nil},
		{"bool", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoerceNumber(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestAddressString(t *testing.T) {
	t.Parallel()

	full := Address{Street: "123 Main St", City: "Fort Worth", State: "TX", Zip: "76102"}
	assert.Equal(t, "123 Main St, Fort Worth, TX 76102", full.String())

	partial := Address{Street: "123 Main St", State: "TX"}
	assert.Equal(t, "123 Main St, TX", partial.String())
}

func TestCacheKeyStability(t *testing.T) {
	t.Parallel()

	a := Normalize(PropertyRecord{"street": "123 Main St", "city": "Fort Worth", "state": "TX", "zip": "76102"})
	b := Normalize(PropertyRecord{"street": "  123 MAIN st ", "city": "fort worth", "state": "tx", "zip": "76102"})

	assert.Equal(t, a.CacheKey(), b.CacheKey())
	assert.NotEmpty(t, a.CacheKey())
}

func ptr(v float64) *float64 { return &v }
