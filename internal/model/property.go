// Package model defines the shared domain types for property analysis.
package model

import (
	"fmt"
	"strings"
)

// PropertyRecord is a raw property record as returned by an upstream listing
// source. Field names and value types vary by source, so the record is kept
// loosely typed and mapped into a NormalizedProperty before analysis.
type PropertyRecord map[string]any

// Address holds the parts of a property address.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// String renders the address in single-line mail format.
func (a Address) String() string {
	var parts []string
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	if a.City != "" {
		parts = append(parts, a.City)
	}
	tail := strings.TrimSpace(a.State + " " + a.Zip)
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

// NormalizedProperty is the canonical property shape consumed by the
// analysis pipeline. Absent or malformed numeric fields normalize to zero
// (or nil for Sqft); UnitCount is zero until the unit resolver runs.
type NormalizedProperty struct {
	Address         Address  `json:"address"`
	Price           float64  `json:"price"`
	Beds            float64  `json:"beds"`
	Baths           float64  `json:"baths"`
	Sqft            *float64 `json:"sqft,omitempty"`
	LotSqft         *float64 `json:"lotSqft,omitempty"`
	UnitCount       int      `json:"unitCount"`
	PropertyTypeRaw string   `json:"propertyTypeRaw"`
	Photos          []string `json:"photos,omitempty"`
}

// CacheKey returns the normalized address string used to key cached
// analyses. It is stable across cosmetic differences in the raw record.
func (p NormalizedProperty) CacheKey() string {
	return strings.ToLower(strings.Join(strings.Fields(fmt.Sprintf("%s %s %s %s",
		p.Address.Street, p.Address.City, p.Address.State, p.Address.Zip)), " "))
}
