// Package catalog defines the typed entities shared by the fabricsync system:
// supply-catalog variants, target-catalog records, pricing history, and the
// per-group configuration that drives reconciliation. Loosely-typed rows from
// providers are parsed into these types at the boundary; nothing downstream
// ever sees a raw untyped map.
package catalog

import (
	"strings"
)

// GroupID identifies a product group (an inventory tab in the target catalog).
type GroupID string

// String returns the string representation of a group ID.
func (id GroupID) String() string {
	return string(id)
}

// PriceUnit is the pricing unit convention for a group's supply prices.
type PriceUnit string

const (
	// PriceUnitArea means supply prices are already per square metre.
	PriceUnitArea PriceUnit = "area"

	// PriceUnitLinear means supply prices are per linear metre and must be
	// converted to per-area using the variant width.
	PriceUnitLinear PriceUnit = "linear"
)

// ParsePriceUnit parses a price unit, defaulting to area for empty input.
func ParsePriceUnit(s string) (PriceUnit, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PriceUnitArea):
		return PriceUnitArea, true
	case string(PriceUnitLinear):
		return PriceUnitLinear, true
	default:
		return "", false
	}
}

// PricingMode describes how a group's variants are priced.
type PricingMode string

const (
	// PricingDerived means sell/cost figures are derived per variant from the
	// raw supply price using markup, wastage and unit conversion.
	PricingDerived PricingMode = "derived"

	// PricingGrid means variants are priced through a price grid; the supply
	// price field holds a price category resolved via the grid lookup.
	PricingGrid PricingMode = "grid"
)

// ParsePricingMode parses a pricing mode, defaulting to derived for empty input.
func ParsePricingMode(s string) (PricingMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(PricingDerived):
		return PricingDerived, true
	case string(PricingGrid):
		return PricingGrid, true
	default:
		return "", false
	}
}
