// Package pricing derives stored sell/cost figures for variants: it resolves
// the effective markup for a group and converts raw supply prices using unit
// conversion, wastage and markup.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/shadeworks/fabricsync/pkg/catalog"
)

// MarkupSource records where a group's effective markup came from.
type MarkupSource string

const (
	// MarkupOverride means the group config pinned the markup explicitly.
	MarkupOverride MarkupSource = "override"

	// MarkupCalculated means the markup is the average of the group's
	// historical per-item markups.
	MarkupCalculated MarkupSource = "calculated"

	// MarkupDefault means neither an override nor history was available.
	MarkupDefault MarkupSource = "default"
)

// DefaultMarkup is the fallback multiplier when a group has no override and
// no usable pricing history.
var DefaultMarkup = decimal.NewFromInt(2)

// MarkupDecision is the resolved markup for a group, with enough context to
// explain the choice in run reporting.
type MarkupDecision struct {
	Markup        decimal.Decimal  `json:"markup"`
	Source        MarkupSource     `json:"source"`
	HistoricalAvg *decimal.Decimal `json:"historical_avg,omitempty"` // Average of per-item markups, when any existed
}

// ResolveMarkup computes the effective markup for a group. Every active target
// record with a current pricing record and positive cost contributes its
// sell/cost ratio; the average of those ratios is the group's historical
// markup. New variants inherit the group's pricing posture this way instead of
// requiring an explicit markup per item.
//
// Precedence: config override, then historical average, then fallback.
func ResolveMarkup(cfg catalog.GroupConfig, records []catalog.TargetRecord, prices catalog.PricingIndex, fallback decimal.Decimal) MarkupDecision {
	var avg *decimal.Decimal
	var sum decimal.Decimal
	count := 0

	for _, rec := range records {
		if !rec.Active {
			continue
		}
		current, ok := prices[rec.Identifier]
		if !ok {
			continue
		}
		markup, ok := current.Markup()
		if !ok || !markup.IsPositive() {
			continue
		}
		sum = sum.Add(markup)
		count++
	}

	if count > 0 {
		a := sum.Div(decimal.NewFromInt(int64(count)))
		avg = &a
	}

	switch {
	case cfg.MarkupOverride != nil:
		return MarkupDecision{Markup: *cfg.MarkupOverride, Source: MarkupOverride, HistoricalAvg: avg}
	case avg != nil:
		return MarkupDecision{Markup: *avg, Source: MarkupCalculated, HistoricalAvg: avg}
	default:
		return MarkupDecision{Markup: fallback, Source: MarkupDefault}
	}
}
