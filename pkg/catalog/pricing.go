package catalog

import (
	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"
)

// PricingRecord is one sell/cost figure for an identifier, effective from
// DateEffective. Multiple records may exist per identifier over time; the
// current one is the latest by effective date.
type PricingRecord struct {
	Identifier    string          `json:"identifier" yaml:"identifier"`
	DateEffective utc.Time        `json:"date_effective" yaml:"date_effective"`
	SellAmount    decimal.Decimal `json:"sell_amount" yaml:"sell_amount"` // 2dp
	CostAmount    decimal.Decimal `json:"cost_amount" yaml:"cost_amount"` // 2dp
}

// Markup returns the derived markup (sell divided by cost) and whether it is
// defined. The markup is undefined when cost is not positive.
func (p PricingRecord) Markup() (decimal.Decimal, bool) {
	if !p.CostAmount.IsPositive() {
		return decimal.Decimal{}, false
	}
	return p.SellAmount.Div(p.CostAmount), true
}

// PricingIndex maps an identifier to its current pricing record.
type PricingIndex map[string]PricingRecord

// IndexPricing reduces a pricing history to the current record per identifier
// (latest by effective date; later records in the input win ties, matching a
// stable date-sorted load order).
func IndexPricing(records []PricingRecord) PricingIndex {
	index := make(PricingIndex, len(records))
	for _, rec := range records {
		current, ok := index[rec.Identifier]
		if !ok || !rec.DateEffective.Before(current.DateEffective) {
			index[rec.Identifier] = rec
		}
	}
	return index
}
