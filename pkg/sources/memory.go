package sources

import (
	"context"
	"slices"

	"github.com/shadeworks/fabricsync/pkg/catalog"
)

// Memory is an in-memory Provider backed by pre-built slices. It is used in
// tests and by callers that assemble catalogs from fixtures.
type Memory struct {
	Supply  []catalog.SupplyVariant
	Targets []catalog.TargetRecord
	Pricing []catalog.PricingRecord
}

// Fetch returns the supply rows matching the category filter.
func (m *Memory) Fetch(_ context.Context, categories []string) ([]catalog.SupplyVariant, error) {
	if len(categories) == 0 {
		return slices.Clone(m.Supply), nil
	}

	var out []catalog.SupplyVariant
	for _, v := range m.Supply {
		if slices.Contains(categories, v.Category) {
			out = append(out, v)
		}
	}
	return out, nil
}

// Load returns target records and pricing for the requested groups. Pricing is
// filtered to identifiers owned by the returned records.
func (m *Memory) Load(_ context.Context, groups []catalog.GroupID) ([]catalog.TargetRecord, []catalog.PricingRecord, error) {
	var records []catalog.TargetRecord
	owned := make(map[string]struct{})
	for _, rec := range m.Targets {
		if len(groups) == 0 || slices.Contains(groups, rec.GroupID) {
			records = append(records, rec)
			owned[rec.Identifier] = struct{}{}
		}
	}

	var pricing []catalog.PricingRecord
	for _, p := range m.Pricing {
		if _, ok := owned[p.Identifier]; ok {
			pricing = append(pricing, p)
		}
	}
	return records, pricing, nil
}
