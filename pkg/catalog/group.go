package catalog

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shadeworks/fabricsync/pkg/errors"
)

// GroupConfig is the per-group configuration resolved once before a run
// begins. It is immutable during the run.
type GroupConfig struct {
	ID                GroupID          `json:"id" yaml:"id"`
	DescriptionPrefix string           `json:"description_prefix" yaml:"description_prefix"`
	Category          string           `json:"category" yaml:"category"` // Supply-catalog category feeding this group
	PricingMode       PricingMode      `json:"pricing_mode" yaml:"pricing_mode"`
	PriceUnit         PriceUnit        `json:"price_unit" yaml:"price_unit"`
	PriceGridRef      string           `json:"price_grid_ref,omitempty" yaml:"price_grid_ref,omitempty"`
	CostGridRef       string           `json:"cost_grid_ref,omitempty" yaml:"cost_grid_ref,omitempty"`
	DiscountRef       string           `json:"discount_ref" yaml:"discount_ref"`
	MarkupOverride    *decimal.Decimal `json:"markup_override,omitempty" yaml:"markup_override,omitempty"`
	WastagePct        *decimal.Decimal `json:"wastage_pct,omitempty" yaml:"wastage_pct,omitempty"` // Fraction in [0,1)
	TitleCaseDesc     bool             `json:"title_case_description,omitempty" yaml:"title_case_description,omitempty"`
}

// Priced reports whether variants in this group get per-variant derived pricing.
func (c GroupConfig) Priced() bool {
	return c.PricingMode == PricingDerived
}

// GridKey addresses one entry of the price-grid lookup.
type GridKey struct {
	Group    GroupID
	Category string // Price category from the supply row, e.g. "89-1"
}

// GridLookup maps (group, price category) to a price-grid code. The cost grid
// for an entry is the grid code with a "C" suffix.
type GridLookup map[GridKey]string

// Restrictions maps a group to its material allow-list. A group with no entry
// admits every material.
type Restrictions map[GroupID][]string

// Groups is the full rule set for a reconciliation run: group configs, the
// material restrictions, and the price-grid lookup. It is built by the caller
// (normally from a configuration document), validated eagerly, and read-only
// from then on.
type Groups struct {
	configs      map[GroupID]GroupConfig
	restrictions Restrictions
	grids        GridLookup
}

// NewGroups builds a validated Groups rule set.
func NewGroups(configs []GroupConfig, restrictions Restrictions, grids GridLookup) (*Groups, error) {
	byID := make(map[GroupID]GroupConfig, len(configs))
	for _, cfg := range configs {
		if cfg.ID == "" {
			return nil, errors.NewConfigError("", "group config with empty id", nil)
		}
		if _, dup := byID[cfg.ID]; dup {
			return nil, errors.NewConfigError(cfg.ID.String(), "duplicate group config", nil)
		}
		if err := validateGroupConfig(cfg); err != nil {
			return nil, err
		}
		byID[cfg.ID] = cfg
	}

	for groupID := range restrictions {
		if _, ok := byID[groupID]; !ok {
			return nil, errors.NewConfigError(groupID.String(), "material restriction references unknown group", nil)
		}
	}
	for key := range grids {
		if _, ok := byID[key.Group]; !ok {
			return nil, errors.NewConfigError(key.Group.String(), "price grid entry references unknown group", nil)
		}
	}

	if restrictions == nil {
		restrictions = Restrictions{}
	}
	if grids == nil {
		grids = GridLookup{}
	}

	return &Groups{configs: byID, restrictions: restrictions, grids: grids}, nil
}

func validateGroupConfig(cfg GroupConfig) error {
	if _, ok := ParsePricingMode(string(cfg.PricingMode)); !ok {
		return &errors.ConfigError{Group: cfg.ID.String(), Value: string(cfg.PricingMode), Message: "unknown pricing mode"}
	}
	if _, ok := ParsePriceUnit(string(cfg.PriceUnit)); !ok {
		return &errors.ConfigError{Group: cfg.ID.String(), Value: string(cfg.PriceUnit), Message: "unknown price unit"}
	}
	if cfg.MarkupOverride != nil && !cfg.MarkupOverride.IsPositive() {
		return &errors.ConfigError{Group: cfg.ID.String(), Value: cfg.MarkupOverride.String(), Message: "markup override must be positive"}
	}
	if cfg.WastagePct != nil {
		if cfg.WastagePct.IsNegative() || cfg.WastagePct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return &errors.ConfigError{Group: cfg.ID.String(), Value: cfg.WastagePct.String(), Message: "wastage must be a fraction in [0,1)"}
		}
	}
	return nil
}

// Config returns the configuration for a group.
func (g *Groups) Config(id GroupID) (GroupConfig, bool) {
	cfg, ok := g.configs[id]
	return cfg, ok
}

// IDs returns all configured group IDs in stable sorted order.
func (g *Groups) IDs() []GroupID {
	ids := make([]GroupID, 0, len(g.configs))
	for id := range g.configs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of configured groups.
func (g *Groups) Len() int {
	return len(g.configs)
}

// GroupsForCategory returns the IDs of every group fed by the given supply
// category, in stable sorted order. Several groups may share one category.
func (g *Groups) GroupsForCategory(category string) []GroupID {
	var ids []GroupID
	for id, cfg := range g.configs {
		if cfg.Category == category {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Restrictions returns the material allow-list table.
func (g *Groups) Restrictions() Restrictions {
	return g.restrictions
}

// Grid resolves a price-grid code for a group and price category.
func (g *Groups) Grid(group GroupID, category string) (string, bool) {
	code, ok := g.grids[GridKey{Group: group, Category: category}]
	return code, ok
}
