// Package config loads the reconciliation rule file: product-group
// definitions, material restrictions, price grids and run defaults. The rule
// file is YAML; a handful of values can be overridden through environment
// variables or Viper configuration.
package config

import (
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/errors"
	"github.com/shadeworks/fabricsync/pkg/pricing"
	"github.com/shadeworks/fabricsync/pkg/reconciler"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// File is the YAML shape of the rule file.
type File struct {
	// DefaultMarkup overrides the built-in fallback markup for groups with no
	// override and no pricing history. Optional.
	DefaultMarkup string `yaml:"default_markup,omitempty"`

	Groups []GroupSpec `yaml:"groups"`

	// MaterialRestrictions maps a group ID to its material allow-list.
	MaterialRestrictions map[string][]string `yaml:"material_restrictions,omitempty"`

	PriceGrids []GridSpec `yaml:"price_grids,omitempty"`
}

// GroupSpec is one product group in the rule file. Markup and wastage are
// strings so the file can say "20%" as naturally as "0.2".
type GroupSpec struct {
	ID                string   `yaml:"id"`
	DescriptionPrefix string   `yaml:"description_prefix"`
	Category          string   `yaml:"category"`
	PricingMode       string   `yaml:"pricing_mode,omitempty"`
	PriceUnit         string   `yaml:"price_unit,omitempty"`
	PriceGridRef      string   `yaml:"price_grid_ref,omitempty"`
	CostGridRef       string   `yaml:"cost_grid_ref,omitempty"`
	DiscountRef       string   `yaml:"discount_ref,omitempty"`
	Markup            string   `yaml:"markup,omitempty"`
	Wastage           string   `yaml:"wastage,omitempty"`
	TitleCase         bool     `yaml:"title_case_descriptions,omitempty"`
	KeepPrefixes      []string `yaml:"keep_prefixes,omitempty"`             // Identifier prefixes never deprecated
	KeepDescriptions  []string `yaml:"keep_description_prefixes,omitempty"` // Rendered-description prefixes never deprecated
}

// GridSpec maps one (group, price category) pair to a price-grid code.
type GridSpec struct {
	Group    string `yaml:"group"`
	Category string `yaml:"category"`
	Grid     string `yaml:"grid"`
}

// Config is the validated, typed rule set ready to hand to the engine.
type Config struct {
	Groups        *catalog.Groups
	DefaultMarkup decimal.Decimal
	keepRules     map[catalog.GroupID]keepRule
	file          File
}

// keepRule is a group's carve-out from deprecation: records whose identifier
// or rendered description starts with one of the prefixes are never
// deprecated, no matter what the supply catalog says.
type keepRule struct {
	identifiers  []string
	descriptions []string
	descPrefix   string
	titleCase    bool
}

func (k keepRule) predicate() reconciler.KeepPredicate {
	byID := keepByPrefix(k.identifiers)
	byDesc := keepByDescription(k.descPrefix, k.titleCase, k.descriptions)
	return func(rec catalog.TargetRecord) bool {
		return byID(rec) || byDesc(rec)
	}
}

// Load reads and validates a rule file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse validates rule-file bytes. The path is used only in error messages.
func Parse(data []byte, path string) (*Config, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewParseError("yaml", path, "invalid rule file", err)
	}
	return assemble(file)
}

func assemble(file File) (*Config, error) {
	if len(file.Groups) == 0 {
		return nil, errors.NewConfigError("", "rule file defines no groups", nil)
	}

	cfg := &Config{
		DefaultMarkup: pricing.DefaultMarkup,
		keepRules:     make(map[catalog.GroupID]keepRule),
		file:          file,
	}

	markup := file.DefaultMarkup
	if override := GetString("FABRICSYNC_DEFAULT_MARKUP"); override != "" {
		markup = override
	}
	if markup != "" {
		d, err := decimal.NewFromString(strings.TrimSpace(markup))
		if err != nil || !d.IsPositive() {
			return nil, &errors.ConfigError{Value: markup, Message: "default markup must be a positive number", Err: err}
		}
		cfg.DefaultMarkup = d
	}

	configs := make([]catalog.GroupConfig, 0, len(file.Groups))
	for _, spec := range file.Groups {
		gc, err := spec.toGroupConfig()
		if err != nil {
			return nil, err
		}
		configs = append(configs, gc)
		if len(spec.KeepPrefixes) > 0 || len(spec.KeepDescriptions) > 0 {
			cfg.keepRules[gc.ID] = keepRule{
				identifiers:  spec.KeepPrefixes,
				descriptions: spec.KeepDescriptions,
				descPrefix:   gc.DescriptionPrefix,
				titleCase:    gc.TitleCaseDesc,
			}
		}
	}

	restrictions := catalog.Restrictions{}
	for group, allowed := range file.MaterialRestrictions {
		restrictions[catalog.GroupID(group)] = allowed
	}

	grids := catalog.GridLookup{}
	for _, spec := range file.PriceGrids {
		key := catalog.GridKey{Group: catalog.GroupID(spec.Group), Category: strings.TrimSpace(spec.Category)}
		if _, dup := grids[key]; dup {
			return nil, &errors.ConfigError{Group: spec.Group, Value: spec.Category, Message: "duplicate price grid entry"}
		}
		grids[key] = strings.TrimSpace(spec.Grid)
	}

	groups, err := catalog.NewGroups(configs, restrictions, grids)
	if err != nil {
		return nil, err
	}
	cfg.Groups = groups
	return cfg, nil
}

func (s GroupSpec) toGroupConfig() (catalog.GroupConfig, error) {
	mode, ok := catalog.ParsePricingMode(s.PricingMode)
	if !ok {
		return catalog.GroupConfig{}, &errors.ConfigError{Group: s.ID, Value: s.PricingMode, Message: "unknown pricing mode"}
	}
	unit, ok := catalog.ParsePriceUnit(s.PriceUnit)
	if !ok {
		return catalog.GroupConfig{}, &errors.ConfigError{Group: s.ID, Value: s.PriceUnit, Message: "unknown price unit"}
	}

	gc := catalog.GroupConfig{
		ID:                catalog.GroupID(strings.TrimSpace(s.ID)),
		DescriptionPrefix: strings.TrimSpace(s.DescriptionPrefix),
		Category:          strings.TrimSpace(s.Category),
		PricingMode:       mode,
		PriceUnit:         unit,
		PriceGridRef:      strings.TrimSpace(s.PriceGridRef),
		CostGridRef:       strings.TrimSpace(s.CostGridRef),
		DiscountRef:       strings.TrimSpace(s.DiscountRef),
		TitleCaseDesc:     s.TitleCase,
	}

	if s.Markup != "" {
		d, err := decimal.NewFromString(strings.TrimSpace(s.Markup))
		if err != nil {
			return catalog.GroupConfig{}, &errors.ConfigError{Group: s.ID, Value: s.Markup, Message: "invalid markup", Err: err}
		}
		gc.MarkupOverride = &d
	}

	if s.Wastage != "" {
		d, err := ParsePercent(s.Wastage)
		if err != nil {
			return catalog.GroupConfig{}, &errors.ConfigError{Group: s.ID, Value: s.Wastage, Message: "invalid wastage", Err: err}
		}
		gc.WastagePct = &d
	}

	return gc, nil
}

// hundred scales "20%" down to the fraction 0.2.
var hundred = decimal.NewFromInt(100)

// ParsePercent parses a wastage value. A trailing percent sign means the
// number is out of 100; otherwise it is already a fraction.
func ParsePercent(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	percent := strings.HasSuffix(trimmed, "%")
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "%"))

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if percent {
		d = d.Div(hundred)
	}
	return d, nil
}

// Subset narrows the rule set to the named groups, carrying their
// restrictions, grids and keep prefixes along. An unknown ID is a
// configuration error.
func (c *Config) Subset(ids []string) (*Config, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := c.Groups.Config(catalog.GroupID(id)); !ok {
			return nil, errors.NewConfigError(id, "unknown group in filter", nil)
		}
		want[id] = struct{}{}
	}

	file := File{DefaultMarkup: c.file.DefaultMarkup}
	for _, spec := range c.file.Groups {
		if _, ok := want[strings.TrimSpace(spec.ID)]; ok {
			file.Groups = append(file.Groups, spec)
		}
	}
	for group, allowed := range c.file.MaterialRestrictions {
		if _, ok := want[group]; ok {
			if file.MaterialRestrictions == nil {
				file.MaterialRestrictions = make(map[string][]string)
			}
			file.MaterialRestrictions[group] = allowed
		}
	}
	for _, grid := range c.file.PriceGrids {
		if _, ok := want[grid.Group]; ok {
			file.PriceGrids = append(file.PriceGrids, grid)
		}
	}
	return assemble(file)
}

// Categories returns the distinct supply categories feeding the configured
// groups, sorted.
func (c *Config) Categories() []string {
	seen := make(map[string]struct{})
	for _, id := range c.Groups.IDs() {
		cfg, _ := c.Groups.Config(id)
		if cfg.Category != "" {
			seen[cfg.Category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

// ReconcilerOptions translates the rule file's run settings into engine
// options: the default markup, and a keep predicate for every group that
// protects identifier prefixes from deprecation.
func (c *Config) ReconcilerOptions() []reconciler.Option {
	opts := []reconciler.Option{
		reconciler.WithDefaultMarkup(c.DefaultMarkup),
	}
	for id, rule := range c.keepRules {
		opts = append(opts, reconciler.WithKeepPredicate(id, rule.predicate()))
	}
	return opts
}

// KeepPrefixes returns the configured identifier keep prefixes for a group.
func (c *Config) KeepPrefixes(id catalog.GroupID) []string {
	return c.keepRules[id].identifiers
}

func keepByPrefix(prefixes []string) reconciler.KeepPredicate {
	return func(rec catalog.TargetRecord) bool {
		id := strings.TrimSpace(rec.Identifier)
		for _, p := range prefixes {
			if strings.HasPrefix(id, p) {
				return true
			}
		}
		return false
	}
}

func keepByDescription(prefix string, titleCase bool, keeps []string) reconciler.KeepPredicate {
	return func(rec catalog.TargetRecord) bool {
		if len(keeps) == 0 {
			return false
		}
		desc := catalog.BuildDescription(prefix, rec.Field1, rec.Field2, rec.Field3, titleCase)
		for _, p := range keeps {
			if strings.HasPrefix(desc, p) {
				return true
			}
		}
		return false
	}
}
