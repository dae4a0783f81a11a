package fabricsync

import (
	rules "github.com/shadeworks/fabricsync/internal/config"
	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/errors"
	"github.com/shadeworks/fabricsync/pkg/reconciler"
	"github.com/shadeworks/fabricsync/pkg/sources"
)

// Option is a function that configures a Client.
type Option func(*config) error

type config struct {
	provider   sources.Provider
	groups     *catalog.Groups
	categories []string
	engineOpts []reconciler.Option
}

// WithProvider sets the data provider the client fetches supply and target
// catalogs through.
func WithProvider(p sources.Provider) Option {
	return func(c *config) error {
		if p == nil {
			return &errors.ConfigError{Message: "provider cannot be nil"}
		}
		c.provider = p
		return nil
	}
}

// WithGroups sets the group rule set.
func WithGroups(groups *catalog.Groups) Option {
	return func(c *config) error {
		if groups == nil {
			return &errors.ConfigError{Message: "groups cannot be nil"}
		}
		c.groups = groups
		return nil
	}
}

// WithRuleFile loads the rule set, keep predicates and run defaults from a
// YAML rule file.
func WithRuleFile(path string) Option {
	return func(c *config) error {
		cfg, err := rules.Load(path)
		if err != nil {
			return err
		}
		c.groups = cfg.Groups
		c.engineOpts = append(c.engineOpts, cfg.ReconcilerOptions()...)
		return nil
	}
}

// WithCategories overrides the supply categories fetched during a sync. By
// default the client fetches every category the rule set names.
func WithCategories(categories ...string) Option {
	return func(c *config) error {
		c.categories = categories
		return nil
	}
}

// WithEngineOptions passes options through to the reconciliation engine.
func WithEngineOptions(opts ...reconciler.Option) Option {
	return func(c *config) error {
		c.engineOpts = append(c.engineOpts, opts...)
		return nil
	}
}
