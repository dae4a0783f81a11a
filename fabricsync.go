// Package fabricsync reconciles a supplier's catalog of fabric variants
// against an internal target catalog and derives the pricing changes that go
// with it. This package is the library facade: it wires a data provider, a
// rule set and the engine into a single client. The CLI under cmd/fabricsync
// is a thin wrapper around the same pieces.
package fabricsync

import (
	"context"
	"sync"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/errors"
	"github.com/shadeworks/fabricsync/pkg/logging"
	"github.com/shadeworks/fabricsync/pkg/reconciler"
)

// Client runs reconciliations and dispatches change hooks.
type Client interface {
	// Sync fetches supply and target data through the configured provider,
	// runs the reconciliation, fires registered hooks, and returns the result.
	Sync(ctx context.Context) (*reconciler.Result, error)

	// Groups returns the rule set the client reconciles under.
	Groups() *catalog.Groups

	// OnAdd registers a callback fired for every addition a sync emits.
	OnAdd(ChangeHook)

	// OnEdit registers a callback fired for every edit a sync emits.
	OnEdit(ChangeHook)

	// OnDeprecate registers a callback fired for every deprecation a sync emits.
	OnDeprecate(ChangeHook)

	// OnPricing registers a callback fired for every pricing change a sync emits.
	OnPricing(PricingHook)
}

type client struct {
	mu     sync.RWMutex
	config *config
	engine reconciler.Reconciler
	hooks  *hooks
}

// New creates a client from the given options. A provider and a rule set are
// required; everything else has defaults.
func New(opts ...Option) (Client, error) {
	c := &client{
		config: &config{},
		hooks:  newHooks(),
	}

	for _, opt := range opts {
		if err := opt(c.config); err != nil {
			return nil, err
		}
	}

	if c.config.provider == nil {
		return nil, &errors.ConfigError{Message: "a data provider is required"}
	}
	if c.config.groups == nil {
		return nil, &errors.ConfigError{Message: "a group rule set is required"}
	}

	engine, err := reconciler.New(c.config.groups, c.config.engineOpts...)
	if err != nil {
		return nil, err
	}
	c.engine = engine

	return c, nil
}

// Groups returns a rule set usable for inspection.
func (c *client) Groups() *catalog.Groups {
	return c.config.groups
}

// Sync runs one reconciliation.
func (c *client) Sync(ctx context.Context) (*reconciler.Result, error) {
	c.mu.RLock()
	cfg := c.config
	c.mu.RUnlock()

	categories := cfg.categories
	if len(categories) == 0 {
		categories = categoriesOf(cfg.groups)
	}

	supply, err := cfg.provider.Fetch(ctx, categories)
	if err != nil {
		return nil, err
	}
	targets, prices, err := cfg.provider.Load(ctx, cfg.groups.IDs())
	if err != nil {
		return nil, err
	}

	result, err := c.engine.Run(ctx, supply, targets, prices)
	if err != nil {
		return nil, err
	}

	fired := c.hooks.dispatch(result)
	if fired > 0 {
		logging.FromContext(ctx).Debug().Int("hooks_fired", fired).Msg("sync hooks dispatched")
	}

	return result, nil
}

// categoriesOf collects the distinct supply categories of a rule set.
func categoriesOf(groups *catalog.Groups) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, id := range groups.IDs() {
		cfg, _ := groups.Config(id)
		if cfg.Category == "" {
			continue
		}
		if _, dup := seen[cfg.Category]; dup {
			continue
		}
		seen[cfg.Category] = struct{}{}
		categories = append(categories, cfg.Category)
	}
	return categories
}
