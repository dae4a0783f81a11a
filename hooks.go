package fabricsync

import (
	"sync"

	"github.com/shadeworks/fabricsync/pkg/reconciler"
)

// Hook function types for change events
type (
	// ChangeHook is called for an emitted item change row.
	ChangeHook func(row reconciler.ChangeRow)

	// PricingHook is called for an emitted pricing change row.
	PricingHook func(row reconciler.PricingChangeRow)
)

// hooks manages event callbacks fired after each sync.
type hooks struct {
	mu          sync.RWMutex
	onAdd       []ChangeHook
	onEdit      []ChangeHook
	onDeprecate []ChangeHook
	onPricing   []PricingHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnAdd registers a callback for additions.
func (c *client) OnAdd(fn ChangeHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onAdd = append(c.hooks.onAdd, fn)
}

// OnEdit registers a callback for edits.
func (c *client) OnEdit(fn ChangeHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onEdit = append(c.hooks.onEdit, fn)
}

// OnDeprecate registers a callback for deprecations.
func (c *client) OnDeprecate(fn ChangeHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onDeprecate = append(c.hooks.onDeprecate, fn)
}

// OnPricing registers a callback for pricing changes.
func (c *client) OnPricing(fn PricingHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onPricing = append(c.hooks.onPricing, fn)
}

// dispatch fires the registered hooks for every row in the result, in the
// result's emission order, and returns how many callbacks ran.
func (h *hooks) dispatch(result *reconciler.Result) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	fired := 0
	for _, id := range result.GroupIDs() {
		for _, row := range result.Changes[id] {
			var targets []ChangeHook
			switch row.Operation {
			case reconciler.OperationAdd:
				targets = h.onAdd
			case reconciler.OperationEdit:
				targets = h.onEdit
			case reconciler.OperationDeprecate:
				targets = h.onDeprecate
			}
			for _, fn := range targets {
				fn(row)
				fired++
			}
		}
		for _, row := range result.PricingChanges[id] {
			for _, fn := range h.onPricing {
				fn(row)
				fired++
			}
		}
	}
	return fired
}
