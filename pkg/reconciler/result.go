package reconciler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/pricing"
)

// Result holds everything one reconciliation run produced. The engine writes
// nothing anywhere; callers decide what to do with the rows.
type Result struct {
	// Changes holds emitted item rows per group, in emission order
	// (adds, then edits, then deprecations, each sorted by identity key).
	Changes map[catalog.GroupID][]ChangeRow `json:"changes"`

	// PricingChanges holds emitted pricing rows per group.
	PricingChanges map[catalog.GroupID][]PricingChangeRow `json:"pricing_changes"`

	// Log has one entry per change, in emission order across groups.
	Log []ChangeLogEntry `json:"log"`

	// Warnings are the recovered row-local problems.
	Warnings []Warning `json:"warnings"`

	// Markups records the markup decision made for each priced group.
	Markups map[catalog.GroupID]pricing.MarkupDecision `json:"markups"`
}

// NewResult returns an empty result with all maps allocated.
func NewResult() *Result {
	return &Result{
		Changes:        make(map[catalog.GroupID][]ChangeRow),
		PricingChanges: make(map[catalog.GroupID][]PricingChangeRow),
		Markups:        make(map[catalog.GroupID]pricing.MarkupDecision),
	}
}

// Counts are the per-operation totals for one group.
type Counts struct {
	Adds         int `json:"adds"`
	Edits        int `json:"edits"`
	Deprecations int `json:"deprecations"`
	Pricing      int `json:"pricing"`
}

// Total returns the sum of all item counts, excluding pricing rows.
func (c Counts) Total() int {
	return c.Adds + c.Edits + c.Deprecations
}

// GroupCounts tallies the emitted rows for the given group.
func (r *Result) GroupCounts(id catalog.GroupID) Counts {
	var c Counts
	for _, row := range r.Changes[id] {
		switch row.Operation {
		case OperationAdd:
			c.Adds++
		case OperationEdit:
			c.Edits++
		case OperationDeprecate:
			c.Deprecations++
		}
	}
	c.Pricing = len(r.PricingChanges[id])
	return c
}

// TotalCounts tallies emitted rows across all groups.
func (r *Result) TotalCounts() Counts {
	var c Counts
	for id := range r.Changes {
		gc := r.GroupCounts(id)
		c.Adds += gc.Adds
		c.Edits += gc.Edits
		c.Deprecations += gc.Deprecations
	}
	for _, rows := range r.PricingChanges {
		c.Pricing += len(rows)
	}
	return c
}

// GroupIDs returns every group that emitted at least one row, sorted.
func (r *Result) GroupIDs() []catalog.GroupID {
	seen := make(map[catalog.GroupID]struct{})
	for id := range r.Changes {
		seen[id] = struct{}{}
	}
	for id := range r.PricingChanges {
		seen[id] = struct{}{}
	}
	ids := make([]catalog.GroupID, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Empty reports whether the run produced no rows at all.
func (r *Result) Empty() bool {
	return len(r.Changes) == 0 && len(r.PricingChanges) == 0
}

// String renders a short per-group summary for logs and CLI output.
func (r *Result) String() string {
	if r.Empty() {
		return "no changes"
	}
	var b strings.Builder
	for _, id := range r.GroupIDs() {
		c := r.GroupCounts(id)
		fmt.Fprintf(&b, "%s: %d added, %d edited, %d deprecated, %d priced\n",
			id, c.Adds, c.Edits, c.Deprecations, c.Pricing)
	}
	t := r.TotalCounts()
	fmt.Fprintf(&b, "total: %d item changes, %d pricing changes, %d warnings",
		t.Total(), t.Pricing, len(r.Warnings))
	return b.String()
}
