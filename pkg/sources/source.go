// Package sources defines the provider interfaces the reconciliation engine
// consumes. The engine never talks to a spreadsheet service or a relational
// store itself; callers hand it in-memory collections obtained through these
// interfaces, and a separate apply collaborator persists the emitted changes.
package sources

import (
	"context"

	"github.com/shadeworks/fabricsync/pkg/catalog"
)

// SupplyProvider fetches the external supply catalog. Implementations must
// surface network and IO errors to the caller; the engine never swallows them.
type SupplyProvider interface {
	// Fetch returns supply rows for the given categories. An empty filter
	// means all categories.
	Fetch(ctx context.Context, categories []string) ([]catalog.SupplyVariant, error)
}

// TargetProvider loads the internal target catalog. The engine only reads
// through this interface; it emits change rows instead of writing back.
type TargetProvider interface {
	// Load returns target records and pricing history for the given groups.
	Load(ctx context.Context, groups []catalog.GroupID) ([]catalog.TargetRecord, []catalog.PricingRecord, error)
}

// Provider combines both sides for callers that load everything from one
// place (fixtures, tests, a combined snapshot).
type Provider interface {
	SupplyProvider
	TargetProvider
}
