package reconciler

import (
	"github.com/agentstation/utc"
	"github.com/shopspring/decimal"

	"github.com/shadeworks/fabricsync/pkg/catalog"
)

// Operation is the type of change emitted for a target record.
type Operation string

const (
	// OperationAdd indicates a new record should be created.
	OperationAdd Operation = "add"

	// OperationEdit indicates an existing record should be updated.
	OperationEdit Operation = "edit"

	// OperationDeprecate indicates an existing record should be marked with
	// the deprecation sentinel while staying active.
	OperationDeprecate Operation = "deprecate"

	// OperationPricing appears only in change-log entries, for pricing-only
	// changes that have no accompanying item change.
	OperationPricing Operation = "pricing"
)

// Letter returns the legacy single-letter code used by downstream upload
// generators. The engine itself never branches on letters.
func (o Operation) Letter() string {
	switch o {
	case OperationAdd:
		return "A"
	case OperationEdit:
		return "E"
	case OperationDeprecate:
		return "D"
	case OperationPricing:
		return "P"
	default:
		return ""
	}
}

// ChangeRow is one emitted item change. Rows are never mutated once emitted.
type ChangeRow struct {
	GroupID      catalog.GroupID `json:"group_id"`
	Operation    Operation       `json:"operation"`
	Identifier   string          `json:"identifier"`
	Description  string          `json:"description"`
	Field1       string          `json:"field1"`
	Field2       string          `json:"field2"`
	Field3       string          `json:"field3"`
	ExternalRef  string          `json:"external_ref"`
	PriceGridRef string          `json:"price_grid_ref"`
	CostGridRef  string          `json:"cost_grid_ref"`
	DiscountRef  string          `json:"discount_ref"`
	Active       bool            `json:"active"`
	StatusNote   string          `json:"status_note"`
	RowRef       string          `json:"row_ref,omitempty"` // Target-store row reference for edits
}

// PricingChangeRow is one emitted pricing record. New prices for existing
// variants take effect the next day, never the current day, to avoid same-day
// ambiguity with in-flight orders.
type PricingChangeRow struct {
	GroupID       catalog.GroupID `json:"group_id"`
	Identifier    string          `json:"identifier"`
	Description   string          `json:"description"`
	DateEffective utc.Time        `json:"date_effective"`
	CostAmount    decimal.Decimal `json:"cost_amount"`
	SellAmount    decimal.Decimal `json:"sell_amount"`
}

// ChangeLogEntry explains one change in human-readable terms. The log is part
// of the engine contract: every emitted row has exactly one entry, and
// pricing-only changes get their own entry.
type ChangeLogEntry struct {
	GroupID     catalog.GroupID `json:"group_id"`
	Operation   Operation       `json:"operation"`
	Identifier  string          `json:"identifier"`
	Description string          `json:"description"`
	Reason      string          `json:"reason"`
}

// Warning is a recovered, row-local problem. Warnings never stop the run and
// are always visible in the returned result, not only in the logger.
type Warning struct {
	GroupID    catalog.GroupID `json:"group_id"`
	Identifier string          `json:"identifier,omitempty"`
	Key        catalog.Key     `json:"key,omitempty"`
	Message    string          `json:"message"`
}
