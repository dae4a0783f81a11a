package catalog

// DeprecatedNote is the status-note sentinel marking a target record that
// should no longer be sold. The record stays active so historical order lines
// keep resolving; downstream consumers recognize the sentinel instead.
const DeprecatedNote = "Deprecated - DO NOT USE"

// TargetRecord is one row of the internal target catalog. Records are owned by
// the target store and are mutated only through emitted change rows, never
// directly by the engine.
type TargetRecord struct {
	GroupID      GroupID `json:"group_id" yaml:"group_id"`
	Identifier   string  `json:"identifier" yaml:"identifier"`         // Group-scoped, stable, externally visible code
	ExternalRef  string  `json:"external_ref" yaml:"external_ref"`     // Supplier product code
	Field1       string  `json:"field1" yaml:"field1"`                 // Descriptor part 1 (material)
	Field2       string  `json:"field2" yaml:"field2"`                 // Descriptor part 2 (material type)
	Field3       string  `json:"field3" yaml:"field3"`                 // Descriptor part 3 (colour)
	Active       bool    `json:"active" yaml:"active"`
	StatusNote   string  `json:"status_note" yaml:"status_note"`
	PriceGridRef string  `json:"price_grid_ref" yaml:"price_grid_ref"`
	CostGridRef  string  `json:"cost_grid_ref" yaml:"cost_grid_ref"`
	DiscountRef  string  `json:"discount_ref" yaml:"discount_ref"`
	RowRef       string  `json:"row_ref" yaml:"row_ref"` // Internal row reference in the target store
}

// Key returns the record's normalized identity key.
func (r TargetRecord) Key() Key {
	return BuildKey(r.Field1, r.Field2, r.Field3)
}

// IsDeprecated reports whether the record carries the deprecation sentinel.
func (r TargetRecord) IsDeprecated() bool {
	return r.StatusNote == DeprecatedNote
}
