package catalog

import (
	"github.com/shopspring/decimal"
)

// SupplyVariant is one row of the external supply catalog after boundary
// parsing. Variants are ephemeral: they exist only for the duration of a
// reconciliation run.
type SupplyVariant struct {
	GroupID     GroupID          `json:"group_id" yaml:"group_id"`         // Assigned during category matching; empty until binned
	Category    string           `json:"category" yaml:"category"`         // Free-text category from the supply source
	Field1      string           `json:"field1" yaml:"field1"`             // Descriptor part 1 (material)
	Field2      string           `json:"field2" yaml:"field2"`             // Descriptor part 2 (material type)
	Field3      string           `json:"field3" yaml:"field3"`             // Descriptor part 3 (colour)
	ExternalRef string           `json:"external_ref" yaml:"external_ref"` // Supplier product code
	RawPrice    string           `json:"raw_price" yaml:"raw_price"`       // Unparsed price or price category, depending on group pricing mode
	Width       *decimal.Decimal `json:"width,omitempty" yaml:"width,omitempty"` // Width in mm, when the source provides it
}

// Key returns the variant's normalized identity key.
func (v SupplyVariant) Key() Key {
	return BuildKey(v.Field1, v.Field2, v.Field3)
}

// IsBlank reports whether all three descriptor fields are empty. Blank rows
// produce degenerate keys and are dropped before matching.
func (v SupplyVariant) IsBlank() bool {
	return v.Key().IsZero()
}
