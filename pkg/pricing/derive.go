package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shadeworks/fabricsync/pkg/catalog"
	"github.com/shadeworks/fabricsync/pkg/errors"
)

// thousand converts a millimetre width into metres for linear-to-area
// conversion.
var thousand = decimal.NewFromInt(1000)

// one is used for the wastage multiplier (1 + pct).
var one = decimal.NewFromInt(1)

// Derived is the result of a price derivation, rounded to 2 decimal places.
type Derived struct {
	Cost decimal.Decimal
	Sell decimal.Decimal
}

// ParseRawPrice parses the raw price string from a supply row.
func ParseRawPrice(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if trimmed == "" {
		return decimal.Decimal{}, errors.NewValidationError("price", raw, "empty price")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Decimal{}, errors.WrapValidation("price", err)
	}
	return d, nil
}

// Derive converts a raw supply price into stored cost and sell figures.
// The order of operations is load-bearing: unit conversion first, then
// wastage, then markup. Applying markup before wastage would change the
// effective wastage percentage on the sell price.
//
// For linear pricing a positive width (mm) is required; a missing or zero
// width returns a ValidationError the caller treats as row-local (the item
// change proceeds, only pricing is skipped).
func Derive(raw decimal.Decimal, unit catalog.PriceUnit, width *decimal.Decimal, wastagePct *decimal.Decimal, markup decimal.Decimal) (Derived, error) {
	cost := raw

	if unit == catalog.PriceUnitLinear {
		if width == nil || !width.IsPositive() {
			return Derived{}, errors.NewValidationError("width", width, "positive width required for linear-to-area conversion")
		}
		cost = cost.Div(width.Div(thousand))
	}

	if wastagePct != nil {
		cost = cost.Mul(one.Add(*wastagePct))
	}

	sell := cost.Mul(markup)

	return Derived{
		Cost: cost.Round(2),
		Sell: sell.Round(2),
	}, nil
}
