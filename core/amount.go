package core

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// The ledger encodes amounts as integer strings in its minor unit
// ("drops"), at one millionth of the display unit.
var dropsScale = decimal.NewFromInt(1_000_000)

// XRPToDrops converts a display-unit amount to the ledger's integer
// drops string. Sub-drop precision is floored, never rounded up.
func XRPToDrops(amount decimal.Decimal) string {
	return amount.Mul(dropsScale).Floor().String()
}

// DropsToXRP converts a wire drops string to display units.
func DropsToXRP(drops string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(drops)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse drops amount %q: %w", drops, err)
	}
	return d.Div(dropsScale), nil
}
