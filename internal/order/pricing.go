package order

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are derived from a draft and never stored.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals derives subtotal = Σ(unitPrice × quantity) and
// total = subtotal × (1 − discountPercent/100). No clamping happens here;
// out-of-range discounts are a validation concern.
func ComputeTotals(d *Draft) Totals {
	subtotal := decimal.Zero
	for _, line := range d.Lines() {
		subtotal = subtotal.Add(line.Subtotal())
	}

	total := subtotal.Mul(hundred.Sub(d.DiscountPercent)).Div(hundred)

	return Totals{
		Subtotal: subtotal,
		Discount: subtotal.Sub(total),
		Total:    total,
	}
}
