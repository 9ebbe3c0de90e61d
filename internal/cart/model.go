package cart

import (
	"rx-vendas/internal/entity"

	"github.com/shopspring/decimal"
)

// Line is one product line of a draft. UnitPrice and Available are
// snapshots taken when the product was selected; later price or stock
// changes on the backend do not touch an in-progress order.
type Line struct {
	Product   entity.Reference `json:"product"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Quantity  int              `json:"quantity"`
	Available int              `json:"available"`
}

// Subtotal is UnitPrice × Quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
