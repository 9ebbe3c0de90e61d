package cart

import (
	"rx-vendas/internal/entity"
)

// Ledger is the ordered list of lines of one draft. Insertion order is
// display order, and adding the same product twice yields two lines.
// A Ledger is not safe for concurrent use; the owning draft serialises access.
type Ledger struct {
	lines []Line
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// AddLine appends a line for product, snapshotting its price and stock.
func (l *Ledger) AddLine(product entity.Reference, quantity int) error {
	if product.IsZero() {
		return ErrInvalidProduct
	}
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > product.Available {
		return &StockError{ProductID: product.ID, Requested: quantity, Available: product.Available}
	}

	l.lines = append(l.lines, Line{
		Product:   product,
		UnitPrice: product.Price,
		Quantity:  quantity,
		Available: product.Available,
	})
	return nil
}

// RemoveLine deletes the line at index. Out-of-range indexes are ignored;
// the result tells whether anything was removed.
func (l *Ledger) RemoveLine(index int) bool {
	if index < 0 || index >= len(l.lines) {
		return false
	}
	l.lines = append(l.lines[:index:index], l.lines[index+1:]...)
	return true
}

func (l *Ledger) UpdateQuantity(index, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if index < 0 || index >= len(l.lines) {
		return ErrLineNotFound
	}

	line := &l.lines[index]
	if quantity > line.Available {
		return &StockError{ProductID: line.Product.ID, Requested: quantity, Available: line.Available}
	}
	line.Quantity = quantity
	return nil
}

// Lines returns a copy of the lines in display order.
func (l *Ledger) Lines() []Line {
	out := make([]Line, len(l.lines))
	copy(out, l.lines)
	return out
}

func (l *Ledger) Len() int {
	return len(l.lines)
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{lines: l.Lines()}
}
