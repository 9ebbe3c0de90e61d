package cart

import (
	"errors"
	"fmt"
)

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidProduct  = errors.New("product reference is required")

	// -- Resource State --
	ErrLineNotFound      = errors.New("cart line not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError reports a quantity above the stock known for the product.
type StockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: product %s has %d available, %d requested",
		ErrInsufficientStock, e.ProductID, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
