package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMaxDiscount caps the discount so a draft can never total below zero.
var DefaultMaxDiscount = decimal.NewFromInt(100)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors lists every problem found in a draft.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "invalid draft: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the errors.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

type Rules struct {
	MaxDiscount decimal.Decimal
}

var DefaultRules = Rules{MaxDiscount: DefaultMaxDiscount}

// Validate checks d with DefaultRules.
func Validate(d *Draft) error {
	return DefaultRules.Validate(d)
}

// Validate returns nil or ValidationErrors.
func (r Rules) Validate(d *Draft) error {
	var errs ValidationErrors

	if d.Customer.IsZero() {
		errs = append(errs, FieldError{Field: "customer", Message: "customer is required"})
	}
	if d.Employee.IsZero() {
		errs = append(errs, FieldError{Field: "employee", Message: "employee is required"})
	}
	if !d.PaymentMethod.Valid() {
		errs = append(errs, FieldError{Field: "paymentMethod", Message: "payment method must be CREDITO, DEBITO or DINHEIRO"})
	}

	if d.DiscountPercent.IsNegative() {
		errs = append(errs, FieldError{Field: "discountPercent", Message: "discount must be greater than or equal to 0"})
	} else if d.DiscountPercent.GreaterThan(r.maxDiscount()) {
		errs = append(errs, FieldError{
			Field:   "discountPercent",
			Message: fmt.Sprintf("discount must not exceed %s%%", r.maxDiscount().String()),
		})
	}

	lines := d.Lines()
	if len(lines) == 0 {
		errs = append(errs, FieldError{Field: "lines", Message: "at least one product is required"})
	}
	for i, line := range lines {
		if line.Product.ID == "" {
			errs = append(errs, FieldError{Field: fmt.Sprintf("lines[%d].product", i), Message: "product is required"})
		}
		if line.Quantity < 1 {
			errs = append(errs, FieldError{Field: fmt.Sprintf("lines[%d].quantity", i), Message: "quantity must be at least 1"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r Rules) maxDiscount() decimal.Decimal {
	if r.MaxDiscount.IsZero() || r.MaxDiscount.IsNegative() {
		return DefaultMaxDiscount
	}
	return r.MaxDiscount
}
