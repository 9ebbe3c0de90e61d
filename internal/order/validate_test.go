package order

import (
	"errors"
	"testing"

	"rx-vendas/internal/cart"
	"rx-vendas/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeDraft(t *testing.T) *Draft {
	t.Helper()
	d := NewDraft()
	d.Customer = entity.Reference{Kind: entity.KindCustomer, ID: "c-1", Name: "Ana"}
	d.Employee = entity.Reference{Kind: entity.KindEmployee, ID: "f-1", Name: "Bruno"}
	d.PaymentMethod = PaymentCash
	require.NoError(t, d.Ledger.AddLine(product("p-1", "100", 5), 1))
	return d
}

func fieldErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
	return verrs
}

func TestValidate(t *testing.T) {
	t.Run("Complete draft passes", func(t *testing.T) {
		assert.NoError(t, Validate(completeDraft(t)))
	})

	t.Run("Missing customer", func(t *testing.T) {
		d := completeDraft(t)
		d.Customer = entity.Reference{}
		verrs := fieldErrors(t, Validate(d))
		assert.True(t, verrs.Has("customer"))
		assert.Len(t, verrs, 1)
	})

	t.Run("Missing employee", func(t *testing.T) {
		d := completeDraft(t)
		d.Employee = entity.Reference{}
		assert.True(t, fieldErrors(t, Validate(d)).Has("employee"))
	})

	t.Run("No lines", func(t *testing.T) {
		d := completeDraft(t)
		d.Ledger = cart.NewLedger()
		assert.True(t, fieldErrors(t, Validate(d)).Has("lines"))
	})

	t.Run("Nil ledger", func(t *testing.T) {
		d := completeDraft(t)
		d.Ledger = nil
		assert.True(t, fieldErrors(t, Validate(d)).Has("lines"))
	})

	t.Run("Invalid payment method", func(t *testing.T) {
		d := completeDraft(t)
		d.PaymentMethod = "PIX"
		assert.True(t, fieldErrors(t, Validate(d)).Has("paymentMethod"))
	})

	t.Run("Negative discount", func(t *testing.T) {
		d := completeDraft(t)
		d.DiscountPercent = dec("-1")
		assert.True(t, fieldErrors(t, Validate(d)).Has("discountPercent"))
	})

	t.Run("Discount above the cap", func(t *testing.T) {
		d := completeDraft(t)
		d.DiscountPercent = dec("100.01")
		assert.True(t, fieldErrors(t, Validate(d)).Has("discountPercent"))

		d.DiscountPercent = dec("100")
		assert.NoError(t, Validate(d))
	})

	t.Run("Custom cap", func(t *testing.T) {
		d := completeDraft(t)
		d.DiscountPercent = dec("30")
		rules := Rules{MaxDiscount: dec("25")}
		assert.True(t, fieldErrors(t, rules.Validate(d)).Has("discountPercent"))
	})

	t.Run("Reports every problem at once", func(t *testing.T) {
		d := NewDraft()
		verrs := fieldErrors(t, Validate(d))
		assert.True(t, verrs.Has("customer"))
		assert.True(t, verrs.Has("employee"))
		assert.True(t, verrs.Has("lines"))
		assert.Contains(t, verrs.Error(), "customer is required")
	})
}

func TestParsePaymentMethod(t *testing.T) {
	for in, want := range map[string]PaymentMethod{
		"CREDITO":  PaymentCredit,
		"credit":   PaymentCredit,
		"debito":   PaymentDebit,
		"DEBIT":    PaymentDebit,
		"Dinheiro": PaymentCash,
		"cash":     PaymentCash,
	} {
		got, err := ParsePaymentMethod(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePaymentMethod("PIX")
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
}
