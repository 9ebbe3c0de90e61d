package order

import (
	"testing"

	"rx-vendas/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id, price string, available int) entity.Reference {
	return entity.Reference{Kind: entity.KindProduct, ID: id, Name: "Produto " + id, Price: dec(price), Available: available}
}

func TestComputeTotals(t *testing.T) {
	t.Run("Example scenario", func(t *testing.T) {
		d := NewDraft()
		require.NoError(t, d.Ledger.AddLine(product("p-1", "100.00", 10), 2))
		require.NoError(t, d.Ledger.AddLine(product("p-2", "50.00", 10), 1))
		d.DiscountPercent = dec("10")

		totals := ComputeTotals(d)

		assert.True(t, totals.Subtotal.Equal(dec("250.00")), totals.Subtotal.String())
		assert.True(t, totals.Total.Equal(dec("225.00")), totals.Total.String())
		assert.True(t, totals.Discount.Equal(dec("25.00")), totals.Discount.String())
	})

	t.Run("Empty draft", func(t *testing.T) {
		totals := ComputeTotals(NewDraft())
		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.Total.IsZero())
	})

	t.Run("Fractional prices stay exact", func(t *testing.T) {
		d := NewDraft()
		require.NoError(t, d.Ledger.AddLine(product("p-1", "0.10", 10), 3))
		d.DiscountPercent = dec("12.5")

		totals := ComputeTotals(d)
		assert.True(t, totals.Subtotal.Equal(dec("0.3")))
		assert.True(t, totals.Total.Equal(dec("0.2625")))
	})

	t.Run("Discount above 100 is not clamped", func(t *testing.T) {
		d := NewDraft()
		require.NoError(t, d.Ledger.AddLine(product("p-1", "100", 10), 1))
		d.DiscountPercent = dec("150")

		assert.True(t, ComputeTotals(d).Total.Equal(dec("-50")))
	})

	t.Run("Independent of mutation order", func(t *testing.T) {
		a := NewDraft()
		require.NoError(t, a.Ledger.AddLine(product("x", "19.90", 10), 2))
		require.NoError(t, a.Ledger.AddLine(product("y", "5.00", 10), 7))
		require.NoError(t, a.Ledger.AddLine(product("z", "1.25", 10), 1))
		a.Ledger.RemoveLine(2)

		b := NewDraft()
		require.NoError(t, b.Ledger.AddLine(product("z", "1.25", 10), 1))
		require.NoError(t, b.Ledger.AddLine(product("y", "5.00", 10), 7))
		b.Ledger.RemoveLine(0)
		require.NoError(t, b.Ledger.AddLine(product("x", "19.90", 10), 2))

		a.DiscountPercent, b.DiscountPercent = dec("5"), dec("5")

		ta, tb := ComputeTotals(a), ComputeTotals(b)
		assert.True(t, ta.Subtotal.Equal(tb.Subtotal))
		assert.True(t, ta.Total.Equal(tb.Total))
		assert.True(t, ta.Subtotal.Equal(dec("74.80")))
	})
}
