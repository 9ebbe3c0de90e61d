package validator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    string          `json:"id" validate:"required"`
	Price decimal.Decimal `json:"price" validate:"gte=0"`
}

type order struct {
	Item     item `json:"item"`
	Quantity int  `json:"quantity" validate:"min=1"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	t.Run("Valid", func(t *testing.T) {
		err := v.Struct(order{Item: item{ID: "p-1", Price: decimal.RequireFromString("9.90")}, Quantity: 1})
		assert.NoError(t, err)
	})

	t.Run("Reports JSON field paths", func(t *testing.T) {
		err := v.Struct(order{Item: item{Price: decimal.RequireFromString("-1")}, Quantity: 0})
		require.Error(t, err)

		fields := Fields(err)
		assert.ElementsMatch(t, []FieldError{
			{Field: "item.id", Message: "is required"},
			{Field: "item.price", Message: "must be greater than or equal to 0"},
			{Field: "quantity", Message: "must be at least 1"},
		}, fields)
	})
}

func TestFields_ForeignError(t *testing.T) {
	assert.Nil(t, Fields(errors.New("boom")))
}
