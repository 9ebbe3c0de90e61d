package api

import (
	"rx-vendas/internal/backend"
	"rx-vendas/internal/entity"
	"rx-vendas/internal/order"
	"rx-vendas/internal/validator"

	"github.com/shopspring/decimal"
)

// --- Requests ---

// referenceRequest picks a customer or employee. With only ID set, the
// reference is resolved from the session's current suggestions.
type referenceRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name"`
}

type paymentRequest struct {
	Method string `json:"method" validate:"required"`
}

type discountRequest struct {
	Percent decimal.Decimal `json:"percent"`
}

type productRequest struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Available int             `json:"available" validate:"gte=0"`
}

// addLineRequest adds a product either fully described or, with only
// ProductID, taken from the session's product suggestions.
type addLineRequest struct {
	ProductID string          `json:"productId" validate:"required_without=Product"`
	Product   *productRequest `json:"product" validate:"omitempty"`
	Quantity  int             `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type suggestRequest struct {
	Query string `json:"query"`
}

// --- Responses ---

type referenceView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type lineView struct {
	Index     int    `json:"index"`
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Available int    `json:"available"`
	Subtotal  string `json:"subtotal"`
}

type totalsView struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

type errorView struct {
	Message string                 `json:"message"`
	Fields  order.ValidationErrors `json:"fields,omitempty"`
}

type draftView struct {
	ID              string         `json:"id"`
	State           order.State    `json:"state"`
	Customer        *referenceView `json:"customer"`
	Employee        *referenceView `json:"employee"`
	PaymentMethod   string         `json:"paymentMethod"`
	DiscountPercent string         `json:"discountPercent"`
	Lines           []lineView     `json:"lines"`
	Totals          totalsView     `json:"totals"`
	OrderID         string         `json:"orderId,omitempty"`
	LastError       *errorView     `json:"lastError,omitempty"`
}

type validationView struct {
	Valid  bool                   `json:"valid"`
	Errors order.ValidationErrors `json:"errors,omitempty"`
}

type submitView struct {
	OrderID string `json:"orderId"`
}

type suggestionsView struct {
	Kind        entity.Kind        `json:"kind"`
	Suggestions []entity.Reference `json:"suggestions"`
}

type salesView struct {
	backend.Pagination
	Sales []backend.Sale `json:"sales"`
}

type errorResponse struct {
	Error  string                 `json:"error"`
	Fields []validator.FieldError `json:"fields,omitempty"`
}

// --- Mapping ---

func toReferenceView(ref entity.Reference) *referenceView {
	if ref.IsZero() {
		return nil
	}
	return &referenceView{ID: ref.ID, Name: ref.Name}
}

func toDraftView(sess *order.Session) draftView {
	snap := sess.Engine.Snapshot()
	draft, totals := snap.Draft, snap.Totals

	lines := make([]lineView, 0, draft.Ledger.Len())
	for i, l := range draft.Lines() {
		lines = append(lines, lineView{
			Index:     i,
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.UnitPrice.StringFixed(2),
			Quantity:  l.Quantity,
			Available: l.Available,
			Subtotal:  l.Subtotal().StringFixed(2),
		})
	}

	view := draftView{
		ID:              sess.ID.String(),
		State:           snap.State,
		Customer:        toReferenceView(draft.Customer),
		Employee:        toReferenceView(draft.Employee),
		PaymentMethod:   string(draft.PaymentMethod),
		DiscountPercent: draft.DiscountPercent.String(),
		Lines:           lines,
		Totals: totalsView{
			Subtotal: totals.Subtotal.StringFixed(2),
			Discount: totals.Discount.StringFixed(2),
			Total:    totals.Total.StringFixed(2),
		},
		OrderID: snap.OrderID,
	}

	if last := snap.LastError; last != nil {
		view.LastError = &errorView{Message: last.Message, Fields: last.Fields}
	}
	return view
}

func (p productRequest) toReference() entity.Reference {
	return entity.Reference{
		Kind:      entity.KindProduct,
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Available: p.Available,
	}
}
