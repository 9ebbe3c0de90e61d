package order

import (
	"fmt"
	"strings"

	"rx-vendas/internal/cart"
	"rx-vendas/internal/entity"

	"github.com/shopspring/decimal"
)

// PaymentMethod values are the literals the backend accepts.
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "CREDITO"
	PaymentDebit  PaymentMethod = "DEBITO"
	PaymentCash   PaymentMethod = "DINHEIRO"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCredit, PaymentDebit, PaymentCash:
		return true
	}
	return false
}

// ParsePaymentMethod accepts the backend literals and their English names.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CREDITO", "CREDIT":
		return PaymentCredit, nil
	case "DEBITO", "DEBIT":
		return PaymentDebit, nil
	case "DINHEIRO", "CASH":
		return PaymentCash, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
}

type State string

const (
	StateEmpty      State = "EMPTY"
	StateDrafting   State = "DRAFTING"
	StateSubmitting State = "SUBMITTING"
	StateSubmitted  State = "SUBMITTED"
	// StateFailed is entered only for the transition out of a failed
	// submission; the draft is back in StateDrafting before the lock is
	// released and the failure is reported through Engine.LastError.
	StateFailed State = "FAILED"
)

// Draft is the unsubmitted sale. It lives only in memory.
type Draft struct {
	Customer        entity.Reference
	Employee        entity.Reference
	PaymentMethod   PaymentMethod
	DiscountPercent decimal.Decimal
	Ledger          *cart.Ledger
}

// NewDraft returns an empty draft paid by credit with no discount, the
// defaults the sales form opens with.
func NewDraft() *Draft {
	return &Draft{
		PaymentMethod:   PaymentCredit,
		DiscountPercent: decimal.Zero,
		Ledger:          cart.NewLedger(),
	}
}

func (d *Draft) Lines() []cart.Line {
	if d.Ledger == nil {
		return nil
	}
	return d.Ledger.Lines()
}

// Clone returns a deep copy; mutating it never affects d.
func (d *Draft) Clone() *Draft {
	c := *d
	if d.Ledger != nil {
		c.Ledger = d.Ledger.Clone()
	} else {
		c.Ledger = cart.NewLedger()
	}
	return &c
}
