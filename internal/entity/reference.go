// Package entity holds the lightweight references the sales desk passes
// between lookup, ledger and order submission.
package entity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownKind = errors.New("unknown entity kind")

type Kind string

const (
	KindCustomer Kind = "customer"
	KindEmployee Kind = "employee"
	KindProduct  Kind = "product"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCustomer, KindEmployee, KindProduct:
		return k, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// Reference identifies a customer, employee or product resolved through lookup.
// Price and Available are only meaningful for KindProduct and hold the values
// known when the reference was fetched.
type Reference struct {
	Kind      Kind            `json:"kind"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available int             `json:"available"`
}

func (r Reference) IsZero() bool {
	return r.ID == ""
}
