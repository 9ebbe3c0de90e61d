package order

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"rx-vendas/internal/auth"
	"rx-vendas/internal/backend"
	"rx-vendas/internal/entity"
	"rx-vendas/internal/logger"
	"rx-vendas/internal/metrics"
	"rx-vendas/internal/transport"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const genericSubmitMessage = "failed to register sale"

// SaleCreator is the backend order-creation endpoint.
type SaleCreator interface {
	CreateSale(ctx context.Context, req backend.CreateSaleRequest) (*backend.Sale, error)
}

// Engine owns one draft through EMPTY → DRAFTING → SUBMITTING →
// {SUBMITTED, FAILED}; FAILED falls back to DRAFTING with the draft intact.
// Submission is at most once per call and never retried.
type Engine struct {
	sales SaleCreator
	rules Rules
	stats *metrics.Submission
	now   func() time.Time

	mu      sync.Mutex
	state   State
	draft   *Draft
	orderID string
	lastErr *SubmissionError
}

type EngineOption func(*Engine)

func WithRules(r Rules) EngineOption {
	return func(e *Engine) { e.rules = r }
}

func WithStats(s *metrics.Submission) EngineOption {
	return func(e *Engine) { e.stats = s }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(sales SaleCreator, opts ...EngineOption) *Engine {
	e := &Engine{
		sales: sales,
		rules: DefaultRules,
		stats: &metrics.Submission{},
		now:   time.Now,
		state: StateEmpty,
		draft: NewDraft(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ----------------- Mutations -----------------

func (e *Engine) SetCustomer(ref entity.Reference) error {
	return e.mutate(func(d *Draft) error {
		d.Customer = ref
		return nil
	})
}

func (e *Engine) SetEmployee(ref entity.Reference) error {
	return e.mutate(func(d *Draft) error {
		d.Employee = ref
		return nil
	})
}

func (e *Engine) SetPaymentMethod(m PaymentMethod) error {
	if !m.Valid() {
		return ErrInvalidPaymentMethod
	}
	return e.mutate(func(d *Draft) error {
		d.PaymentMethod = m
		return nil
	})
}

// SetDiscount stores the percentage as given; range checks happen in Validate.
func (e *Engine) SetDiscount(percent decimal.Decimal) error {
	return e.mutate(func(d *Draft) error {
		d.DiscountPercent = percent
		return nil
	})
}

func (e *Engine) AddLine(product entity.Reference, quantity int) error {
	return e.mutate(func(d *Draft) error {
		return d.Ledger.AddLine(product, quantity)
	})
}

func (e *Engine) RemoveLine(index int) (bool, error) {
	var removed bool
	err := e.mutate(func(d *Draft) error {
		removed = d.Ledger.RemoveLine(index)
		return nil
	})
	return removed, err
}

func (e *Engine) UpdateQuantity(index, quantity int) error {
	return e.mutate(func(d *Draft) error {
		return d.Ledger.UpdateQuantity(index, quantity)
	})
}

func (e *Engine) mutate(fn func(d *Draft) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateSubmitting:
		return ErrSubmissionInProgress
	case StateSubmitted:
		return ErrDraftClosed
	}

	if err := fn(e.draft); err != nil {
		return err
	}
	if e.state == StateEmpty {
		e.state = StateDrafting
	}
	return nil
}

// ----------------- Reads -----------------

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Draft returns a copy of the current draft.
func (e *Engine) Draft() *Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

func (e *Engine) Totals() Totals {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ComputeTotals(e.draft)
}

func (e *Engine) Validate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.Validate(e.draft)
}

// OrderID is the backend id once the draft is SUBMITTED.
func (e *Engine) OrderID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orderID
}

// LastError is the most recent failed submission, if any.
func (e *Engine) LastError() *SubmissionError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Snapshot is a consistent view of the engine taken under a single lock.
type Snapshot struct {
	State     State
	Draft     *Draft
	Totals    Totals
	OrderID   string
	LastError *SubmissionError
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	draft := e.draft.Clone()
	return Snapshot{
		State:     e.state,
		Draft:     draft,
		Totals:    ComputeTotals(draft),
		OrderID:   e.orderID,
		LastError: e.lastErr,
	}
}

// ----------------- Submission -----------------

// Submit re-validates the draft, then sends it to the backend once. The lock
// is not held during the network call; concurrent mutations are refused
// until it returns.
func (e *Engine) Submit(ctx context.Context) (string, error) {
	log := logger.FromCtx(ctx)

	e.mu.Lock()
	switch e.state {
	case StateSubmitting:
		e.mu.Unlock()
		return "", ErrSubmissionInProgress
	case StateSubmitted:
		e.mu.Unlock()
		return "", ErrDraftClosed
	}

	if subErr := e.precheck(ctx); subErr != nil {
		e.lastErr = subErr
		e.mu.Unlock()
		e.stats.Rejected.Inc()
		log.Warn("sale submission refused", zap.String("reason", subErr.Message))
		return "", subErr
	}

	req := buildRequest(e.draft)
	e.setState(log, StateSubmitting)
	e.mu.Unlock()

	e.stats.Attempts.Inc()
	timer := metrics.StartTimer()
	log.Info("submitting sale",
		zap.String("customer_id", req.CustomerID),
		zap.String("employee_id", req.EmployeeID),
		zap.Int("items", len(req.Items)),
	)

	sale, err := e.sales.CreateSale(ctx, req)
	e.stats.Observe(timer)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		// FAILED is transient: the draft goes straight back to DRAFTING.
		e.setState(log, StateFailed)
		e.setState(log, StateDrafting)
		subErr := &SubmissionError{Message: backend.UserMessage(err, genericSubmitMessage), Err: err}
		e.lastErr = subErr
		e.stats.Failed.Inc()
		log.Error("sale submission failed",
			zap.String("message", subErr.Message),
			zap.Duration("duration", timer.Duration()),
			zap.Error(err),
		)
		return "", subErr
	}

	if sale == nil {
		sale = &backend.Sale{}
	}
	if sale.ID == "" {
		log.Warn("backend accepted the sale without returning an id")
	}

	e.setState(log, StateSubmitted)
	e.orderID = sale.ID
	e.lastErr = nil
	e.stats.Succeeded.Inc()
	log.Info("sale submitted", zap.String("order_id", sale.ID), zap.Duration("duration", timer.Duration()))
	return sale.ID, nil
}

// setState must be called with e.mu held.
func (e *Engine) setState(log *zap.Logger, to State) {
	from := e.state
	e.state = to
	log.Debug("draft state changed", zap.String("from", string(from)), zap.String("to", string(to)))
}

// precheck must be called with e.mu held.
func (e *Engine) precheck(ctx context.Context) *SubmissionError {
	if err := e.rules.Validate(e.draft); err != nil {
		var fields ValidationErrors
		errors.As(err, &fields)
		return &SubmissionError{Message: ErrInvalidDraft.Error(), Fields: fields, Err: ErrInvalidDraft}
	}

	token, ok := transport.TokenFrom(ctx)
	if !ok {
		return &SubmissionError{Message: ErrMissingToken.Error(), Err: ErrMissingToken}
	}
	if auth.TokenExpired(token, e.now()) {
		return &SubmissionError{Message: ErrTokenExpired.Error(), Err: ErrTokenExpired}
	}
	return nil
}

func buildRequest(d *Draft) backend.CreateSaleRequest {
	lines := d.Lines()
	items := make([]backend.SaleItemRequest, 0, len(lines))
	for _, line := range lines {
		items = append(items, backend.SaleItemRequest{
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		})
	}

	return backend.CreateSaleRequest{
		CustomerID:    d.Customer.ID,
		EmployeeID:    d.Employee.ID,
		PaymentMethod: string(d.PaymentMethod),
		Discount:      json.Number(d.DiscountPercent.String()),
		Items:         items,
	}
}
