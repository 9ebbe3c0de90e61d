package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"rx-vendas/internal/backend"
	"rx-vendas/internal/cart"
	"rx-vendas/internal/entity"
	"rx-vendas/internal/logger"
	"rx-vendas/internal/lookup"
	"rx-vendas/internal/metrics"
	"rx-vendas/internal/middleware"
	"rx-vendas/internal/order"
	"rx-vendas/internal/utils"
	"rx-vendas/internal/validator"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errNotSuggested       = errors.New("selection is not among the current suggestions")
	errLookupUnavailable  = errors.New("lookup is not available for this session")
	errInvalidRequestBody = errors.New("invalid request body")
)

// SalesBackend is the part of the backend client used for persisted sales.
type SalesBackend interface {
	ListSales(ctx context.Context, params backend.SalesParams) (*backend.SalePage, error)
	GetSale(ctx context.Context, id string) (*backend.Sale, error)
	DeleteSale(ctx context.Context, id string) error
}

type Handler struct {
	sessions *order.SessionStore
	search   lookup.Searcher
	sales    SalesBackend
	validate *validator.Validator

	lookupStats *metrics.Lookup
	submitStats *metrics.Submission
}

type Deps struct {
	Sessions    *order.SessionStore
	Search      lookup.Searcher
	Sales       SalesBackend
	LookupStats *metrics.Lookup
	SubmitStats *metrics.Submission
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		sessions:    d.Sessions,
		search:      d.Search,
		sales:       d.Sales,
		validate:    validator.New(),
		lookupStats: d.LookupStats,
		submitStats: d.SubmitStats,
	}
	if h.lookupStats == nil {
		h.lookupStats = &metrics.Lookup{}
	}
	if h.submitStats == nil {
		h.submitStats = &metrics.Submission{}
	}
	return h
}

// RegisterRoutes registers the desk endpoints on the given Chi router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/debug/stats", h.Stats)
	r.Get("/lookup/{kind}", h.Lookup)

	r.Route("/drafts", func(r chi.Router) {
		r.Post("/", h.CreateDraft)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetDraft)
			r.Delete("/", h.CancelDraft)
			r.Put("/customer", h.SetCustomer)
			r.Put("/employee", h.SetEmployee)
			r.Put("/payment", h.SetPayment)
			r.Put("/discount", h.SetDiscount)
			r.Post("/lines", h.AddLine)
			r.Patch("/lines/{index}", h.UpdateLine)
			r.Delete("/lines/{index}", h.RemoveLine)
			r.Post("/suggest/{kind}", h.Suggest)
			r.Get("/suggestions/{kind}", h.Suggestions)
			r.Get("/validate", h.ValidateDraft)
			r.Post("/submit", h.Submit)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken)
		r.Get("/sales", h.ListSales)
		r.Get("/sales/{id}", h.GetSale)
		r.Delete("/sales/{id}", h.DeleteSale)
	})
}

// ----------------- Drafts -----------------

func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	logger.FromCtx(r.Context()).Info("composition session opened", zap.String("session_id", sess.ID.String()))
	utils.WriteJSON(w, http.StatusCreated, toDraftView(sess))
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, toDraftView(sess))
}

// CancelDraft discards the draft; nothing reaches the backend.
func (h *Handler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if sess.Engine.State() == order.StateSubmitting {
		h.writeError(w, r, order.ErrSubmissionInProgress)
		return
	}
	h.sessions.Discard(sess.ID)
	logger.FromCtx(r.Context()).Info("composition session cancelled", zap.String("session_id", sess.ID.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetCustomer(w http.ResponseWriter, r *http.Request) {
	h.setReference(w, r, entity.KindCustomer, func(e *order.Engine, ref entity.Reference) error {
		return e.SetCustomer(ref)
	})
}

func (h *Handler) SetEmployee(w http.ResponseWriter, r *http.Request) {
	h.setReference(w, r, entity.KindEmployee, func(e *order.Engine, ref entity.Reference) error {
		return e.SetEmployee(ref)
	})
}

func (h *Handler) setReference(w http.ResponseWriter, r *http.Request, kind entity.Kind, set func(*order.Engine, entity.Reference) error) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req referenceRequest
	if !h.decode(w, r, &req) {
		return
	}

	ref := entity.Reference{Kind: kind, ID: req.ID, Name: req.Name}
	if req.Name == "" {
		var err error
		if ref, err = selectSuggestion(sess, kind, req.ID); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	h.respond(w, r, sess, set(sess.Engine, ref))
}

func (h *Handler) SetPayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req paymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	method, err := order.ParsePaymentMethod(req.Method)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respond(w, r, sess, sess.Engine.SetPaymentMethod(method))
}

func (h *Handler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req discountRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, sess, sess.Engine.SetDiscount(req.Percent))
}

func (h *Handler) AddLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	var product entity.Reference
	if req.Product != nil {
		product = req.Product.toReference()
	} else {
		var err error
		if product, err = selectSuggestion(sess, entity.KindProduct, req.ProductID); err != nil {
			h.writeError(w, r, err)
			return
		}
	}

	h.respond(w, r, sess, sess.Engine.AddLine(product, req.Quantity))
}

func (h *Handler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := utils.ParseIndex(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.respond(w, r, sess, sess.Engine.UpdateQuantity(index, req.Quantity))
}

// RemoveLine ignores an index past the end, like the ledger does.
func (h *Handler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	index, err := utils.ParseIndex(chi.URLParam(r, "index"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	_, err = sess.Engine.RemoveLine(index)
	h.respond(w, r, sess, err)
}

func (h *Handler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	err := sess.Engine.Validate()
	if err == nil {
		utils.WriteJSON(w, http.StatusOK, validationView{Valid: true})
		return
	}

	var fields order.ValidationErrors
	if !errors.As(err, &fields) {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, validationView{Valid: false, Errors: fields})
}

// Submit sends the draft once. On success the session is closed; on failure
// the draft stays as it was for correction.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	ctx := logger.WithSessionID(r.Context(), sess.ID.String())
	orderID, err := sess.Engine.Submit(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.sessions.Discard(sess.ID)
	utils.WriteJSON(w, http.StatusCreated, submitView{OrderID: orderID})
}

// ----------------- Suggestions -----------------

// Suggest feeds a keystroke into the session's debounced search and returns
// the suggestions currently shown; fresh ones arrive after the quiet period.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	kind, sg, err := suggester(sess, chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req suggestRequest
	if !h.decode(w, r, &req) {
		return
	}

	sg.Type(r.Context(), req.Query)
	utils.WriteJSON(w, http.StatusAccepted, suggestionsView{Kind: kind, Suggestions: nonNil(sg.Suggestions())})
}

func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	kind, sg, err := suggester(sess, chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, suggestionsView{Kind: kind, Suggestions: nonNil(sg.Suggestions())})
}

// Lookup runs one search immediately, without debounce.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	kind, err := entity.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	refs := h.search.Search(r.Context(), kind, r.URL.Query().Get("q"))
	utils.WriteJSON(w, http.StatusOK, suggestionsView{Kind: kind, Suggestions: nonNil(refs)})
}

// ----------------- Sales -----------------

func (h *Handler) ListSales(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.sales.ListSales(r.Context(), backend.SalesParams{
		Page:       utils.ParsePage(q.Get("page")),
		CustomerID: q.Get("customerId"),
		EmployeeID: q.Get("employeeId"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sales := page.Sales
	if sales == nil {
		sales = []backend.Sale{}
	}
	utils.WriteJSON(w, http.StatusOK, salesView{Pagination: page.Pagination, Sales: sales})
}

func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.sales.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, sale)
}

func (h *Handler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sales.DeleteSale(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	logger.FromCtx(r.Context()).Info("sale deleted", zap.String("sale_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// ----------------- Debug -----------------

type statsView struct {
	metrics.Snapshot
	Sessions int `json:"sessions"`
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, statsView{
		Snapshot: metrics.Take(h.lookupStats, h.submitStats),
		Sessions: h.sessions.Len(),
	})
}

// ----------------- Helpers -----------------

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*order.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, order.ErrSessionNotFound)
		return nil, false
	}

	sess, err := h.sessions.Get(id)
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return sess, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, r, errInvalidRequestBody)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, errorResponse{
			Error:  errInvalidRequestBody.Error(),
			Fields: validator.Fields(err),
		})
		return false
	}
	return true
}

// respond writes the updated draft, or the mutation error.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, sess *order.Session, err error) {
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toDraftView(sess))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	log := logger.FromCtx(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	utils.WriteJSON(w, status, body)
}

func classify(err error) (int, errorResponse) {
	var subErr *order.SubmissionError
	if errors.As(err, &subErr) {
		body := errorResponse{Error: subErr.Message, Fields: toFieldErrors(subErr.Fields)}
		switch {
		case len(subErr.Fields) > 0:
			return http.StatusBadRequest, body
		case errors.Is(err, order.ErrMissingToken), errors.Is(err, order.ErrTokenExpired):
			return http.StatusUnauthorized, body
		}
		return http.StatusBadGateway, body
	}

	var fields order.ValidationErrors
	if errors.As(err, &fields) {
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Fields: toFieldErrors(fields)}
	}

	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusBadGateway
		if apiErr.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
		return status, errorResponse{Error: backend.UserMessage(err, "backend request failed")}
	}

	switch {
	case errors.Is(err, order.ErrSessionNotFound), errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, order.ErrSubmissionInProgress), errors.Is(err, order.ErrDraftClosed):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.Is(err, cart.ErrInsufficientStock):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error()}
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrInvalidProduct),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, entity.ErrUnknownKind),
		errors.Is(err, utils.ErrInvalidIndex),
		errors.Is(err, backend.ErrInvalidSaleID),
		errors.Is(err, errNotSuggested),
		errors.Is(err, errInvalidRequestBody):
		return http.StatusBadRequest, errorResponse{Error: err.Error()}
	case errors.Is(err, errLookupUnavailable):
		return http.StatusNotFound, errorResponse{Error: err.Error()}
	case errors.Is(err, backend.ErrMissingToken):
		return http.StatusUnauthorized, errorResponse{Error: err.Error()}
	case errors.Is(err, backend.ErrConnectivity):
		return http.StatusBadGateway, errorResponse{Error: backend.ErrConnectivity.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

func toFieldErrors(fields order.ValidationErrors) []validator.FieldError {
	if len(fields) == 0 {
		return nil
	}
	out := make([]validator.FieldError, 0, len(fields))
	for _, f := range fields {
		out = append(out, validator.FieldError{Field: f.Field, Message: f.Message})
	}
	return out
}

func suggester(sess *order.Session, rawKind string) (entity.Kind, *lookup.Suggester, error) {
	kind, err := entity.ParseKind(rawKind)
	if err != nil {
		return "", nil, err
	}
	sg := sess.Suggester(kind)
	if sg == nil {
		return "", nil, errLookupUnavailable
	}
	return kind, sg, nil
}

func selectSuggestion(sess *order.Session, kind entity.Kind, id string) (entity.Reference, error) {
	sg := sess.Suggester(kind)
	if sg == nil {
		return entity.Reference{}, errLookupUnavailable
	}
	ref, ok := sg.Select(id)
	if !ok {
		return entity.Reference{}, errNotSuggested
	}
	return ref, nil
}

func nonNil(refs []entity.Reference) []entity.Reference {
	if refs == nil {
		return []entity.Reference{}
	}
	return refs
}
