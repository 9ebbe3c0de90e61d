package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rx-vendas/internal/entity"
	"rx-vendas/internal/logger"
	"rx-vendas/internal/transport"

	"go.uber.org/zap"
)

const (
	pathCustomers  = "/pegar_clientes"
	pathEmployees  = "/pegar_funcionarios"
	pathProducts   = "/pegar_produtos"
	pathCreateSale = "/cadastrar_venda"
	pathListSales  = "/pegar_vendas"
	pathDeleteSale = "/deletar_venda"
	pathSale       = "/vendas/"
)

// Client talks to the dealer REST backend on behalf of the operator whose
// bearer token travels in the request context.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ----------------- Constructor -----------------

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		logger.L().Warn("backend base URL is empty")
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ----------------- Listings -----------------

func (c *Client) ListCustomers(ctx context.Context, params ListParams) (*CustomerPage, error) {
	var page CustomerPage
	if err := c.do(ctx, http.MethodPost, pathCustomers, normalizePage(params), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListEmployees(ctx context.Context, params ListParams) (*EmployeePage, error) {
	var page EmployeePage
	if err := c.do(ctx, http.MethodPost, pathEmployees, normalizePage(params), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) ListProducts(ctx context.Context, params ListParams) (*ProductPage, error) {
	var page ProductPage
	if err := c.do(ctx, http.MethodPost, pathProducts, normalizePage(params), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Find returns the first listing page for kind filtered by name, in backend order.
func (c *Client) Find(ctx context.Context, kind entity.Kind, name string) ([]entity.Reference, error) {
	params := ListParams{Page: 1, Name: name}

	switch kind {
	case entity.KindCustomer:
		page, err := c.ListCustomers(ctx, params)
		if err != nil {
			return nil, err
		}
		refs := make([]entity.Reference, 0, len(page.Customers))
		for _, cu := range page.Customers {
			refs = append(refs, entity.Reference{Kind: kind, ID: cu.ID, Name: cu.Name})
		}
		return refs, nil

	case entity.KindEmployee:
		page, err := c.ListEmployees(ctx, params)
		if err != nil {
			return nil, err
		}
		refs := make([]entity.Reference, 0, len(page.Employees))
		for _, e := range page.Employees {
			refs = append(refs, entity.Reference{Kind: kind, ID: e.ID, Name: e.Name})
		}
		return refs, nil

	case entity.KindProduct:
		page, err := c.ListProducts(ctx, params)
		if err != nil {
			return nil, err
		}
		refs := make([]entity.Reference, 0, len(page.Products))
		for _, p := range page.Products {
			refs = append(refs, entity.Reference{
				Kind:      kind,
				ID:        p.ID,
				Name:      p.Name,
				Price:     p.Price,
				Available: p.Available,
			})
		}
		return refs, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// ----------------- Sales -----------------

func (c *Client) CreateSale(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	var sale Sale
	if err := c.do(ctx, http.MethodPost, pathCreateSale, req, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (c *Client) ListSales(ctx context.Context, params SalesParams) (*SalePage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	var page SalePage
	if err := c.do(ctx, http.MethodPost, pathListSales, params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetSale(ctx context.Context, id string) (*Sale, error) {
	if id == "" {
		return nil, ErrInvalidSaleID
	}
	var env saleEnvelope
	if err := c.do(ctx, http.MethodGet, pathSale+url.PathEscape(id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Sale, nil
}

func (c *Client) DeleteSale(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidSaleID
	}
	return c.do(ctx, http.MethodPost, pathDeleteSale, deleteSaleRequest{SaleID: id}, nil)
}

// ----------------- Transport -----------------

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	log := logger.FromCtx(ctx).With(
		zap.String("method", method),
		zap.String("endpoint", path),
	)

	token, ok := transport.TokenFrom(ctx)
	if !ok {
		log.Warn("Refusing backend call without auth token")
		return ErrMissingToken
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			log.Error("Failed to marshal backend request", zap.Error(err))
			return err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		log.Error("Failed creating request", zap.Error(err))
		return err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reqID := logger.RequestIDFrom(ctx); reqID != "" {
		req.Header.Set("X-Request-ID", reqID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Backend request failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error("Failed to read response body", zap.Error(err))
		return fmt.Errorf("%w: read %s response: %w", ErrConnectivity, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    extractMessage(bodyBytes),
			Endpoint:   path,
		}
		log.Error("Backend returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(bodyBytes)) == 0 {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, out); err != nil {
		log.Error("Failed decoding backend response", zap.Error(err), zap.ByteString("response", bodyBytes))
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	log.Debug("Backend call succeeded", zap.Int("status", resp.StatusCode))
	return nil
}

func extractMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

func normalizePage(p ListParams) ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}
