package backend

import (
	"errors"
	"fmt"

	"rx-vendas/internal/entity"
)

var (
	ErrMissingToken  = errors.New("no auth token found")
	ErrConnectivity  = errors.New("failed to connect to server")
	ErrUnknownKind   = entity.ErrUnknownKind
	ErrInvalidSaleID = errors.New("sale id is required")
)

// APIError is a non-2xx answer from the backend. Message carries the body's
// "message" field when the backend sent one.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s returned %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend %s returned %d", e.Endpoint, e.StatusCode)
}

// UserMessage turns err into operator-facing text: the backend message when
// present, fallback for other backend rejections, a connectivity message
// otherwise.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if errors.Is(err, ErrMissingToken) {
		return ErrMissingToken.Error()
	}
	return ErrConnectivity.Error()
}
