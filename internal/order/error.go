package order

import (
	"errors"
)

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidDraft         = errors.New("draft is incomplete")
	ErrMissingToken         = errors.New("auth token is required to submit")
	ErrTokenExpired         = errors.New("auth token has expired")
	ErrSubmissionInProgress = errors.New("submission in progress")
	ErrDraftClosed          = errors.New("draft already submitted")
	ErrSessionNotFound      = errors.New("composition session not found")
)

// SubmissionError is returned by Submit. Message is safe to show to the
// operator; Fields is set when the draft failed validation. Every
// SubmissionError leaves the draft intact for correction and resubmission.
type SubmissionError struct {
	Message string
	Fields  ValidationErrors
	Err     error
}

func (e *SubmissionError) Error() string {
	return "submit sale: " + e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
