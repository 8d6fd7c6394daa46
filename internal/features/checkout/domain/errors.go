package domain

import (
	"errors"
	"net/http"
)

// Error is a client-facing checkout failure. Two errors are equal for errors.Is
// when they share the same Code, so callers can match against the sentinels
// below while still carrying a request-specific message.
type Error struct {
	// Code is the machine-readable error code returned to the agent.
	Code string
	// Message is the human-readable description.
	Message string
	// Status is the suggested HTTP status code.
	Status int
	// cause is the underlying error, if any.
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Code + ": " + e.Message + ": " + e.cause.Error()
	}
	return e.Code + ": " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is a checkout Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e carrying msg.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Status: e.Status, cause: e.cause}
}

// Wrap returns a copy of e that wraps cause.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Status: e.Status, cause: cause}
}

var (
	ErrUnauthorized         = &Error{Code: "unauthorized", Message: "missing or invalid bearer token", Status: http.StatusUnauthorized}
	ErrInvalidRequest       = &Error{Code: "invalid_request", Message: "request body is not valid", Status: http.StatusBadRequest}
	ErrMissingItems         = &Error{Code: "missing_items", Message: "items must be a non-empty array", Status: http.StatusBadRequest}
	ErrInvalidItemID        = &Error{Code: "invalid_item_id", Message: "product_id must be a positive integer", Status: http.StatusBadRequest}
	ErrProductNotFound      = &Error{Code: "product_not_found", Message: "product not found", Status: http.StatusNotFound}
	ErrInvalidCurrency      = &Error{Code: "invalid_currency", Message: "currency must be a 3-letter ISO 4217 code", Status: http.StatusBadRequest}
	ErrInvalidReturnURL     = &Error{Code: "invalid_return_url", Message: "return_url must be an absolute http(s) URL", Status: http.StatusBadRequest}
	ErrInvalidCustomerEmail = &Error{Code: "invalid_customer_email", Message: "customer email is not valid", Status: http.StatusBadRequest}
	ErrSessionNotFound      = &Error{Code: "session_not_found", Message: "checkout session not found", Status: http.StatusNotFound}
	ErrInvalidSessionState  = &Error{Code: "invalid_session_state", Message: "operation not allowed in the current session status", Status: http.StatusConflict}
	ErrPaymentCaptureFailed = &Error{Code: "payment_capture_failed", Message: "payment capture was rejected", Status: http.StatusBadGateway}
	ErrBackendUnavailable   = &Error{Code: "backend_unavailable", Message: "order backend is unavailable", Status: http.StatusServiceUnavailable}
)
