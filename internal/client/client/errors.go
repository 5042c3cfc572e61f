package client

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrUnavailable  = errors.New("server unavailable")
)

// APIError is a failed round trip. StatusCode is 0 for transport failures.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
	cause      error
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.StatusCode != 0:
		return http.StatusText(e.StatusCode)
	case e.cause != nil:
		return ErrUnavailable.Error() + ": " + e.cause.Error()
	case e.kind != nil:
		return e.kind.Error()
	}
	return "request failed"
}

// Unwrap exposes both the class sentinel and the transport cause.
func (e *APIError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

// NewStatusError classifies a non-2xx response by its status code.
func NewStatusError(status int, message string) *APIError {
	e := &APIError{StatusCode: status, Message: message}
	switch status {
	case http.StatusUnauthorized:
		e.kind = ErrUnauthorized
	case http.StatusNotFound:
		e.kind = ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		e.kind = ErrValidation
	}
	return e
}

func newTransportError(cause error) *APIError {
	return &APIError{kind: ErrUnavailable, cause: cause}
}

// Message returns the server-provided message of err, or "" when err carries
// none.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
