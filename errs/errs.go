// Package errs provides structured error types shared across the trade panel.
package errs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Code identifies a panel error category.
type Code string

const (
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
	// CodeAuth indicates a missing, expired, or rejected session token.
	CodeAuth Code = "auth"
	// CodeNetwork indicates a transport failure reaching the backend.
	CodeNetwork Code = "network"
	// CodeBackend indicates the backend answered with a failure status.
	CodeBackend Code = "backend_error"
	// CodeNotFound indicates a missing resource.
	CodeNotFound Code = "not_found"
	// CodeUnavailable indicates the operation cannot run right now.
	CodeUnavailable Code = "unavailable"
)

// E captures structured error information produced across the panel stack.
type E struct {
	Op      string
	Code    Code
	HTTP    int
	Message string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the operation and error code.
func New(op string, code Code, opts ...Option) *E {
	e := &E{
		Op:      strings.TrimSpace(op),
		Code:    code,
		HTTP:    0,
		Message: "",
		cause:   nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	op := strings.TrimSpace(e.Op)
	if op == "" {
		op = "unknown"
	}
	parts = append(parts, "op="+op)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.HTTP > 0 {
		parts = append(parts, "http="+strconv.Itoa(e.HTTP))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// CodeOf extracts the panel error code from err, or empty when err carries none.
func CodeOf(err error) Code {
	var e *E
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return ""
}

// IsAuth reports whether err is a session/authentication failure.
func IsAuth(err error) bool { return CodeOf(err) == CodeAuth }

// IsValidation reports whether err is a caller input error.
func IsValidation(err error) bool { return CodeOf(err) == CodeInvalid }

// FromStatus maps an HTTP response status to the panel error taxonomy.
func FromStatus(op string, status int, body string) *E {
	code := CodeBackend
	switch {
	case status == http.StatusUnauthorized:
		code = CodeAuth
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusBadRequest:
		code = CodeInvalid
	case status >= 500:
		code = CodeUnavailable
	}
	return New(op, code, WithHTTP(status), WithMessage(body))
}
