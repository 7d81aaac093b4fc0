// Package domainerrors defines coded errors that cross service boundaries.
//
// Services return these so the HTTP layer can translate them into status
// codes without inspecting error strings. A store outage must never be
// indistinguishable from a policy denial, so CodeUnavailable and CodeInternal
// are kept separate from CodeForbidden.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the class of a domain error.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnavailable        Code = "unavailable"
	CodeInternal           Code = "internal"
	CodeInvariantViolation Code = "invariant_violation"
)

// Error carries a code, a human-readable message, and optional structured
// details for the HTTP error envelope.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. If err is already
// a domain error its code is preserved and only context is added.
func Wrap(err error, code Code, message string) *Error {
	var de *Error
	if errors.As(err, &de) {
		return &Error{Code: de.Code, Message: message, Details: de.Details, cause: err}
	}
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetail returns a copy of the error carrying an extra detail field.
func (e *Error) WithDetail(key string, value any) *Error {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// HasCode reports whether err is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	return errors.As(err, &de) && de.Code == code
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code to an HTTP status code. Unknown codes
// fail closed to 500.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		// Unavailable, internal, and invariant violations are all surfaced
		// as plain server errors; the distinction lives in logs and
		// metrics, not in the status code.
		return http.StatusInternalServerError
	}
}
