// Package domainerrors defines coded errors for the admission core.
//
// Services return these so transport can translate them into consistent HTTP
// responses without inspecting error strings. Infrastructure facts (not found,
// conflict) live in pkg/platform/sentinel; this package is for domain outcomes
// the caller must react to.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of a domain error.
type Code string

const (
	CodeInvalidInput Code = "invalid_input"
	CodeBadRequest   Code = "bad_request"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeInternal     Code = "internal_error"

	// Admission workflow codes. Callers must decide how to react to these
	// (retry, show a message, pick another kindergarten), so they fail loudly.
	CodeInvalidTransition    Code = "invalid_transition"
	CodeCapacityExceeded     Code = "capacity_exceeded"
	CodePlacementNotResolved Code = "placement_not_resolved"
	CodeScheduleIncomplete   Code = "schedule_incomplete"
	CodeValidation           Code = "validation_error"
)

// Error is a coded domain error.
type Error struct {
	Code    Code
	Message string
	wrapped error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.wrapped }

// New constructs a coded error.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code Code, message string, err error) error {
	return &Error{Code: code, Message: message, wrapped: err}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so transport never leaks raw failure detail.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
