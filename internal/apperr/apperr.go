// Package apperr defines the typed error taxonomy shared across the HTTP
// API and the worker pipeline: Validation, NotFound, TransientInfra,
// CircuitOpen, PolicyViolation, and Fatal. Call sites construct one of
// these instead of returning a bare error so callers (the gin middleware
// here, the orchestrator's apology fallback) can branch on Kind without
// string-matching messages.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error for status-code/handling purposes.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindNotFound        Kind = "not_found"
	KindTransientInfra  Kind = "transient_infra"
	KindCircuitOpen     Kind = "circuit_open"
	KindPolicyViolation Kind = "policy_violation"
	KindFatal           Kind = "fatal"
)

// Error is a typed application error carrying a Kind and an optional
// wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of kind around cause, annotated with message.
func Wrap(kind Kind, cause error, message string) error {
	if cause == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, Cause: errors.WithMessage(cause, message)}
}

// Validation reports a request the caller must fix before retrying.
func Validation(message string) error {
	return New(KindValidation, message)
}

// NotFound reports that the requested resource does not exist.
func NotFound(message string) error {
	return New(KindNotFound, message)
}

// TransientInfra wraps an infrastructure failure expected to clear on retry.
func TransientInfra(cause error, message string) error {
	return Wrap(KindTransientInfra, cause, message)
}

// CircuitOpen reports that a downstream circuit breaker is open.
func CircuitOpen(message string) error {
	return New(KindCircuitOpen, message)
}

// PolicyViolation reports that moderation or business rules rejected the request.
func PolicyViolation(message string) error {
	return New(KindPolicyViolation, message)
}

// Fatal wraps an unexpected internal failure with no recovery path.
func Fatal(cause error, message string) error {
	return Wrap(KindFatal, cause, message)
}

// KindOf extracts err's Kind, defaulting to KindFatal for errors not
// constructed through this package.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindFatal
}
