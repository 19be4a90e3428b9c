// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages, so commands can decide how to present a failure
// (re-prompt for credentials, point at the subscription offer, show a network hint)
// without string matching.
//
// The package supports wrapping underlying errors while maintaining error kind information.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// AuthRejected indicates the backend refused credentials or a sign-up request.
	AuthRejected Kind = "auth_rejected"
	// AuthTransport indicates the auth backend could not be reached.
	AuthTransport Kind = "auth_transport"
	// EntitlementCheck indicates the subscription check failed. It is never
	// surfaced to callers; the resolver logs it and degrades to not-entitled.
	EntitlementCheck Kind = "entitlement_check"
	// PaymentFailed indicates the payment function rejected or failed a payment.
	PaymentFailed Kind = "payment_failed"
	// BackendUnavailable indicates a non-auth backend call failed in transport or with 5xx.
	BackendUnavailable Kind = "backend_unavailable"
	// NotFound indicates the requested row does not exist or is not visible.
	NotFound Kind = "not_found"
	// Unauthorized indicates a call was made without a usable session.
	Unauthorized Kind = "unauthorized"
	// InvalidRequest indicates the backend rejected the request as malformed.
	InvalidRequest Kind = "invalid_request"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// AuthError builds an auth error. Transport failures carry the underlying cause.
func AuthError(msg string, cause error) *E {
	if cause != nil {
		return Wrap(AuthTransport, msg, cause)
	}
	return New(AuthRejected, msg)
}

// KindOf returns the kind of the first *E in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsAuth reports whether err is an AuthError (rejected or transport).
func IsAuth(err error) bool {
	k := KindOf(err)
	return k == AuthRejected || k == AuthTransport
}

// MessageOf returns the human-friendly message of err, falling back to err.Error().
func MessageOf(err error) string {
	var e *E
	if stderrors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
