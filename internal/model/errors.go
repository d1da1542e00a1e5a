package model

import (
	"errors"
	"fmt"
)

// Kind classifies a fiscal error.
type Kind string

const (
	// KindValidation: caller input rejected before any network call.
	KindValidation Kind = "validation"
	// KindAuthentication: signing or WSAA exchange failure.
	KindAuthentication Kind = "authentication"
	// KindNetwork: transport-level failure (timeout, reset, unusable response).
	KindNetwork Kind = "network"
	// KindRemote: the service accepted the call but rejected it semantically.
	KindRemote Kind = "remote"
)

// Error is the base fiscal error. Every failure surfaced by the library
// carries a stable Kind, a human-readable Message, and optionally the
// remote Code, a remediation Hint and a Details payload.
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Hint    string
	Details map[string]interface{}
	Cause   error
}

func (e *Error) Error() string {
	switch {
	case e.Code != 0 && e.Cause != nil:
		return fmt.Sprintf("[%s] %d: %s (%v)", e.Kind, e.Code, e.Message, e.Cause)
	case e.Code != 0:
		return fmt.Sprintf("[%s] %d: %s", e.Kind, e.Code, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("[%s] %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error for a named field.
func NewValidationError(field, message string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: fmt.Sprintf("%s: %s", field, message),
		Details: map[string]interface{}{"field": field},
	}
}

// NewAuthError creates an authentication error.
func NewAuthError(message string, cause error) *Error {
	return &Error{Kind: KindAuthentication, Message: message, Cause: cause}
}

// NewNetworkError creates a transport-level error.
func NewNetworkError(message string, cause error) *Error {
	return &Error{Kind: KindNetwork, Message: message, Cause: cause}
}

// NewRemoteError creates a semantic rejection carrying the remote's
// native code and message. hint may be empty for unknown codes.
func NewRemoteError(code int, message, hint string) *Error {
	return &Error{Kind: KindRemote, Code: code, Message: message, Hint: hint}
}

// KindOf returns the Kind of err, or empty when err is not a fiscal error.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsAuthentication reports whether err is an authentication error.
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// IsNetwork reports whether err is a network error.
func IsNetwork(err error) bool { return KindOf(err) == KindNetwork }

// IsRemote reports whether err is a remote semantic rejection.
func IsRemote(err error) bool { return KindOf(err) == KindRemote }
