package api

import (
	"errors"
	"fmt"
)

// Kind classifies a client error. Panels route every failure through this
// taxonomy: validation failures never reach the network, unauthorized and
// backend failures carry a message for the notification sink, and network
// failures carry no partial data.
type Kind int

const (
	// KindValidation means local input validation rejected the operation.
	KindValidation Kind = iota + 1
	// KindUnauthorized means the session credential is missing, expired, or
	// was rejected by the backend.
	KindUnauthorized
	// KindNetwork means the transport failed before a response arrived.
	KindNetwork
	// KindBackend means the backend answered with a non-success status.
	KindBackend
)

// Error is the single error shape surfaced by the client and the panels.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status for backend errors, zero otherwise.
	Status int
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.cause }

// Validation creates a local validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Network wraps a transport failure.
func Network(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: "network request failed", cause: cause}
}

// Backend creates an error for a non-success backend response.
func Backend(status int, message string) *Error {
	return &Error{Kind: KindBackend, Message: message, Status: status}
}

// KindOf returns the Kind of err, or zero if err is not a client Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Message returns the human-readable message for err: the client Error
// message when present, else err.Error(), else the fallback. Network errors
// always yield the fallback; their messages describe transport internals,
// not anything a user can act on.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == KindNetwork {
			return fallback
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if s := err.Error(); s != "" {
		return s
	}
	return fallback
}
