package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a terminal failure of a roast request.
type ErrorKind string

const (
	KindInputInvalid    ErrorKind = "InputInvalid"
	KindSymbolNotFound  ErrorKind = "SymbolNotFound"
	KindDataUnavailable ErrorKind = "DataUnavailable"
	KindFetch           ErrorKind = "FetchError"
	KindAuth            ErrorKind = "AuthError"
	KindRateLimit       ErrorKind = "RateLimitOrServerError"
	KindAPI             ErrorKind = "ApiError"
	KindTransport       ErrorKind = "TransportError"
)

// Error is the only error type that leaves the collector and roast packages.
type Error struct {
	Kind    ErrorKind
	Status  int // upstream HTTP status, 0 if none
	Message string
	Hint    string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage is the single line shown to the user.
func (e *Error) UserMessage() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil && e.Kind != KindSymbolNotFound {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// NewError builds an Error of the given kind.
func NewError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
