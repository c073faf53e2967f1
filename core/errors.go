package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the upstream completion call. The retry
// wrapper and the dispatch coordinator branch on the kind, never on the
// underlying provider error.
type ErrorKind int

const (
	// ErrTimeout: the per-attempt deadline elapsed. Never retried by the
	// client itself.
	ErrTimeout ErrorKind = iota
	// ErrRateLimited: HTTP 429 equivalent. Retried with backoff.
	ErrRateLimited
	// ErrUnauthorized: credentials rejected. Never retried.
	ErrUnauthorized
	// ErrMalformed: the request or response shape was invalid. Never retried.
	ErrMalformed
	// ErrUpstream: any other transport or server-side failure.
	ErrUpstream
)

// String returns the kind's canonical name.
func (k ErrorKind) String() string {
	switch k {
	case ErrTimeout:
		return "timeout"
	case ErrRateLimited:
		return "rate_limited"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrMalformed:
		return "malformed"
	case ErrUpstream:
		return "upstream"
	default:
		return "unknown"
	}
}

// CompletionError wraps a provider failure with its classification and, for
// upstream errors, the HTTP status code.
type CompletionError struct {
	Kind ErrorKind
	Code int
	Err  error
}

// Error implements the error interface.
func (e *CompletionError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("completion %s (status %d): %v", e.Kind, e.Code, e.Err)
	}
	return fmt.Sprintf("completion %s: %v", e.Kind, e.Err)
}

// Unwrap exposes the underlying provider error.
func (e *CompletionError) Unwrap() error { return e.Err }

// NewCompletionError builds a classified completion error.
func NewCompletionError(kind ErrorKind, code int, err error) *CompletionError {
	return &CompletionError{Kind: kind, Code: code, Err: err}
}

// KindOf extracts the classification from an error chain. Unclassified
// errors report ErrUpstream.
func KindOf(err error) ErrorKind {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrUpstream
}

// IsRetryable reports whether the retry wrapper may attempt the call again.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case ErrRateLimited, ErrUpstream:
		return true
	default:
		return false
	}
}
