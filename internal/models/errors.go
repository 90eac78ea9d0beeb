package models

import (
	"errors"
)

// ErrorKind classifies why a run failed
type ErrorKind string

// Error kinds
const (
	ErrorKindNone                ErrorKind = ""
	ErrorKindResourceUnavailable ErrorKind = "resource_unavailable"
	ErrorKindAssertionFailed     ErrorKind = "assertion_failed"
	ErrorKindNetworkTimeout      ErrorKind = "network_timeout"
	ErrorKindError               ErrorKind = "error"
)

// Check failure taxonomy. Every failure is local to a single check.
var (
	// ErrResourceUnavailable means the browser or page could not be acquired
	ErrResourceUnavailable = errors.New("resource unavailable")
	// ErrAssertionFailed means an expected condition was not met
	ErrAssertionFailed = errors.New("assertion failed")
	// ErrNetworkTimeout means the remote site did not respond within the configured timeout
	ErrNetworkTimeout = errors.New("network timeout")
)

// Classify maps an error onto the failure taxonomy
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrResourceUnavailable):
		return ErrorKindResourceUnavailable
	case errors.Is(err, ErrNetworkTimeout):
		return ErrorKindNetworkTimeout
	case errors.Is(err, ErrAssertionFailed):
		return ErrorKindAssertionFailed
	default:
		return ErrorKindError
	}
}
