package domain

import (
	"context"
	"errors"
)

// Sentinel errors for search operations
var (
	// ErrProviderUnavailable indicates a transient transport or availability failure
	ErrProviderUnavailable = errors.New("search provider is unavailable")

	// ErrProviderRejected indicates the provider understood the request and declined it
	ErrProviderRejected = errors.New("search provider rejected the query")

	// ErrCancelled indicates a request was abandoned because a newer one superseded it
	ErrCancelled = errors.New("search request cancelled")
)

// ErrorKind classifies a search failure
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindProviderUnavailable
	KindProviderRejected
	KindCancelled
)

// String returns the label used in logs and metrics
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindProviderRejected:
		return "provider_rejected"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Retryable reports whether the same query may succeed when re-issued
func (k ErrorKind) Retryable() bool {
	return k == KindProviderUnavailable
}

// KindOf classifies err. Deadlines count as unavailability; anything the
// provider did not explicitly reject or cancel is treated as unavailable.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrProviderRejected):
		return KindProviderRejected
	case errors.Is(err, ErrProviderUnavailable):
		return KindProviderUnavailable
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled):
		return KindCancelled
	default:
		return KindProviderUnavailable
	}
}
