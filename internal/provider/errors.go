// Package provider defines the market data provider contract, the HTTP
// client that implements it, and the bounded retry layer that feeds the
// analyzer fresh data.
package provider

import (
	"errors"
	"fmt"
)

// Error classes carried by ProviderError
const (
	ErrTypeTransport = "transport"
	ErrTypeHTTP      = "http_error"
	ErrTypeDecode    = "decode"
	ErrTypeRateLimit = "rate_limit"
	ErrTypeCircuit   = "circuit"
)

// ProviderError wraps an upstream failure with enough context for the
// retry layer to classify it.
type ProviderError struct {
	Provider   string `json:"provider"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code,omitempty"`
	Err        error  `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider %s %s error (HTTP %d): %v", e.Provider, e.Type, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s %s error: %v", e.Provider, e.Type, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth another attempt:
// transport-level failures and server-class HTTP errors are. Client-class
// errors, decode failures, and an open circuit propagate immediately. The
// breaker's open window outlasts any backoff delay.
func Retryable(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Type {
	case ErrTypeTransport:
		return true
	case ErrTypeHTTP:
		return pe.StatusCode >= 500
	default:
		return false
	}
}
