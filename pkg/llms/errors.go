package llms

import (
	"fmt"
	"time"
)

// ProviderError reports that an LLM provider was unreachable, rejected the
// request, or answered with a shape the adapter cannot use. It is terminal
// for the caller: resending the same request is not expected to help.
type ProviderError struct {
	Provider   string // Provider name, e.g. "openai"
	StatusCode int    // HTTP status, 0 when the request never completed
	Message    string // Human-readable failure description
	Err        error  // Underlying error, if any
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider string, statusCode int, message string, err error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// RateLimitedError reports throttling that persisted through the transport's
// own retries. RetryAfter carries the server's reset hint when one was
// provided; zero means the caller chooses its own backoff.
type RateLimitedError struct {
	Provider   string        // Provider name, e.g. "anthropic"
	RetryAfter time.Duration // Server-suggested wait before the next attempt
	Err        error         // Underlying error, if any
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited, retry after %s", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// Unwrap returns the underlying error.
func (e *RateLimitedError) Unwrap() error {
	return e.Err
}

// NewRateLimitedError creates a new RateLimitedError.
func NewRateLimitedError(provider string, retryAfter time.Duration, err error) *RateLimitedError {
	return &RateLimitedError{
		Provider:   provider,
		RetryAfter: retryAfter,
		Err:        err,
	}
}
