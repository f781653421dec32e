package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

var (
	// ErrMissingAPIKey is returned when a provider is configured without a key.
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrEmptyResponse is returned when the provider answers without any text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// APIError is a non-success HTTP response from a provider.
type APIError struct {
	Provider   string
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// Transient reports whether repeating the same request may succeed.
// Rate limiting, request timeouts, and server-side failures are transient.
// Authentication, billing, and malformed requests are not.
func (e *APIError) Transient() bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// IsTransient reports whether err is worth retrying with the same payload.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}

	if IsTimeout(err) {
		return true
	}

	// Connection refused, reset, DNS failures and the like surface as *url.Error.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Explain turns a client error into a short hint for the user.
func Explain(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAPIKey):
		return "no API key configured: set llm.api_key or LEDGER_LLM_API_KEY"
	case IsTimeout(err):
		return "the request timed out: check your network or try again later"
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return "authentication failed: check that the API key is correct"
		case http.StatusPaymentRequired:
			return "the account has insufficient balance or quota"
		case http.StatusForbidden:
			return "access denied: the key lacks permission for this model"
		case http.StatusTooManyRequests:
			return "rate limited or quota exhausted: wait a moment and retry"
		default:
			if apiErr.StatusCode >= 500 {
				return "the provider is having problems: try again later"
			}
			return apiErr.Message
		}
	default:
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return "network error: could not reach the provider"
		}
		return err.Error()
	}
}
