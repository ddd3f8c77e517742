// Package resilience classifies external lookup failures and provides
// retry with backoff for callers that want it. The analysis path itself
// never retries; a failed lookup simply drops that rent signal.
package resilience

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// LookupError wraps a failure from an external data-source call. Transient
// failures (timeouts, 429, 5xx) are safe to retry; the rate-limited flag is
// carried so callers can distinguish provider throttling.
type LookupError struct {
	Err         error
	StatusCode  int
	Transient   bool
	RateLimited bool
}

func (e *LookupError) Error() string {
	return e.Err.Error()
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError classifies an HTTP-level failure by status code.
func NewLookupError(err error, statusCode int) *LookupError {
	return &LookupError{
		Err:         err,
		StatusCode:  statusCode,
		Transient:   IsTransientHTTPStatus(statusCode),
		RateLimited: statusCode == http.StatusTooManyRequests,
	}
}

// IsRateLimited reports whether the error chain contains a provider
// rate-limit rejection.
func IsRateLimited(err error) bool {
	var le *LookupError
	return errors.As(err, &le) && le.RateLimited
}

// IsTransient reports whether the error (or anything in its chain) is safe
// to retry: an explicitly transient LookupError, a network timeout, or a
// connection-level failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var le *LookupError
	if errors.As(err, &le) {
		return le.Transient
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped client errors lose their types; fall back to message patterns.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether an HTTP status indicates a
// server-side issue that is safe to retry.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
