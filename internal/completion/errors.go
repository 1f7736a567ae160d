package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// StatusError is a non-2xx answer from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	name := DisplayName(e.Provider)
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Sprintf("invalid %s API key", name)
	case http.StatusForbidden:
		return fmt.Sprintf("%s API key lacks permission: %s", name, e.detail())
	case http.StatusTooManyRequests:
		return "rate limited: too many requests, try again later"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return fmt.Sprintf("%s API unavailable (status %d): try again later", name, e.StatusCode)
	case 529:
		return fmt.Sprintf("%s API overloaded: try again later", name)
	default:
		return fmt.Sprintf("%s API error (status %d): %s", name, e.StatusCode, e.detail())
	}
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func (e *StatusError) detail() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.StatusCode)
}

// Retryable reports whether err is worth another attempt: rate limits,
// server-side failures, timeouts and network errors. Authentication and
// request errors are final, as is cancellation of the caller's context.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode >= 500:
			return true
		default:
			return false
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
