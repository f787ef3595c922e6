package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Common fetch errors.
var (
	ErrUnknownCollection = errors.New("no endpoint configured for collection")
	ErrCircuitOpen       = errors.New("upstream circuit open")
	ErrDecode            = errors.New("invalid collection response")
)

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary reports whether the status indicates an upstream fault rather
// than a rejected request.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

// countsAsFailure decides whether err should trip the circuit breaker.
// Rejected requests (4xx) and abandoned requests say nothing about upstream
// health.
func countsAsFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, ErrDecode)
}
