package loader

import (
	"errors"
	"fmt"
	"net/http"
)

// Common loader errors.
var (
	ErrFetchFailed       = errors.New("fetch failed")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// FetchFailedError is the error held by a failed view.
type FetchFailedError struct {
	Collection string
	Err        error
}

func (e *FetchFailedError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Collection, e.Err)
}

func (e *FetchFailedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrFetchFailed) hold for every FetchFailedError.
func (e *FetchFailedError) Is(target error) bool {
	return target == ErrFetchFailed
}

// StatusCode returns the HTTP status a server render answers with.
func (e *FetchFailedError) StatusCode() int {
	return http.StatusBadGateway
}
