package records

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingID is returned when a seed record has no id field.
var ErrMissingID = errors.New("record has no id")

// NotFoundError is returned when a collection, or a record within it, does
// not exist. An empty filter result is not a NotFoundError.
type NotFoundError struct {
	Collection string
	ID         string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("collection %q record %q not found", e.Collection, e.ID)
	}
	return fmt.Sprintf("collection %q not found", e.Collection)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// DuplicateIDError is returned when two records of a collection share an id.
type DuplicateIDError struct {
	Collection string
	ID         string
	Index      int
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("collection %q: duplicate id %q at index %d", e.Collection, e.ID, e.Index)
}

// StatusCodeError is implemented by errors that map to an HTTP status.
type StatusCodeError interface {
	error
	StatusCode() int
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
