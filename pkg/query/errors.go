package query

import (
	"fmt"
	"net/http"
)

// MethodNotAllowedError is returned for any method other than GET.
type MethodNotAllowedError struct {
	Collection string
	Method     string
	Status     int
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed on collection %q", e.Method, e.Collection)
}

// StatusCode returns the HTTP status the service answers with.
func (e *MethodNotAllowedError) StatusCode() int {
	if e.Status == 0 {
		return DefaultRejectStatus
	}
	return e.Status
}

// DefaultRejectStatus is the status used for non-GET requests. It keeps the
// 403 answered by the original endpoint; 405 can be selected instead.
const DefaultRejectStatus = http.StatusForbidden

// ValidRejectStatus reports whether status may be used as reject status.
func ValidRejectStatus(status int) bool {
	return status == http.StatusForbidden || status == http.StatusMethodNotAllowed
}
