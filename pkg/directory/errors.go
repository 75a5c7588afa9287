package directory

import (
	"fmt"
	"net/http"
)

// StatusCodeError is an error that maps to a specific HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// HintError is an error that carries a user-facing suggestion.
type HintError interface {
	error
	Hint() string
}

// NotFoundError is returned by callers that need absence as an error value.
// The store itself reports absence with a nil return; the API layer wraps
// that nil into a NotFoundError when the response requires one.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("user %d not found", e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return fmt.Sprintf("No user has id %d. Use GET /users to list existing records.", e.ID)
}
