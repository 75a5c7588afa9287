package client

import (
	"errors"

	"github.com/getuserd/userd/pkg/api"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Re-export the API types so callers don't need to import pkg/api.
type (
	// StatusResponse is the server status report.
	StatusResponse = api.StatusResponse

	// HealthResponse is the health check response.
	HealthResponse = api.HealthResponse

	// RequestListResponse is a page of request history entries.
	RequestListResponse = api.RequestListResponse

	// ErrorResponse is the error envelope returned by the server.
	ErrorResponse = api.ErrorResponse
)
