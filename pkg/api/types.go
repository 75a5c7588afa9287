package api

import (
	"time"

	"github.com/getuserd/userd/pkg/directory"
	"github.com/getuserd/userd/pkg/requestlog"
)

// CreateUserRequest is the body for POST /users.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateUserRequest is the body for PUT /users/{id} in basic mode, where
// the record is replaced wholesale and omitted fields become zero values.
// In dto mode the body is decoded field-by-field so omitted fields keep
// their prior value.
type UpdateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ErrorResponse is the error envelope returned by dto-mode failures.
type ErrorResponse struct {
	// Error is a machine-readable error code.
	Error string `json:"error"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Hint suggests how to resolve the error.
	Hint string `json:"hint,omitempty"`

	// Details carries per-field validation errors.
	Details any `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    int64     `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Status       string    `json:"status"`
	Mode         string    `json:"mode"`
	IDPolicy     string    `json:"idPolicy"`
	Uptime       int64     `json:"uptime"`
	UserCount    int       `json:"userCount"`
	RequestCount int       `json:"requestCount"`
	StartedAt    time.Time `json:"startedAt"`

	// Metrics is the store operation snapshot, present when the API was
	// constructed with a metrics observer.
	Metrics *directory.MetricsSnapshot `json:"metrics,omitempty"`
}

// RequestListResponse is returned by GET /requests.
type RequestListResponse struct {
	Requests []*requestlog.Entry `json:"requests"`
	Count    int                 `json:"count"`
	Total    int                 `json:"total"`
}
