package requestlog

import "time"

// Operation constants identifying which directory operation a request hit.
const (
	OpCreate = "create"
	OpList   = "list"
	OpGet    = "get"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Entry captures the details of one handled request.
type Entry struct {
	// ID is a unique identifier for the log entry.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	// TraceID correlates the entry with server log lines.
	TraceID string `json:"traceId,omitempty"`

	// Method is the HTTP method.
	Method string `json:"method"`

	// Path is the request URL path.
	Path string `json:"path"`

	// QueryString is the raw query string.
	QueryString string `json:"queryString,omitempty"`

	// RemoteAddr is the client address.
	RemoteAddr string `json:"remoteAddr,omitempty"`

	// Operation names the directory operation served (create, list, get,
	// update, delete). Empty for system endpoints.
	Operation string `json:"operation,omitempty"`

	// UserID is the id targeted by the request, when the path carries one.
	UserID int `json:"userId,omitempty"`

	// ResponseStatus is the HTTP status code returned.
	ResponseStatus int `json:"responseStatus"`

	// DurationMs is the request processing time in milliseconds.
	DurationMs int `json:"durationMs"`

	// Error contains an error message if the request failed.
	Error string `json:"error,omitempty"`
}
