package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware_AssignsID(t *testing.T) {
	a := newTestAPI(t, nil)

	rec := doRequest(t, a, http.MethodGet, "/health", nil)
	traceID := rec.Header().Get("X-Trace-ID")
	require.NotEmpty(t, traceID)

	_, err := uuid.Parse(traceID)
	assert.NoError(t, err, "generated trace ids are UUIDs")
}

func TestTraceMiddleware_HonorsCallerID(t *testing.T) {
	a := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Trace-ID", "caller-supplied")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "caller-supplied", rec.Header().Get("X-Trace-ID"))
}

func TestTraceMiddleware_TaggedInHistory(t *testing.T) {
	a := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	resp := listRequests(t, a, "")
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "trace-123", resp.Requests[0].TraceID)
}

func TestCORSMiddleware_WildcardDefault(t *testing.T) {
	a := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Values("Vary"), "Origin")
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	a := newTestAPI(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSMiddleware_ExplicitOrigins(t *testing.T) {
	cors := CORSConfig{AllowedOrigins: []string{"http://ok.test"}}
	a := New(nil, WithCORSConfig(cors))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://ok.test")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://ok.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	// The request itself still succeeds; the browser enforces the block.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOperationFor(t *testing.T) {
	tests := []struct {
		method string
		path   string
		wantOp string
		wantID int
	}{
		{http.MethodPost, "/users", "create", 0},
		{http.MethodGet, "/users", "list", 0},
		{http.MethodGet, "/users/7", "get", 7},
		{http.MethodPut, "/users/7", "update", 7},
		{http.MethodDelete, "/users/7", "delete", 7},
		{http.MethodGet, "/users/abc", "get", 0},
		{http.MethodGet, "/health", "", 0},
		{http.MethodDelete, "/requests", "", 0},
	}
	for _, tt := range tests {
		op, id := operationFor(tt.method, tt.path)
		assert.Equal(t, tt.wantOp, op, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.wantID, id, "%s %s", tt.method, tt.path)
	}
}

func TestHistoryRecordsStatus(t *testing.T) {
	a := newTestAPI(t, nil)

	doRequest(t, a, http.MethodGet, "/users", nil)

	resp := listRequests(t, a, "")
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, http.StatusOK, resp.Requests[0].ResponseStatus)
}

func TestErrorsTaggedInHistory(t *testing.T) {
	a := newTestAPI(t, nil)

	doRequest(t, a, http.MethodGet, "/users/999", nil)

	resp := listRequests(t, a, "")
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, http.StatusNotFound, resp.Requests[0].ResponseStatus)
	assert.NotEmpty(t, resp.Requests[0].Error)
}
