package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getuserd/userd/pkg/api"
	"github.com/getuserd/userd/pkg/config"
	"github.com/getuserd/userd/pkg/directory"
	"github.com/getuserd/userd/pkg/requestlog"
)

// ── Helpers ──────────────────────────────────────────────────────────

// mockServer creates a test server that answers every request with the
// given handler.
func mockServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c := New(ts.URL)
	return ts, c
}

func jsonHandler(t *testing.T, statusCode int, body any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		if body != nil {
			if err := json.NewEncoder(w).Encode(body); err != nil {
				t.Errorf("failed to encode response: %v", err)
			}
		}
	}
}

// liveClient starts a real API server in the given mode and returns a
// client pointed at it.
func liveClient(t *testing.T, mode config.Mode) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Mode = mode
	a := api.New(cfg)
	ts := httptest.NewServer(a.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func strPtr(s string) *string { return &s }

// ── New / Options ────────────────────────────────────────────────────

func TestNew(t *testing.T) {
	c := New("http://localhost:4380")
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.baseURL != "http://localhost:4380" {
		t.Errorf("baseURL = %q, want %q", c.baseURL, "http://localhost:4380")
	}
	if c.httpClient.Timeout != 30*time.Second {
		t.Errorf("default timeout = %v, want 30s", c.httpClient.Timeout)
	}
}

func TestNew_WithTimeout(t *testing.T) {
	c := New("http://localhost:4380", WithTimeout(5*time.Second))
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.httpClient.Timeout)
	}
}

func TestNew_WithHTTPClient(t *testing.T) {
	custom := &http.Client{Timeout: time.Second}
	c := New("http://localhost:4380", WithHTTPClient(custom))
	if c.httpClient != custom {
		t.Error("WithHTTPClient did not replace the underlying client")
	}
}

// ── Health ───────────────────────────────────────────────────────────

func TestHealth_Success(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 200, map[string]string{"status": "healthy"}))
	if err := c.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v, want nil", err)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 503, nil))
	if err := c.Health(context.Background()); err == nil {
		t.Error("Health() error = nil, want error for 503")
	}
}

func TestHealth_ConnectionRefused(t *testing.T) {
	c := New("http://127.0.0.1:1") // port 1 should refuse
	if err := c.Health(context.Background()); err == nil {
		t.Error("Health() error = nil, want connection error")
	}
}

// ── Status ───────────────────────────────────────────────────────────

func TestStatus_Success(t *testing.T) {
	resp := StatusResponse{Status: "running", Mode: "dto", IDPolicy: "sequence", UserCount: 5}
	_, c := mockServer(t, jsonHandler(t, 200, resp))

	status, err := c.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.Status != "running" {
		t.Errorf("Status().Status = %q, want %q", status.Status, "running")
	}
	if status.Mode != "dto" {
		t.Errorf("Status().Mode = %q, want %q", status.Mode, "dto")
	}
	if status.UserCount != 5 {
		t.Errorf("Status().UserCount = %d, want 5", status.UserCount)
	}
}

func TestStatus_Error(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 500, ErrorResponse{Error: "err", Message: "internal"}))
	if _, err := c.Status(context.Background()); err == nil {
		t.Error("Status() error = nil, want error for 500")
	}
}

// ── User CRUD ────────────────────────────────────────────────────────

func TestListUsers_Success(t *testing.T) {
	users := []directory.User{
		{ID: 1, Name: "Alice", Email: "alice@example.com"},
		{ID: 2, Name: "Bob", Email: "bob@example.com"},
	}
	_, c := mockServer(t, jsonHandler(t, 200, users))

	result, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("ListUsers() = %d users, want 2", len(result))
	}
	if result[0].Name != "Alice" {
		t.Errorf("ListUsers()[0].Name = %q, want %q", result[0].Name, "Alice")
	}
}

func TestListUsers_Empty(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 200, []directory.User{}))

	result, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(result) != 0 {
		t.Errorf("ListUsers() = %d users, want 0", len(result))
	}
}

func TestGetUser_Success(t *testing.T) {
	user := directory.User{ID: 1, Name: "Alice", Email: "alice@example.com"}
	_, c := mockServer(t, jsonHandler(t, 200, user))

	result, err := c.GetUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if result.Name != "Alice" {
		t.Errorf("GetUser().Name = %q, want %q", result.Name, "Alice")
	}
}

func TestGetUser_NotFound(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 404, ErrorResponse{Error: "not_found", Message: "user 42 not found"}))

	_, err := c.GetUser(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}

func TestGetUser_NullBody(t *testing.T) {
	// basic-mode servers answer 200 with a JSON null for absent ids.
	_, c := mockServer(t, jsonHandler(t, 200, json.RawMessage("null")))

	_, err := c.GetUser(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}

func TestCreateUser_Created(t *testing.T) {
	created := directory.User{ID: 1, Name: "Alice", Email: "alice@example.com"}
	_, c := mockServer(t, jsonHandler(t, 201, created))

	result, err := c.CreateUser(context.Background(), "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if result.ID != 1 {
		t.Errorf("CreateUser().ID = %d, want 1", result.ID)
	}
}

func TestCreateUser_AcceptsOK(t *testing.T) {
	// basic-mode servers answer 200 instead of 201.
	created := directory.User{ID: 5, Name: "Alice"}
	_, c := mockServer(t, jsonHandler(t, 200, created))

	result, err := c.CreateUser(context.Background(), "Alice", "")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if result.ID != 5 {
		t.Errorf("CreateUser().ID = %d, want 5", result.ID)
	}
}

func TestCreateUser_ValidationError(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 400, ErrorResponse{
		Error:   "validation_error",
		Message: "email: must be a valid email address",
	}))

	_, err := c.CreateUser(context.Background(), "Alice", "not-an-email")
	if err == nil {
		t.Fatal("CreateUser() error = nil, want validation error")
	}
	if !strings.Contains(err.Error(), "valid email") {
		t.Errorf("error = %q, should carry the server message", err.Error())
	}
}

func TestUpdateUser_Success(t *testing.T) {
	updated := directory.User{ID: 1, Name: "Alicia", Email: "alice@example.com"}
	_, c := mockServer(t, jsonHandler(t, 200, updated))

	result, err := c.UpdateUser(context.Background(), 1, directory.UpdateUser{Name: strPtr("Alicia")})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if result.Name != "Alicia" {
		t.Errorf("UpdateUser().Name = %q, want %q", result.Name, "Alicia")
	}
}

func TestUpdateUser_OmitsNilFields(t *testing.T) {
	var capturedBody map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(directory.User{ID: 1})
	}))
	defer ts.Close()
	c := New(ts.URL)

	_, err := c.UpdateUser(context.Background(), 1, directory.UpdateUser{Name: strPtr("Alicia")})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if _, ok := capturedBody["email"]; ok {
		t.Error("request body should omit the unset email field")
	}
	if capturedBody["name"] != "Alicia" {
		t.Errorf("request body name = %v, want %q", capturedBody["name"], "Alicia")
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 404, ErrorResponse{Error: "not_found", Message: "user 42 not found"}))

	_, err := c.UpdateUser(context.Background(), 42, directory.UpdateUser{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUser() error = %v, want ErrNotFound", err)
	}
}

func TestUpdateUser_NullBody(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 200, json.RawMessage("null")))

	_, err := c.UpdateUser(context.Background(), 42, directory.UpdateUser{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUser() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser_Removed(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 200, true))

	removed, err := c.DeleteUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if !removed {
		t.Error("DeleteUser() = false, want true")
	}
}

func TestDeleteUser_Absent(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 200, false))

	removed, err := c.DeleteUser(context.Background(), 42)
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if removed {
		t.Error("DeleteUser() = true, want false")
	}
}

// ── Request history ──────────────────────────────────────────────────

func TestListRequests_NoFilter(t *testing.T) {
	resp := RequestListResponse{Count: 2, Total: 2}
	_, c := mockServer(t, jsonHandler(t, 200, resp))

	result, err := c.ListRequests(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListRequests() error = %v", err)
	}
	if result.Count != 2 {
		t.Errorf("ListRequests().Count = %d, want 2", result.Count)
	}
}

func TestListRequests_WithFilter(t *testing.T) {
	var capturedPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(RequestListResponse{})
	}))
	defer ts.Close()
	c := New(ts.URL)

	hasError := true
	_, err := c.ListRequests(context.Background(), &requestlog.Filter{
		Limit:      10,
		Offset:     5,
		Method:     "POST",
		Operation:  "create",
		StatusCode: 201,
		HasError:   &hasError,
	})
	if err != nil {
		t.Fatalf("ListRequests() error = %v", err)
	}

	for _, param := range []string{"limit=10", "offset=5", "method=POST", "operation=create", "status=201", "hasError=true"} {
		if !strings.Contains(capturedPath, param) {
			t.Errorf("request path %q missing param %q", capturedPath, param)
		}
	}
}

func TestGetRequest_Success(t *testing.T) {
	entry := requestlog.Entry{ID: "req-1", Method: "POST", Path: "/users"}
	_, c := mockServer(t, jsonHandler(t, 200, entry))

	result, err := c.GetRequest(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("GetRequest() error = %v", err)
	}
	if result.ID != "req-1" {
		t.Errorf("GetRequest().ID = %q, want %q", result.ID, "req-1")
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 404, nil))

	_, err := c.GetRequest(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetRequest() error = %v, want ErrNotFound", err)
	}
}

func TestClearRequests_Success(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 200, map[string]int{"cleared": 42}))

	cleared, err := c.ClearRequests(context.Background())
	if err != nil {
		t.Fatalf("ClearRequests() error = %v", err)
	}
	if cleared != 42 {
		t.Errorf("ClearRequests() = %d, want 42", cleared)
	}
}

// ── Error parsing ────────────────────────────────────────────────────

func TestParseError_StructuredError(t *testing.T) {
	_, c := mockServer(t, jsonHandler(t, 400, ErrorResponse{Error: "bad_request", Message: "invalid field"}))

	_, err := c.Status(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid field") {
		t.Errorf("error = %q, should contain 'invalid field'", err.Error())
	}
}

func TestParseError_PlainTextError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		_, _ = w.Write([]byte("plain text error"))
	}))
	defer ts.Close()
	c := New(ts.URL)

	_, err := c.Status(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("error = %q, should contain 'status 500'", err.Error())
	}
}

// ── Request plumbing ─────────────────────────────────────────────────

func TestPost_SetsContentType(t *testing.T) {
	var capturedCT string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedCT = r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(201)
		_ = json.NewEncoder(w).Encode(directory.User{ID: 1})
	}))
	defer ts.Close()
	c := New(ts.URL)

	_, _ = c.CreateUser(context.Background(), "Alice", "alice@example.com")
	if capturedCT != "application/json" {
		t.Errorf("Content-Type = %q, want %q", capturedCT, "application/json")
	}
}

func TestHealth_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond) // simulate slow server
		w.WriteHeader(200)
	}))
	defer ts.Close()
	c := New(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := c.Health(ctx); err == nil {
		t.Error("Health() with cancelled context should error")
	}
}

// ── Against a live server ────────────────────────────────────────────

func TestLive_DTORoundTrip(t *testing.T) {
	c := liveClient(t, config.ModeDTO)
	ctx := context.Background()

	created, err := c.CreateUser(ctx, "Alice", "alice@example.com")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if created.ID != 1 {
		t.Errorf("CreateUser().ID = %d, want 1", created.ID)
	}

	fetched, err := c.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if fetched.Email != "alice@example.com" {
		t.Errorf("GetUser().Email = %q, want %q", fetched.Email, "alice@example.com")
	}

	updated, err := c.UpdateUser(ctx, created.ID, directory.UpdateUser{Name: strPtr("Alicia")})
	if err != nil {
		t.Fatalf("UpdateUser() error = %v", err)
	}
	if updated.Name != "Alicia" || updated.Email != "alice@example.com" {
		t.Errorf("UpdateUser() = %+v, want merged record", updated)
	}

	if _, err := c.GetUser(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(99) error = %v, want ErrNotFound", err)
	}

	removed, err := c.DeleteUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if !removed {
		t.Error("DeleteUser() = false, want true")
	}

	status, err := c.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if status.UserCount != 0 {
		t.Errorf("Status().UserCount = %d, want 0 after delete", status.UserCount)
	}

	history, err := c.ListRequests(ctx, &requestlog.Filter{Operation: "create"})
	if err != nil {
		t.Fatalf("ListRequests() error = %v", err)
	}
	if history.Count != 1 {
		t.Errorf("ListRequests(create).Count = %d, want 1", history.Count)
	}
}

func TestLive_BasicModeAbsence(t *testing.T) {
	c := liveClient(t, config.ModeBasic)
	ctx := context.Background()

	// The server answers 200 with a JSON null; the client still maps
	// that to ErrNotFound.
	if _, err := c.GetUser(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(42) error = %v, want ErrNotFound", err)
	}

	removed, err := c.DeleteUser(ctx, 42)
	if err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if removed {
		t.Error("DeleteUser(42) = true, want false")
	}
}
