// Package client provides an HTTP client for a running userd server.
// It is used by the CLI client commands and works against both server
// modes: absence surfaces as ErrNotFound whether the server answered a
// 404 envelope (dto mode) or a 200 with a JSON null (basic mode).
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/getuserd/userd/pkg/directory"
	"github.com/getuserd/userd/pkg/requestlog"
)

// Client is an HTTP client for a userd server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a new userd client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Health checks if the server is healthy.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/health")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// Status returns the server status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	resp, err := c.get(ctx, "/status")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return &status, nil
}

// ListUsers returns all users in creation order.
func (c *Client) ListUsers(ctx context.Context) ([]directory.User, error) {
	resp, err := c.get(ctx, "/users")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var users []directory.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// GetUser returns a single user. ErrNotFound covers both server modes:
// a 404 response and a 200 carrying a JSON null.
func (c *Client) GetUser(ctx context.Context, id int) (*directory.User, error) {
	resp, err := c.get(ctx, "/users/"+strconv.Itoa(id))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var user *directory.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// CreateUser creates a user and returns the record the server assigned.
func (c *Client) CreateUser(ctx context.Context, name, email string) (*directory.User, error) {
	body := map[string]string{"name": name, "email": email}
	resp, err := c.post(ctx, "/users", body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// dto mode answers 201, basic mode answers 200.
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var user directory.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return &user, nil
}

// UpdateUser updates a user. Nil fields in the update are omitted from
// the request body, so a dto-mode server keeps their prior values.
func (c *Client) UpdateUser(ctx context.Context, id int, in directory.UpdateUser) (*directory.User, error) {
	resp, err := c.put(ctx, "/users/"+strconv.Itoa(id), in)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var user *directory.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// DeleteUser deletes a user. The result mirrors the server's bare
// boolean response: true when a record was removed.
func (c *Client) DeleteUser(ctx context.Context, id int) (bool, error) {
	resp, err := c.delete(ctx, "/users/"+strconv.Itoa(id))
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return false, c.parseError(resp)
	}

	var removed bool
	if err := json.NewDecoder(resp.Body).Decode(&removed); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return removed, nil
}

// ListRequests returns recent request history entries.
func (c *Client) ListRequests(ctx context.Context, filter *requestlog.Filter) (*RequestListResponse, error) {
	path := "/requests"
	if filter != nil {
		q := url.Values{}
		if filter.Limit > 0 {
			q.Set("limit", strconv.Itoa(filter.Limit))
		}
		if filter.Offset > 0 {
			q.Set("offset", strconv.Itoa(filter.Offset))
		}
		if filter.Method != "" {
			q.Set("method", filter.Method)
		}
		if filter.Path != "" {
			q.Set("path", filter.Path)
		}
		if filter.Operation != "" {
			q.Set("operation", filter.Operation)
		}
		if filter.StatusCode != 0 {
			q.Set("status", strconv.Itoa(filter.StatusCode))
		}
		if filter.HasError != nil {
			q.Set("hasError", strconv.FormatBool(*filter.HasError))
		}
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
	}

	resp, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var result RequestListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode requests: %w", err)
	}
	return &result, nil
}

// GetRequest returns a specific request history entry.
func (c *Client) GetRequest(ctx context.Context, id string) (*requestlog.Entry, error) {
	resp, err := c.get(ctx, "/requests/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var entry requestlog.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &entry, nil
}

// ClearRequests clears the request history and returns how many entries
// were removed.
func (c *Client) ClearRequests(ctx context.Context) (int, error) {
	resp, err := c.delete(ctx, "/requests")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, c.parseError(resp)
	}

	var result struct {
		Cleared int `json:"cleared"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Cleared, nil
}

// HTTP helpers

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func (c *Client) put(ctx context.Context, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func (c *Client) delete(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.httpClient.Do(req)
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Message != "" {
		return fmt.Errorf("%s: %s", errResp.Error, errResp.Message)
	}
	return fmt.Errorf("request failed: status %d", resp.StatusCode)
}
