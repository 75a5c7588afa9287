package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/getuserd/userd/pkg/httputil"
	"github.com/getuserd/userd/pkg/validation"
)

// maxRequestBodySize is the maximum allowed request body size (10 MB).
const maxRequestBodySize = 10 * 1024 * 1024

// limitedBody wraps r.Body with http.MaxBytesReader to enforce body size
// limits. Must be called before reading r.Body in any handler that
// accepts a request body.
func limitedBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
}

func decodeJSONBody(r *http.Request, v any, allowEOF bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return nil
	}
	if allowEOF && err == io.EOF {
		return nil
	}
	return err
}

// decodeBodyMap decodes the body into a generic map for validation.
// An empty body yields a nil map, which validation treats as a body with
// every field absent.
func decodeBodyMap(r *http.Request) (map[string]any, error) {
	var body map[string]any
	if err := decodeJSONBody(r, &body, true); err != nil {
		return nil, err
	}
	return body, nil
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) || strings.Contains(strings.ToLower(err.Error()), "request body too large") {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON in request body")
}

func writeValidationError(w http.ResponseWriter, result *validation.Result) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: result.Detail(),
		Details: result.Errors,
	})
}

// writeJSON writes a JSON response using the shared httputil package.
// This ensures Content-Type is always set correctly.
func writeJSON(w http.ResponseWriter, status int, v any) {
	httputil.WriteJSON(w, status, v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	httputil.WriteJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}
