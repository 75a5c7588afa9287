package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getuserd/userd/pkg/requestlog"
)

// CORSConfig holds the configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to make cross-origin requests.
	// Empty or containing "*" allows all origins.
	AllowedOrigins []string

	// AllowedMethods lists HTTP methods allowed for cross-origin requests.
	AllowedMethods []string

	// AllowedHeaders lists headers allowed in cross-origin requests.
	AllowedHeaders []string

	// AllowCredentials permits credentialed requests. When true,
	// AllowedOrigins must list specific origins instead of "*".
	AllowCredentials bool

	// MaxAge is how long (in seconds) a preflight result may be cached.
	MaxAge int
}

// DefaultCORSConfig allows all origins, which suits a development service
// driven from local tooling and dashboards.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           86400,
	}
}

func (c *CORSConfig) isOriginAllowed(origin string) bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// getAllowOriginValue returns the Access-Control-Allow-Origin header value.
func (c *CORSConfig) getAllowOriginValue(origin string) string {
	// Credentialed requests must echo the specific origin, never "*".
	if c.AllowCredentials {
		if c.isOriginAllowed(origin) && origin != "" {
			return origin
		}
		return ""
	}

	if len(c.AllowedOrigins) == 0 {
		return "*"
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
	}

	if c.isOriginAllowed(origin) {
		return origin
	}
	return ""
}

func (c *CORSConfig) getMethods() string {
	if len(c.AllowedMethods) == 0 {
		return "GET, POST, PUT, DELETE, OPTIONS"
	}
	return strings.Join(c.AllowedMethods, ", ")
}

func (c *CORSConfig) getHeaders() string {
	if len(c.AllowedHeaders) == 0 {
		return "Content-Type"
	}
	return strings.Join(c.AllowedHeaders, ", ")
}

func (c *CORSConfig) getMaxAge() string {
	if c.MaxAge <= 0 {
		return "86400"
	}
	return strconv.Itoa(c.MaxAge)
}

type traceIDKey struct{}

// TraceIDFromContext returns the trace id assigned to the request, or an
// empty string when the request did not pass through the middleware.
func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}

// traceMiddleware assigns each request a trace id, honoring one supplied
// by the caller, and echoes it in the response.
func (a *API) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		w.Header().Set("X-Trace-ID", traceID)

		ctx := context.WithValue(r.Context(), traceIDKey{}, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// corsMiddleware adds CORS headers and answers preflight requests.
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// The response depends on the origin even when it is rejected.
		w.Header().Add("Vary", "Origin")

		allowOrigin := a.cors.getAllowOriginValue(origin)
		if allowOrigin == "" {
			// Origin not allowed; process the request anyway and let the
			// browser block the response.
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", a.cors.getMethods())
		w.Header().Set("Access-Control-Allow-Headers", a.cors.getHeaders())
		w.Header().Set("Access-Control-Max-Age", a.cors.getMaxAge())
		if a.cors.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestLogMiddleware logs each request and records it in the request
// history. Requests to the history endpoints themselves are not recorded,
// so polling and streaming do not feed back into the history.
func (a *API) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		a.log.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"durationMs", duration.Milliseconds(),
			"traceId", TraceIDFromContext(r.Context()),
		)

		if !a.cfg.RequestLogEnabled() || strings.HasPrefix(r.URL.Path, "/requests") {
			return
		}

		op, userID := operationFor(r.Method, r.URL.Path)
		entry := &requestlog.Entry{
			TraceID:        TraceIDFromContext(r.Context()),
			Method:         r.Method,
			Path:           r.URL.Path,
			QueryString:    r.URL.RawQuery,
			RemoteAddr:     r.RemoteAddr,
			Operation:      op,
			UserID:         userID,
			ResponseStatus: rec.status,
			DurationMs:     int(duration.Milliseconds()),
		}
		if rec.status >= http.StatusBadRequest {
			entry.Error = http.StatusText(rec.status)
		}
		a.requests.Log(entry)
	})
}

// operationFor maps a request to the directory operation it targets.
// System endpoints map to no operation and a zero user id.
func operationFor(method, path string) (string, int) {
	if path == "/users" {
		switch method {
		case http.MethodPost:
			return requestlog.OpCreate, 0
		case http.MethodGet:
			return requestlog.OpList, 0
		}
		return "", 0
	}
	rest, found := strings.CutPrefix(path, "/users/")
	if !found {
		return "", 0
	}
	id, _ := strconv.Atoi(rest)
	switch method {
	case http.MethodGet:
		return requestlog.OpGet, id
	case http.MethodPut:
		return requestlog.OpUpdate, id
	case http.MethodDelete:
		return requestlog.OpDelete, id
	}
	return "", 0
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code.
func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the underlying writer so SSE responses keep working
// through the middleware chain.
func (sr *statusRecorder) Flush() {
	if f, ok := sr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
