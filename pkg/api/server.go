package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getuserd/userd/pkg/config"
	"github.com/getuserd/userd/pkg/directory"
	"github.com/getuserd/userd/pkg/logging"
	"github.com/getuserd/userd/pkg/requestlog"
	"github.com/getuserd/userd/pkg/validation"
)

// API is the userd HTTP server.
type API struct {
	cfg        *config.Config
	store      *directory.Store
	metrics    *directory.MetricsObserver
	requests   requestlog.SubscribableStore
	httpServer *http.Server
	handler    http.Handler
	log        *slog.Logger
	cors       CORSConfig
	version    string
	startTime  time.Time

	// Boundary rules applied in dto mode. extraValidator carries the
	// operator-supplied rules from the config and runs on create bodies
	// in addition to the built-in checks.
	createValidator *validation.Validator
	updateValidator *validation.Validator
	extraValidator  *validation.Validator
}

// Option is a functional option for configuring an API.
type Option func(*API)

// WithStore sets the user store. Without this option the API constructs
// its own store using the config's effective id policy.
func WithStore(store *directory.Store) Option {
	return func(a *API) {
		if store != nil {
			a.store = store
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMetrics sets the observer whose snapshot the status endpoint
// reports. Pass the same observer the store was constructed with.
func WithMetrics(m *directory.MetricsObserver) Option {
	return func(a *API) {
		a.metrics = m
	}
}

// WithRequestLog sets the request history store.
func WithRequestLog(store requestlog.SubscribableStore) Option {
	return func(a *API) {
		if store != nil {
			a.requests = store
		}
	}
}

// WithCORSConfig sets the CORS policy for browser clients.
func WithCORSConfig(cors CORSConfig) Option {
	return func(a *API) {
		a.cors = cors
	}
}

// WithVersion sets the version string reported by the health endpoint.
func WithVersion(version string) Option {
	return func(a *API) {
		if version != "" {
			a.version = version
		}
	}
}

// New creates an API server with the given configuration.
// Optional Option functions can be passed to customize the server.
func New(cfg *config.Config, opts ...Option) *API {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	a := &API{
		cfg:       cfg,
		log:       logging.Nop(),
		cors:      DefaultCORSConfig(),
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		if a.metrics == nil {
			a.metrics = directory.NewMetricsObserver()
		}
		a.store = directory.NewStore(
			directory.WithIDPolicy(cfg.EffectiveIDPolicy()),
			directory.WithObserver(a.metrics),
		)
	}
	if a.requests == nil {
		a.requests = requestlog.NewMemoryStore(cfg.MaxLogEntries)
	}

	a.createValidator = validation.NewValidator(createRules)
	a.updateValidator = validation.NewValidator(updateRules)
	a.extraValidator = validation.NewValidator(cfg.Validation)

	mux := http.NewServeMux()
	a.registerRoutes(mux)
	a.handler = a.withMiddleware(mux)

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      a.handler,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	}

	return a
}

// Store returns the user store the API serves.
func (a *API) Store() *directory.Store {
	return a.store
}

// Handler returns the fully wrapped HTTP handler. Useful for embedding
// the API into an existing server or an httptest.Server.
func (a *API) Handler() http.Handler {
	return a.handler
}

// Port returns the configured listen port.
func (a *API) Port() int {
	return a.cfg.Port
}

// Addr returns the listen address.
func (a *API) Addr() string {
	return a.httpServer.Addr
}

// Start starts the API server. It returns immediately; the listener runs
// in a background goroutine until Stop is called.
func (a *API) Start() error {
	a.log.Info("starting user API",
		"addr", a.httpServer.Addr,
		"mode", a.cfg.Mode,
		"idPolicy", a.store.Policy(),
	)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("user API server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the API server.
func (a *API) Stop(ctx context.Context) error {
	a.log.Info("stopping user API")
	return a.httpServer.Shutdown(ctx)
}

func (a *API) registerRoutes(mux *http.ServeMux) {
	// Users
	mux.HandleFunc("POST /users", a.handleCreateUser)
	mux.HandleFunc("GET /users", a.handleListUsers)
	mux.HandleFunc("GET /users/{id}", a.handleGetUser)
	mux.HandleFunc("PUT /users/{id}", a.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", a.handleDeleteUser)

	// Health & Status
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /status", a.handleStatus)
	mux.HandleFunc("GET /openapi.json", a.handleOpenAPI)

	// Request history
	mux.HandleFunc("GET /requests", a.handleListRequests)
	mux.HandleFunc("GET /requests/stream", a.handleStreamRequests)
	mux.HandleFunc("GET /requests/{id}", a.handleGetRequest)
	mux.HandleFunc("DELETE /requests", a.handleClearRequests)
}

// withMiddleware wraps the handler with the standard chain.
// Order (outermost to innermost): trace id -> CORS -> request log -> handler.
func (a *API) withMiddleware(handler http.Handler) http.Handler {
	handler = a.requestLogMiddleware(handler)
	handler = a.corsMiddleware(handler)
	handler = a.traceMiddleware(handler)
	return handler
}
