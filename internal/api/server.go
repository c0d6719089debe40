// Package api assembles the HTTP surface of the catalog: HTML pages, the JSON
// API, health endpoints and metrics.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/chadcn/registry-catalog/internal/api/v1"
	"github.com/chadcn/registry-catalog/internal/api/web"
	"github.com/chadcn/registry-catalog/internal/logger"
)

// ServerOption configures the catalog server
type ServerOption func(*serverConfig)

// serverConfig holds the server configuration
type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	metricsHandler http.Handler
	pageOptions    []web.Option
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithMetricsHandler serves h at /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// WithPageOptions configures the HTML pages
func WithPageOptions(opts ...web.Option) ServerOption {
	return func(cfg *serverConfig) {
		cfg.pageOptions = append(cfg.pageOptions, opts...)
	}
}

// NewServer creates and configures the HTTP router over the given catalog
func NewServer(c v1.Catalog, opts ...ServerOption) (*chi.Mux, error) {
	cfg := &serverConfig{
		middlewares: []func(http.Handler) http.Handler{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	pages, err := web.New(c, cfg.pageOptions...)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	health := v1.HealthRouter(c)
	r.Handle("/health", health)
	r.Handle("/readiness", health)
	r.Handle("/version", health)

	if cfg.metricsHandler != nil {
		r.Handle("/metrics", cfg.metricsHandler)
	}

	r.Mount("/api/v1", v1.Router(c))
	r.Mount("/", pages.Router())

	return r, nil
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logger.Debugf("HTTP %s %s %d %dB %s %s",
			r.Method,
			r.URL.Path,
			ww.Status(),
			ww.BytesWritten(),
			time.Since(start),
			middleware.GetReqID(r.Context()),
		)
	})
}
