package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chadcn/registry-catalog/internal/api"
	"github.com/chadcn/registry-catalog/internal/api/web"
	"github.com/chadcn/registry-catalog/internal/config"
	"github.com/chadcn/registry-catalog/internal/logger"
	"github.com/chadcn/registry-catalog/internal/telemetry"
	"github.com/chadcn/registry-catalog/internal/versions"
)

const (
	serverReadTimeout = 10 * time.Second // Enough for headers and small requests
	serverIdleTimeout = 60 * time.Second // Keep connections alive for reuse
	// writes must outlive the request timeout so the Timeout middleware answers first
	writeTimeoutMargin = 5 * time.Second
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the catalog web server",
		Long: `Start the catalog web server: HTML pages at /, the JSON API under /api/v1,
health endpoints and, when enabled, Prometheus metrics at /metrics.

The configuration file (--config) selects the listing source (file or database)
and the fetch settings. See examples/config.yaml.`,
		RunE: runServe,
	}
	cmd.Flags().String("address", "", "Address to listen on (overrides server.address)")
	if err := viper.BindPFlag("address", cmd.Flags().Lookup("address")); err != nil {
		logger.Fatalf("Failed to bind address flag: %v", err)
	}
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	address := cfg.GetAddress()
	if a := viper.GetString("address"); a != "" {
		address = a
	}

	tel, err := telemetry.New(ctx, telemetry.WithTelemetryConfig(telemetryConfig(cfg)))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Failed to shut down telemetry: %v", err)
		}
	}()

	comps, err := newComponents(ctx, cfg, tel)
	if err != nil {
		return err
	}
	defer comps.Close()

	middlewares := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(cfg.GetRequestTimeout()),
		api.LoggingMiddleware,
		telemetry.TracingMiddleware(tel.TracerProvider()),
	}
	metricsMW, err := telemetry.MetricsMiddleware(tel.MeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create HTTP metrics: %w", err)
	}
	middlewares = append(middlewares, metricsMW)

	router, err := api.NewServer(comps.controller,
		api.WithMiddlewares(middlewares...),
		api.WithMetricsHandler(tel.MetricsHandler()),
		api.WithPageOptions(web.WithDefaultTheme(cfg.GetDefaultTheme())),
	)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	server := &http.Server{
		Addr:         address,
		Handler:      router,
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: cfg.GetRequestTimeout() + writeTimeoutMargin,
		IdleTimeout:  serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server listening on %s", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GetShutdownTimeout())
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server shutdown complete")
	return nil
}

// telemetryConfig fills in the service version from the build when unset.
func telemetryConfig(cfg *config.Config) *telemetry.Config {
	if cfg.Telemetry == nil {
		return nil
	}
	tc := *cfg.Telemetry
	if tc.ServiceVersion == "" {
		tc.ServiceVersion = versions.GetVersionInfo().Version
	}
	return &tc
}
