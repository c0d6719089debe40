package app

import (
	"context"
	"fmt"

	"github.com/chadcn/registry-catalog/internal/catalog"
	"github.com/chadcn/registry-catalog/internal/config"
	"github.com/chadcn/registry-catalog/internal/db"
	"github.com/chadcn/registry-catalog/internal/httpclient"
	"github.com/chadcn/registry-catalog/internal/logger"
	"github.com/chadcn/registry-catalog/internal/registry"
	"github.com/chadcn/registry-catalog/internal/telemetry"
	"github.com/chadcn/registry-catalog/internal/versions"
)

const instrumentationName = "github.com/chadcn/registry-catalog"

// components are the long-lived pieces shared by serve and the CLI listing
type components struct {
	controller *catalog.Controller
	source     catalog.Source
	conn       *db.Connection
}

func (c *components) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

// newSource opens the listing source the configuration selects.
func newSource(ctx context.Context, cfg *config.Config) (catalog.Source, *db.Connection, error) {
	switch cfg.GetSourceType() {
	case config.SourceTypeFile:
		logger.Infof("Reading listings from %s", cfg.Catalog.File.Path)
		return catalog.NewFileSource(cfg.Catalog.File.Path), nil, nil
	case config.SourceTypeDatabase:
		conn, err := db.NewConnection(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewDatabaseSource(conn.Queries), conn, nil
	default:
		return nil, nil, fmt.Errorf("no listing source configured")
	}
}

// newComponents wires the fetcher, source and controller. tel may be nil.
func newComponents(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry) (*components, error) {
	source, conn, err := newSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewDefaultClient(cfg.GetFetchTimeout(), httpclient.WithUserAgent(versions.UserAgent()))
	fetcherOpts := []registry.FetcherOption{registry.WithSchemaValidation(cfg.GetValidateSchema())}
	controllerOpts := []catalog.Option{catalog.WithConcurrency(cfg.GetFetchConcurrency())}

	if tel != nil {
		closeOnErr := func(err error) (*components, error) {
			if conn != nil {
				conn.Close()
			}
			return nil, err
		}
		tracer := tel.Tracer(instrumentationName)
		fetchMetrics, err := telemetry.NewFetchMetrics(tel.MeterProvider())
		if err != nil {
			return closeOnErr(fmt.Errorf("failed to create fetch metrics: %w", err))
		}
		catalogMetrics, err := telemetry.NewCatalogMetrics(tel.MeterProvider())
		if err != nil {
			return closeOnErr(fmt.Errorf("failed to create catalog metrics: %w", err))
		}
		fetcherOpts = append(fetcherOpts, registry.WithTracer(tracer), registry.WithFetchMetrics(fetchMetrics))
		controllerOpts = append(controllerOpts, catalog.WithTracer(tracer), catalog.WithCatalogMetrics(catalogMetrics))
	}

	fetcher := registry.NewHTTPFetcher(client, fetcherOpts...)
	return &components{
		controller: catalog.NewController(fetcher, source, controllerOpts...),
		source:     source,
		conn:       conn,
	}, nil
}
