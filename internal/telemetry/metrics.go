package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// FetchMetricsMeterName is the meter used for registry fetches
	FetchMetricsMeterName = "github.com/chadcn/registry-catalog/fetch"

	// CatalogMetricsMeterName is the meter used for catalog refreshes
	CatalogMetricsMeterName = "github.com/chadcn/registry-catalog/catalog"
)

// Fetch outcomes recorded on the outcome attribute
const (
	OutcomeSuccess = "success"
	OutcomeHTTP    = "http_error"
	OutcomeTimeout = "timeout"
	OutcomeInvalid = "invalid"
	OutcomeNetwork = "network_error"
)

// FetchMetrics holds the instruments for outbound registry fetches
type FetchMetrics struct {
	fetchDuration metric.Float64Histogram
	fetchesTotal  metric.Int64Counter
}

// NewFetchMetrics creates the fetch instruments.
// If provider is nil, it returns nil (no-op metrics).
func NewFetchMetrics(provider metric.MeterProvider) (*FetchMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(FetchMetricsMeterName)

	fetchDuration, err := meter.Float64Histogram(
		"chadcn_registry_fetch_duration_seconds",
		metric.WithDescription("Duration of registry document fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2, 3, 4, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	fetchesTotal, err := meter.Int64Counter(
		"chadcn_registry_fetches_total",
		metric.WithDescription("Total number of registry document fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, err
	}

	return &FetchMetrics{
		fetchDuration: fetchDuration,
		fetchesTotal:  fetchesTotal,
	}, nil
}

// RecordFetch records one fetch and its outcome
func (m *FetchMetrics) RecordFetch(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.fetchDuration.Record(ctx, duration.Seconds(), attrs)
	m.fetchesTotal.Add(ctx, 1, attrs)
}

// CatalogMetrics holds the instruments for listing refreshes
type CatalogMetrics struct {
	listings metric.Int64Gauge
	refresh  metric.Float64Histogram
}

// NewCatalogMetrics creates the catalog instruments.
// If provider is nil, it returns nil (no-op metrics).
func NewCatalogMetrics(provider metric.MeterProvider) (*CatalogMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CatalogMetricsMeterName)

	listings, err := meter.Int64Gauge(
		"chadcn_catalog_listings",
		metric.WithDescription("Number of listings after the last refresh, by state"),
		metric.WithUnit("{listing}"),
	)
	if err != nil {
		return nil, err
	}

	refresh, err := meter.Float64Histogram(
		"chadcn_catalog_refresh_duration_seconds",
		metric.WithDescription("Duration of a full catalog refresh in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	return &CatalogMetrics{listings: listings, refresh: refresh}, nil
}

// RecordRefresh records the loaded and failed listing counts of one refresh
func (m *CatalogMetrics) RecordRefresh(ctx context.Context, loaded, failed int, duration time.Duration) {
	if m == nil {
		return
	}

	m.listings.Record(ctx, int64(loaded), metric.WithAttributes(attribute.String("state", "loaded")))
	m.listings.Record(ctx, int64(failed), metric.WithAttributes(attribute.String("state", "failed")))
	m.refresh.Record(ctx, duration.Seconds())
}
