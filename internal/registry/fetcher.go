package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/chadcn/registry-catalog/internal/httpclient"
	"github.com/chadcn/registry-catalog/internal/logger"
	"github.com/chadcn/registry-catalog/internal/otel"
	"github.com/chadcn/registry-catalog/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_fetcher.go -package=mocks -source=fetcher.go Fetcher

// Fetcher retrieves registry documents.
type Fetcher interface {
	// Fetch returns the parsed document at url, or nil on any failure.
	// It never returns an error and never panics; failures are logged.
	Fetch(ctx context.Context, url string) *Document
}

// HTTPFetcher fetches documents over HTTP with a bounded deadline.
type HTTPFetcher struct {
	client         httpclient.Client
	validateSchema bool
	tracer         trace.Tracer
	metrics        *telemetry.FetchMetrics
}

// FetcherOption configures an HTTPFetcher
type FetcherOption func(*HTTPFetcher)

// WithSchemaValidation rejects documents that do not match the registry schema
func WithSchemaValidation(enabled bool) FetcherOption {
	return func(f *HTTPFetcher) {
		f.validateSchema = enabled
	}
}

// WithTracer records a span per fetch
func WithTracer(tracer trace.Tracer) FetcherOption {
	return func(f *HTTPFetcher) {
		f.tracer = tracer
	}
}

// WithFetchMetrics records fetch duration and outcome
func WithFetchMetrics(m *telemetry.FetchMetrics) FetcherOption {
	return func(f *HTTPFetcher) {
		f.metrics = m
	}
}

// NewHTTPFetcher returns a fetcher using client. A nil client gets the
// default client with the 5 second deadline.
func NewHTTPFetcher(client httpclient.Client, opts ...FetcherOption) *HTTPFetcher {
	if client == nil {
		client = httpclient.NewDefaultClient(httpclient.DefaultTimeout)
	}
	f := &HTTPFetcher{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (doc *Document) {
	start := time.Now()
	ctx, span := otel.StartSpan(ctx, f.tracer, "registry.Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(otel.AttrRegistryURL.String(rawURL)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while fetching: %v", r)
			otel.RecordError(span, err)
			f.metrics.RecordFetch(ctx, telemetry.OutcomeInvalid, time.Since(start))
			logger.Warnf("Skipping registry at %s: %v", rawURL, err)
			doc = nil
		}
	}()

	doc, err := f.fetch(ctx, rawURL)
	f.metrics.RecordFetch(ctx, outcomeOf(err), time.Since(start))
	if err != nil {
		otel.RecordError(span, err)
		if status := httpclient.StatusCode(err); status != 0 {
			span.SetAttributes(otel.AttrHTTPStatus.Int(status))
			logger.Warnf("Registry at %s returned status %d: %s", rawURL, status, http.StatusText(status))
		} else {
			logger.Warnf("Skipping registry at %s: %v", rawURL, err)
		}
		return nil
	}

	logger.Infof("Successfully fetched registry from %s", rawURL)
	return doc
}

func (f *HTTPFetcher) fetch(ctx context.Context, rawURL string) (*Document, error) {
	if err := validateURL(rawURL); err != nil {
		return nil, err
	}

	body, err := f.client.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	value, err := decodeJSON(body)
	if err != nil {
		return nil, err
	}

	if f.validateSchema {
		if err := ValidateDocument(value); err != nil {
			return nil, err
		}
	}

	return &Document{URL: rawURL, Raw: body, Value: value}, nil
}

// errInvalidDocument wraps payloads that are not a single JSON value
var errInvalidDocument = errors.New("response is not valid JSON")

func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidDocument, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", errInvalidDocument)
	}
	return value, nil
}

// errInvalidURL is returned for URLs that are not absolute http(s) URLs
var errInvalidURL = errors.New("invalid registry URL")

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidURL, err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidURL, rawURL)
	}
	return nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return telemetry.OutcomeSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return telemetry.OutcomeTimeout
	case httpclient.StatusCode(err) != 0:
		return telemetry.OutcomeHTTP
	case errors.Is(err, errInvalidDocument), errors.Is(err, ErrSchemaValidation), errors.Is(err, errInvalidURL):
		return telemetry.OutcomeInvalid
	default:
		return telemetry.OutcomeNetwork
	}
}
