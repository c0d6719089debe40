package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/chadcn/registry-catalog/internal/logger"
	"github.com/chadcn/registry-catalog/internal/otel"
	"github.com/chadcn/registry-catalog/internal/registry"
	"github.com/chadcn/registry-catalog/internal/telemetry"
)

// DefaultConcurrency bounds the number of registries fetched at once.
const DefaultConcurrency = 8

var (
	// ErrListingNotFound is returned by Detail when no listing has the id.
	ErrListingNotFound = errors.New("listing not found")
	// ErrRegistryUnavailable is returned by Detail when the registry could not
	// be fetched or is not a JSON object.
	ErrRegistryUnavailable = errors.New("registry unavailable")
)

// Detail is everything the detail page shows for one listing.
type Detail struct {
	Listing     Listing
	Registry    registry.Registry
	Maintainers []registry.Maintainer
	// Components are the entries of "components" when present, else the items.
	Components []registry.Item
}

// Controller drives the fetch, augment and filter cycle of the catalog pages.
type Controller struct {
	fetcher     registry.Fetcher
	source      Source
	concurrency int
	tracer      trace.Tracer
	metrics     *telemetry.CatalogMetrics
}

// Option configures a Controller
type Option func(*Controller)

// WithConcurrency bounds in-flight fetches. Values below 1 keep the default.
func WithConcurrency(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithTracer records spans for loads and refreshes
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = tracer
	}
}

// WithCatalogMetrics records refresh outcomes
func WithCatalogMetrics(m *telemetry.CatalogMetrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// NewController returns a controller fetching with fetcher and listing from source.
func NewController(fetcher registry.Fetcher, source Source, opts ...Option) *Controller {
	c := &Controller{
		fetcher:     fetcher,
		source:      source,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the listing source.
func (c *Controller) Source() Source {
	return c.source
}

// Ready reports whether the listing source can be read.
func (c *Controller) Ready(ctx context.Context) error {
	if _, err := c.source.List(ctx); err != nil {
		return fmt.Errorf("listing source unavailable: %w", err)
	}
	return nil
}

// Load reads the listings from the source and refreshes them.
func (c *Controller) Load(ctx context.Context) ([]Listing, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "catalog.Load")
	defer span.End()

	listings, err := c.source.List(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}
	c.Refresh(ctx, listings)
	return listings, nil
}

// Refresh fetches every listing concurrently and updates each in place with
// either its display fields or the FailedToLoad marker. It waits for all
// fetches; one failure never affects another listing.
func (c *Controller) Refresh(ctx context.Context, listings []Listing) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "catalog.Refresh",
		trace.WithAttributes(otel.AttrListingCount.Int(len(listings))),
	)
	defer span.End()
	start := time.Now()

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i := range listings {
		g.Go(func() error {
			c.refreshOne(ctx, &listings[i])
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i := range listings {
		if listings[i].Failed() {
			failed++
		}
	}
	span.SetAttributes(otel.AttrFailedCount.Int(failed))
	if c.metrics != nil {
		c.metrics.RecordRefresh(ctx, len(listings)-failed, failed, time.Since(start))
	}
	logger.FromContext(ctx).V(1).Info("refreshed listings", "total", len(listings), "failed", failed)
}

func (c *Controller) refreshOne(ctx context.Context, l *Listing) {
	doc := c.fetcher.Fetch(ctx, l.URL)
	if doc == nil {
		l.Name, l.Description, l.Author, l.ComponentCount = "", "", "", 0
		l.Error = FailedToLoad
		return
	}
	augment(l, doc)
}

// augment copies the display fields from the raw document. Fields of the
// wrong type read as empty.
func augment(l *Listing, doc *registry.Document) {
	raw := []byte(doc.Raw)
	l.Name = stringAt(raw, "name")
	l.Description = stringAt(raw, "description")
	l.Author = stringAt(raw, "maintainers.0.name")
	l.ComponentCount = registry.ComponentCount(raw)
	l.Error = ""
}

func stringAt(raw []byte, path string) string {
	res := gjson.GetBytes(raw, path)
	if res.Type != gjson.String {
		return ""
	}
	return res.Str
}

// Detail looks up id in the source and fetches its registry.
func (c *Controller) Detail(ctx context.Context, id string) (*Detail, error) {
	ctx, span := otel.StartSpan(ctx, c.tracer, "catalog.Detail",
		trace.WithAttributes(otel.AttrListingID.String(id)),
	)
	defer span.End()

	listings, err := c.source.List(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to load listings: %w", err)
	}

	idx := -1
	for i := range listings {
		if listings[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrListingNotFound, id)
	}
	listing := listings[idx]

	doc := c.fetcher.Fetch(ctx, listing.URL)
	raw, ok := doc.Object()
	if !ok {
		err := fmt.Errorf("%w: %s", ErrRegistryUnavailable, listing.URL)
		otel.RecordError(span, err)
		return nil, err
	}
	augment(&listing, doc)

	reg := registry.Normalize(raw)
	span.SetAttributes(
		attribute.String("registry.name", reg.Name),
		otel.AttrItemCount.Int(len(reg.Items)),
	)
	return &Detail{
		Listing:     listing,
		Registry:    reg,
		Maintainers: registry.Maintainers(raw),
		Components:  registry.Components(raw),
	}, nil
}
