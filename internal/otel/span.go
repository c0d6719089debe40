// Package otel holds span helpers shared by the fetcher, catalog and data layers.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on catalog spans.
const (
	AttrRegistryURL  = attribute.Key("registry.url")
	AttrListingID    = attribute.Key("listing.id")
	AttrItemCount    = attribute.Key("registry.item_count")
	AttrHTTPStatus   = attribute.Key("http.response.status_code")
	AttrListingCount = attribute.Key("catalog.listing_count")
	AttrFailedCount  = attribute.Key("catalog.failed_count")
	AttrQuery        = attribute.Key("catalog.query")
)

// StartSpan starts a span on tracer, or returns the span already in ctx when
// tracer is nil so callers need not check.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed. The status description stays generic so
// URLs and connection strings only appear in the exception event.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}
