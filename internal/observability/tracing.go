package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with query-engine span creation
// methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartCompile starts a span for the compilation phase: bind resolution,
// source lowering, constraint lowering and ordering lowering.
func (t *Tracer) StartCompile(ctx context.Context, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "qom.compile", trace.WithAttributes(attrs...))
}

// StartExecute starts a span for the execution phase: producing the result
// sequence against the index.
func (t *Tracer) StartExecute(ctx context.Context, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "qom.execute", trace.WithAttributes(attrs...))
}

// EndSpan completes a span, recording err when non-nil.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
