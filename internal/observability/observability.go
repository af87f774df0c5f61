// Package observability provides OpenTelemetry-based instrumentation for the
// query engine: spans around the compile and execute phases and metrics for
// query throughput, duration and result sizes.
//
// All observability features are opt-in. When not configured, no-op
// implementations are used with zero performance overhead.
package observability

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/XenoAmess/jackrabbit"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/XenoAmess/jackrabbit"
)

// Semantic attribute keys for query spans.
const (
	AttrSelectorCount = "qom.selector_count"
	AttrHasConstraint = "qom.has_constraint"
	AttrOrderingCount = "qom.ordering_count"
	AttrColumnCount   = "qom.column_count"
	AttrBindVariables = "qom.bind_variables"
	AttrOffset        = "qom.offset"
	AttrLimit         = "qom.limit"
	AttrDocumentOrder = "qom.document_order"
	AttrRowCount      = "qom.row_count"
)

// SelectorCountAttr builds the selector-count attribute.
func SelectorCountAttr(n int) attribute.KeyValue {
	return attribute.Int(AttrSelectorCount, n)
}

// RowCountAttr builds the row-count attribute.
func RowCountAttr(n int64) attribute.KeyValue {
	return attribute.Int64(AttrRowCount, n)
}

// Config holds the observability configuration for the query engine.
type Config struct {
	// TracerProvider is the OpenTelemetry tracer provider.
	// If nil, tracing is disabled.
	TracerProvider trace.TracerProvider

	// MeterProvider is the OpenTelemetry meter provider.
	// If nil, metrics collection is disabled.
	MeterProvider metric.MeterProvider

	// ServiceName identifies this engine instance in traces and metrics.
	ServiceName string

	tracer  *Tracer
	metrics *Metrics
}

// Option is a functional option for configuring observability.
type Option func(*Config)

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *Config) {
		c.MeterProvider = mp
	}
}

// WithServiceName sets the service name for identification.
func WithServiceName(name string) Option {
	return func(c *Config) {
		c.ServiceName = name
	}
}

// NewConfig builds a Config from options, wiring noop instrumentation for
// anything left unset.
func NewConfig(opts ...Option) *Config {
	c := &Config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.TracerProvider != nil {
		c.tracer = NewTracer(c.TracerProvider, c.ServiceName)
	} else {
		c.tracer = NewNoopTracer()
	}
	if c.MeterProvider != nil {
		c.metrics = NewMetrics(c.MeterProvider)
	} else {
		c.metrics = NewNoopMetrics()
	}
	return c
}

// Tracer returns the configured tracer.
func (c *Config) Tracer() *Tracer {
	return c.tracer
}

// Metrics returns the configured metrics.
func (c *Config) Metrics() *Metrics {
	return c.metrics
}
