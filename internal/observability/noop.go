package observability

import (
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{
		tracer:      tracenoop.NewTracerProvider().Tracer(""),
		serviceName: "",
	}
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("")
	m := &Metrics{}

	// Note: noop meter never returns errors, but we must check them to satisfy the linter.
	m.queryDuration, _ = meter.Float64Histogram("qom.query.duration") //nolint:errcheck
	m.queryCount, _ = meter.Int64Counter("qom.query.count")           //nolint:errcheck
	m.rowCount, _ = meter.Int64Histogram("qom.result.rows")           //nolint:errcheck
	m.errorCount, _ = meter.Int64Counter("qom.error.count")           //nolint:errcheck

	return m
}
