package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the query-engine metric instruments.
type Metrics struct {
	queryDuration metric.Float64Histogram
	queryCount    metric.Int64Counter
	rowCount      metric.Int64Histogram
	errorCount    metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Note: errors from meter instrument creation are unlikely in practice
	// and would only occur with invalid parameters. We use explicit checks
	// to satisfy the linter while continuing with partial metrics on error.
	var err error

	m.queryDuration, err = meter.Float64Histogram(
		"qom.query.duration",
		metric.WithDescription("Duration of query executions in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.queryDuration, _ = meter.Float64Histogram("qom.query.duration")
	}

	m.queryCount, err = meter.Int64Counter(
		"qom.query.count",
		metric.WithDescription("Total number of query executions"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		m.queryCount, _ = meter.Int64Counter("qom.query.count")
	}

	m.rowCount, err = meter.Int64Histogram(
		"qom.result.rows",
		metric.WithDescription("Number of rows yielded per query execution"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		m.rowCount, _ = meter.Int64Histogram("qom.result.rows")
	}

	m.errorCount, err = meter.Int64Counter(
		"qom.error.count",
		metric.WithDescription("Total number of failed query executions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter("qom.error.count")
	}

	return m
}

// RecordQuery records a completed execution.
func (m *Metrics) RecordQuery(ctx context.Context, duration time.Duration, rows int64, attrs ...attribute.KeyValue) {
	opt := metric.WithAttributes(attrs...)
	m.queryCount.Add(ctx, 1, opt)
	m.queryDuration.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
	if rows >= 0 {
		m.rowCount.Record(ctx, rows, opt)
	}
}

// RecordError records a failed execution.
func (m *Metrics) RecordError(ctx context.Context, attrs ...attribute.KeyValue) {
	m.errorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
}
