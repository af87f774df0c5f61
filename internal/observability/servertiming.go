package observability

import (
	"context"

	servertiming "github.com/mitchellh/go-server-timing"
)

// ServerTimingMetric is one timed phase of a request, reported through the
// Server-Timing response header when the handler chain carries timing state.
type ServerTimingMetric struct {
	metric *servertiming.Metric
}

// Stop ends the timed phase. Safe on the nil and no-op metric.
func (m *ServerTimingMetric) Stop() {
	if m != nil && m.metric != nil {
		m.metric.Stop()
	}
}

// StartServerTiming starts a named Server-Timing metric, e.g. around query
// compilation or row assembly. When the context has no timing state (no
// middleware installed) the returned metric is a no-op.
func StartServerTiming(ctx context.Context, name string) *ServerTimingMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &ServerTimingMetric{}
	}
	return &ServerTimingMetric{metric: timing.NewMetric(name).Start()}
}

// StartServerTimingWithDesc starts a named Server-Timing metric with a
// human-readable description.
func StartServerTimingWithDesc(ctx context.Context, name, description string) *ServerTimingMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &ServerTimingMetric{}
	}
	return &ServerTimingMetric{metric: timing.NewMetric(name).WithDesc(description).Start()}
}
