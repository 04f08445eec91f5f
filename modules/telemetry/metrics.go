package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LimiterMetrics holds the instruments used to observe rate limit decisions.
type LimiterMetrics struct {
	decisions metric.Int64Counter
	usage     metric.Float64Histogram
}

// NewLimiterMetrics creates the decision instruments on the service meter.
func NewLimiterMetrics(serviceName string) (*LimiterMetrics, error) {
	meter := otel.Meter(serviceName)

	decisions, err := meter.Int64Counter(
		"ratelimit_decisions_total",
		metric.WithDescription("Total number of rate limit decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	usage, err := meter.Float64Histogram(
		"ratelimit_window_usage",
		metric.WithDescription("Fraction of the window quota consumed at decision time"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, err
	}

	return &LimiterMetrics{decisions: decisions, usage: usage}, nil
}

// RecordDecision counts one decision for the given policy. Safe on a nil
// receiver so callers can leave metrics unconfigured.
func (m *LimiterMetrics) RecordDecision(ctx context.Context, policy, outcome string) {
	if m == nil {
		return
	}
	m.decisions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("policy", policy),
		attribute.String("outcome", outcome),
	))
}

// RecordUsage records how much of the window quota was consumed, as
// used/limit. Only meaningful for tracked decisions; callers skip it when no
// counter was consulted. Safe on a nil receiver.
func (m *LimiterMetrics) RecordUsage(ctx context.Context, policy, outcome string, used, limit int64) {
	if m == nil || limit <= 0 {
		return
	}
	m.usage.Record(ctx, float64(used)/float64(limit), metric.WithAttributes(
		attribute.String("policy", policy),
		attribute.String("outcome", outcome),
	))
}
