package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestReader(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestLimiterMetrics_RecordsDecisionsAndUsage(t *testing.T) {
	reader := newTestReader(t)
	m, err := NewLimiterMetrics("gate-test")
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	ctx := context.Background()
	m.RecordDecision(ctx, "api", "admitted")
	m.RecordDecision(ctx, "api", "rejected")
	m.RecordUsage(ctx, "api", "admitted", 3, 5)

	metrics := collectMetrics(t, reader)

	dec, ok := metrics["ratelimit_decisions_total"]
	if !ok {
		t.Fatal("decision counter was not collected")
	}
	sum, ok := dec.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("decision counter data type = %T", dec.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Fatalf("decision count = %d, want 2", total)
	}

	use, ok := metrics["ratelimit_window_usage"]
	if !ok {
		t.Fatal("usage histogram was not collected")
	}
	hist, ok := use.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("usage histogram data type = %T", use.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("usage data points = %d, want 1", len(hist.DataPoints))
	}
	dp := hist.DataPoints[0]
	if dp.Count != 1 {
		t.Fatalf("usage count = %d, want 1", dp.Count)
	}
	if dp.Sum != 0.6 {
		t.Fatalf("usage sum = %v, want 0.6 (3 of 5)", dp.Sum)
	}
}

func TestLimiterMetrics_UsageIgnoresNonPositiveLimit(t *testing.T) {
	reader := newTestReader(t)
	m, err := NewLimiterMetrics("gate-test")
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.RecordUsage(context.Background(), "api", "fail_open", 0, 0)

	metrics := collectMetrics(t, reader)
	if use, ok := metrics["ratelimit_window_usage"]; ok {
		if hist, ok := use.Data.(metricdata.Histogram[float64]); ok && len(hist.DataPoints) != 0 {
			t.Fatalf("expected no usage samples for a zero limit, got %d", len(hist.DataPoints))
		}
	}
}

func TestLimiterMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *LimiterMetrics
	ctx := context.Background()
	m.RecordDecision(ctx, "api", "admitted")
	m.RecordUsage(ctx, "api", "admitted", 1, 5)
}
