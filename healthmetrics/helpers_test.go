package healthmetrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/healthotel/health"
)

// countingEngine numbers its executions and builds a report for each one.
type countingEngine struct {
	mu    sync.Mutex
	calls int
	build func(n int) (*health.Report, error)
}

func (e *countingEngine) CheckHealth(ctx context.Context) (*health.Report, error) {
	e.mu.Lock()
	e.calls++
	n := e.calls
	e.mu.Unlock()
	return e.build(n)
}

func (e *countingEngine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// runEngine returns an engine whose nth report has one healthy "db" entry
// with a "run" metadata pair of n and a duration of n seconds.
func runEngine() *countingEngine {
	return &countingEngine{
		build: func(n int) (*health.Report, error) {
			return health.NewReport(health.Entry{
				Name: "db",
				Result: health.Healthy("ok").
					WithDuration(time.Duration(n) * time.Second).
					WithMetadata(health.KV("run", n)),
			}), nil
		},
	}
}

// scenarioReport is the db/cache report used across tests.
func scenarioReport() *health.Report {
	return health.NewReport(
		health.Entry{
			Name:   "db",
			Result: health.Healthy("ok").WithDuration(123 * time.Millisecond),
		},
		health.Entry{
			Name: "cache",
			Result: health.Degraded("slow").
				WithDuration(50 * time.Millisecond).
				WithMetadata(health.KV("tenant", "t1")),
		},
	)
}

func staticEngine(r *health.Report) *countingEngine {
	return &countingEngine{
		build: func(int) (*health.Report, error) { return r, nil },
	}
}

func newTestMeter(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader, mp
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// gaugePoints returns the gauge data points keyed by the name label.
func gaugePoints(t *testing.T, rm metricdata.ResourceMetrics, metricName string) map[string]metricdata.DataPoint[float64] {
	t.Helper()
	m := findMetric(rm, metricName)
	if m == nil {
		t.Fatalf("%s metric not found", metricName)
	}
	g, ok := m.Data.(metricdata.Gauge[float64])
	if !ok {
		t.Fatalf("expected Gauge[float64], got %T", m.Data)
	}

	points := make(map[string]metricdata.DataPoint[float64], len(g.DataPoints))
	for _, dp := range g.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key(NameLabel))
		if !ok {
			t.Fatalf("data point without %q attribute: %v", NameLabel, dp.Attributes)
		}
		points[v.AsString()] = dp
	}
	return points
}

// attrMap flattens attributes for comparisons that ignore order.
func attrMap(attrs []attribute.KeyValue) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.Emit()
	}
	return out
}

// runOf returns the "run" metadata label of the single observation.
func runOf(t *testing.T, obs []Observation) int64 {
	t.Helper()
	if len(obs) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(obs))
	}
	for _, kv := range obs[0].Attributes {
		if kv.Key == "run" {
			return kv.Value.AsInt64()
		}
	}
	t.Fatal("run attribute not found")
	return 0
}
