package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/healthotel/health"
)

// Instrument names recorded by Metrics.
const (
	CollectTotalName    = "healthcheck.collect.total"
	CollectErrorsName   = "healthcheck.collect.errors"
	CollectDurationName = "healthcheck.collect.duration"
)

// Metrics records how often and how long health check runs take. It counts
// actual engine executions, which lets operators confirm that one collection
// cycle runs the checks once.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	RecordCollect(ctx context.Context, report *health.Report, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
}

// NewMetrics creates the collection instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		CollectTotalName,
		metric.WithDescription("Total number of health check runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		CollectErrorsName,
		metric.WithDescription("Total number of failed health check runs"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		CollectDurationName,
		metric.WithDescription("Health check run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
	}, nil
}

func (m *metricsImpl) RecordCollect(ctx context.Context, report *health.Report, duration time.Duration, err error) {
	var opt metric.MeasurementOption
	if report != nil {
		opt = metric.WithAttributes(attribute.String("healthcheck.status", report.Status.String()))
	} else {
		opt = metric.WithAttributes(attribute.String("healthcheck.status", "unknown"))
	}

	m.totalCount.Add(ctx, 1, opt)

	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	m.durationHist.Record(ctx, duration.Seconds(), opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordCollect(ctx context.Context, report *health.Report, duration time.Duration, err error) {
}
