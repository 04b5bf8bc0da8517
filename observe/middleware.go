package observe

import (
	"context"
	"time"

	"github.com/jonwraymond/healthotel/health"
)

// CheckHealthFunc runs the health checks and returns a report, such as
// (*health.Aggregator).CheckHealth.
type CheckHealthFunc func(ctx context.Context) (*health.Report, error)

// Middleware wraps health check runs with tracing, metrics, and logging.
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe CheckHealthFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
//   - Ownership: Reports are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a CheckHealthFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn CheckHealthFunc) CheckHealthFunc {
	return func(ctx context.Context) (*health.Report, error) {
		ctx, span := m.tracer.StartCollect(ctx)

		start := time.Now()
		report, err := fn(ctx)
		duration := time.Since(start)

		m.tracer.EndCollect(span, report, err)
		m.metrics.RecordCollect(ctx, report, duration, err)

		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			m.logger.Error(ctx, "health check run failed", fields...)
			return report, err
		}

		fields = append(fields,
			Field{Key: "entries", Value: report.Len()},
			Field{Key: "status", Value: statusOf(report)},
		)
		if statusOf(report) == health.StatusUnhealthy.String() {
			m.logger.Warn(ctx, "health check run completed", fields...)
		} else {
			m.logger.Debug(ctx, "health check run completed", fields...)
		}

		return report, nil
	}
}

func statusOf(report *health.Report) string {
	if report == nil {
		return "unknown"
	}
	return report.Status.String()
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
