package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/healthotel/health"
)

// CollectSpanName is the name of the span wrapping one health check run.
const CollectSpanName = "healthcheck.collect"

// Tracer wraps OpenTelemetry tracing around health check runs.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndCollect must be best-effort and must not panic.
type Tracer interface {
	// StartCollect starts a span for one health check run.
	StartCollect(ctx context.Context) (context.Context, trace.Span)

	// EndCollect ends the span, recording the report summary or error.
	EndCollect(span trace.Span, report *health.Report, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartCollect(ctx context.Context) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, CollectSpanName,
		trace.WithAttributes(attribute.Bool("healthcheck.error", false)),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

func (t *tracerImpl) EndCollect(span trace.Span, report *health.Report, err error) {
	if report != nil {
		span.SetAttributes(
			attribute.Int("healthcheck.entries", report.Len()),
			attribute.String("healthcheck.status", report.Status.String()),
		)
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("healthcheck.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartCollect(ctx context.Context) (context.Context, trace.Span) {
	return t.noop.Start(ctx, CollectSpanName)
}

func (t *noopTracer) EndCollect(span trace.Span, report *health.Report, err error) {
	span.End()
}
