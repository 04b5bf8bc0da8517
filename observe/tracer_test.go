package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/healthotel/health"
)

func newRecordingTracer() (*tracetest.SpanRecorder, *sdktrace.TracerProvider, Tracer) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return recorder, tp, NewTracer(tp.Tracer("test"))
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[string]attribute.Value {
	out := make(map[string]attribute.Value)
	for _, a := range s.Attributes() {
		out[string(a.Key)] = a.Value
	}
	return out
}

// TestTracer_SpanAttributes verifies the report summary is recorded on the span.
func TestTracer_SpanAttributes(t *testing.T) {
	recorder, _, tr := newRecordingTracer()

	report := health.NewReport(
		health.Entry{Name: "db", Result: health.Healthy("ok")},
		health.Entry{Name: "cache", Result: health.Degraded("slow")},
	)

	_, span := tr.StartCollect(context.Background())
	tr.EndCollect(span, report, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Name() != CollectSpanName {
		t.Errorf("expected span name %q, got %q", CollectSpanName, s.Name())
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("expected ok status, got %v", s.Status().Code)
	}

	attrs := spanAttrs(s)
	if v, ok := attrs["healthcheck.entries"]; !ok || v.AsInt64() != 2 {
		t.Errorf("expected healthcheck.entries=2, got %v", v)
	}
	if v, ok := attrs["healthcheck.status"]; !ok || v.AsString() != "degraded" {
		t.Errorf("expected healthcheck.status='degraded', got %v", v)
	}
	if v, ok := attrs["healthcheck.error"]; !ok || v.AsBool() {
		t.Errorf("expected healthcheck.error=false, got %v", v)
	}
}

// TestTracer_ContextPropagation verifies parent span is propagated.
func TestTracer_ContextPropagation(t *testing.T) {
	recorder, tp, tr := newRecordingTracer()

	parentCtx, parentSpan := tp.Tracer("test").Start(context.Background(), "parent")

	_, childSpan := tr.StartCollect(parentCtx)
	tr.EndCollect(childSpan, health.NewReport(), nil)
	parentSpan.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	var child sdktrace.ReadOnlySpan
	for _, s := range spans {
		if s.Name() == CollectSpanName {
			child = s
			break
		}
	}
	if child == nil {
		t.Fatal("child span not found")
	}

	if child.Parent().TraceID() != parentSpan.SpanContext().TraceID() {
		t.Error("child span should have same trace ID as parent")
	}
	if !child.Parent().SpanID().IsValid() {
		t.Error("child span should have valid parent span ID")
	}
}

// TestTracer_ErrorRecording verifies error sets span status and attribute.
func TestTracer_ErrorRecording(t *testing.T) {
	recorder, _, tr := newRecordingTracer()

	_, span := tr.StartCollect(context.Background())
	tr.EndCollect(span, nil, errors.New("engine unavailable"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	s := spans[0]
	if s.Status().Code != codes.Error {
		t.Errorf("expected error status, got %v", s.Status().Code)
	}
	if s.Status().Description != "engine unavailable" {
		t.Errorf("status description = %q", s.Status().Description)
	}

	attrs := spanAttrs(s)
	if v := attrs["healthcheck.error"]; !v.AsBool() {
		t.Error("expected healthcheck.error=true")
	}
	if _, ok := attrs["healthcheck.entries"]; ok {
		t.Error("nil report should not record entries")
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestNoopTracer(t *testing.T) {
	tr := newNoopTracer()
	ctx, span := tr.StartCollect(context.Background())
	if ctx == nil || span == nil {
		t.Fatal("expected context and span")
	}
	tr.EndCollect(span, nil, errors.New("ignored"))
}
