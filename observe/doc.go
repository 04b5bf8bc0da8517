// Package observe provides the observability plumbing around health check
// collection.
//
// It builds the OpenTelemetry MeterProvider that health gauges are registered
// on, the tracer used to span each health check run, and the structured
// logger shared by the other packages. Middleware wraps a health check run
// with a span, run counters, and a log line.
package observe
