// Package exporters provides factory functions for creating OpenTelemetry exporters.
package exporters

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// readerConfig holds options for NewMetricsReader.
type readerConfig struct {
	interval   time.Duration
	writer     io.Writer
	registerer prometheus.Registerer
}

// ReaderOption configures NewMetricsReader.
type ReaderOption func(*readerConfig)

// WithInterval sets the export interval of periodic readers (stdout, otlp).
// It has no effect on the pull-based prometheus reader.
func WithInterval(d time.Duration) ReaderOption {
	return func(c *readerConfig) {
		c.interval = d
	}
}

// WithWriter sets the destination of the stdout metrics exporter.
func WithWriter(w io.Writer) ReaderOption {
	return func(c *readerConfig) {
		c.writer = w
	}
}

// WithRegisterer sets the Prometheus registerer the prometheus reader
// registers its collector with. Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(reg prometheus.Registerer) ReaderOption {
	return func(c *readerConfig) {
		c.registerer = reg
	}
}

// NewTracingExporter creates a trace span exporter based on the exporter name.
// Supported exporters: stdout, otlp, jaeger, none
func NewTracingExporter(ctx context.Context, name string) (sdktrace.SpanExporter, error) {
	switch name {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))

	case "otlp":
		endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		if endpoint == "" {
			endpoint = os.Getenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		}
		if endpoint == "" {
			return nil, fmt.Errorf("OTLP endpoint not configured: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		}
		return otlptracegrpc.New(ctx)

	case "jaeger":
		// Jaeger ingests OTLP natively
		endpoint := os.Getenv("OTEL_EXPORTER_JAEGER_ENDPOINT")
		if endpoint == "" {
			return nil, fmt.Errorf("Jaeger endpoint not configured: set OTEL_EXPORTER_JAEGER_ENDPOINT")
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint))

	case "none", "":
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))

	default:
		return nil, fmt.Errorf("unknown exporter: %q", name)
	}
}

// NewMetricsReader creates a metrics reader based on the exporter name.
// Supported exporters: stdout, otlp, prometheus, none
//
// Push readers (stdout, otlp) collect every interval; the prometheus reader
// collects on each scrape. Either way, each collection invokes every
// registered gauge callback once.
func NewMetricsReader(ctx context.Context, name string, opts ...ReaderOption) (sdkmetric.Reader, error) {
	cfg := readerConfig{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var periodicOpts []sdkmetric.PeriodicReaderOption
	if cfg.interval > 0 {
		periodicOpts = append(periodicOpts, sdkmetric.WithInterval(cfg.interval))
	}

	switch name {
	case "stdout":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.writer))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp, periodicOpts...), nil

	case "otlp":
		endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
		if endpoint == "" {
			endpoint = os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
		}
		if endpoint == "" {
			return nil, fmt.Errorf("OTLP metrics endpoint not configured: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
		}
		exp, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
		}
		return sdkmetric.NewPeriodicReader(exp, periodicOpts...), nil

	case "prometheus":
		var promOpts []otelprom.Option
		if cfg.registerer != nil {
			promOpts = append(promOpts, otelprom.WithRegisterer(cfg.registerer))
		}
		exp, err := otelprom.New(promOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		return exp, nil

	case "none", "":
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
		if err != nil {
			return nil, err
		}
		return sdkmetric.NewPeriodicReader(exp, periodicOpts...), nil

	default:
		return nil, fmt.Errorf("unknown metrics exporter: %q", name)
	}
}
