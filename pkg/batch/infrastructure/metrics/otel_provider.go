package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/tigerroll/paddock/pkg/batch/core/config"
	logger "github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

const (
	ExporterNone     = "none"
	ExporterOTLPGRPC = "otlpgrpc"
	ExporterOTLPHTTP = "otlphttp"
)

// ShutdownFunc flushes and stops a provider.
type ShutdownFunc func(context.Context) error

func newResource(serviceName string) *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", serviceName))
}

// NewTracerProvider builds a TracerProvider for the configured exporter.
// With exporter "none" a no-op provider is returned.
func NewTracerProvider(ctx context.Context, cfg config.ObservabilityConfig) (trace.TracerProvider, ShutdownFunc, error) {
	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch cfg.Tracing.Exporter {
	case "", ExporterNone:
		return tracenoop.NewTracerProvider(), func(context.Context) error { return nil }, nil
	case ExporterOTLPGRPC:
		opts := []otlptracegrpc.Option{}
		if cfg.Tracing.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Tracing.Endpoint))
		}
		if cfg.Tracing.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	case ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{}
		if cfg.Tracing.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Tracing.Endpoint))
		}
		if cfg.Tracing.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	default:
		return nil, nil, fmt.Errorf("unknown tracing exporter %q", cfg.Tracing.Exporter)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s trace exporter: %w", cfg.Tracing.Exporter, err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(newResource(cfg.ServiceName)),
	)
	logger.Infof("Tracing: exporting spans via %s to %s", cfg.Tracing.Exporter, cfg.Tracing.Endpoint)
	return tp, tp.Shutdown, nil
}

// NewMeterProvider builds a MeterProvider for the configured exporter.
// With exporter "none" a no-op provider is returned.
func NewMeterProvider(ctx context.Context, cfg config.ObservabilityConfig) (otelmetric.MeterProvider, ShutdownFunc, error) {
	var (
		exporter sdkmetric.Exporter
		err      error
	)
	switch cfg.Metrics.Exporter {
	case "", ExporterNone:
		return metricnoop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	case ExporterOTLPGRPC:
		opts := []otlpmetricgrpc.Option{}
		if cfg.Metrics.Endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(cfg.Metrics.Endpoint))
		}
		if cfg.Metrics.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		exporter, err = otlpmetricgrpc.New(ctx, opts...)
	case ExporterOTLPHTTP:
		opts := []otlpmetrichttp.Option{}
		if cfg.Metrics.Endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(cfg.Metrics.Endpoint))
		}
		if cfg.Metrics.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		exporter, err = otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, nil, fmt.Errorf("unknown metrics exporter %q", cfg.Metrics.Exporter)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s metric exporter: %w", cfg.Metrics.Exporter, err)
	}

	interval := time.Duration(cfg.Metrics.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(newResource(cfg.ServiceName)),
	)
	logger.Infof("Metrics: exporting via %s to %s every %s", cfg.Metrics.Exporter, cfg.Metrics.Endpoint, interval)
	return mp, mp.Shutdown, nil
}
