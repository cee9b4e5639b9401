package metrics

import (
	"context"

	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/tigerroll/paddock/pkg/batch/core/config"
	metrics "github.com/tigerroll/paddock/pkg/batch/core/metrics"
)

func provideTracerProvider(lc fx.Lifecycle, cfg *config.Config) (trace.TracerProvider, error) {
	tp, shutdown, err := NewTracerProvider(context.Background(), cfg.Paddock.Observability)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return tp, nil
}

func provideMeterProvider(lc fx.Lifecycle, cfg *config.Config) (otelmetric.MeterProvider, error) {
	mp, shutdown, err := NewMeterProvider(context.Background(), cfg.Paddock.Observability)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return mp, nil
}

func provideRecorder(prom *PrometheusRecorder, mp otelmetric.MeterProvider) (metrics.MetricRecorder, error) {
	otelRecorder, err := NewOpenTelemetryRecorder(mp)
	if err != nil {
		return nil, err
	}
	return MultiRecorder{prom, otelRecorder}, nil
}

// Module provides the Prometheus recorder, the OpenTelemetry providers, and the
// metrics.MetricRecorder / metrics.Tracer used by the runtime.
var Module = fx.Options(
	fx.Provide(
		NewPrometheusRecorder,
		provideTracerProvider,
		provideMeterProvider,
		provideRecorder,
		fx.Annotate(
			NewOpenTelemetryTracer,
			fx.As(new(metrics.Tracer)),
		),
	),
)
