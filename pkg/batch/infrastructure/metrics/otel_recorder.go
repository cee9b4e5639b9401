package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/paddock/pkg/batch/core/metrics"
)

// OpenTelemetryRecorder mirrors the Prometheus instruments onto an OpenTelemetry MeterProvider
// so that runs can be pushed to an OTLP collector.
type OpenTelemetryRecorder struct {
	jobDuration       otelmetric.Float64Histogram
	stepDuration      otelmetric.Float64Histogram
	writes            otelmetric.Int64Counter
	filters           otelmetric.Int64Counter
	skips             otelmetric.Int64Counter
	operationDuration otelmetric.Float64Histogram
}

// NewOpenTelemetryRecorder creates the instruments on provider.
func NewOpenTelemetryRecorder(provider otelmetric.MeterProvider) (*OpenTelemetryRecorder, error) {
	meter := provider.Meter(instrumentationName)
	r := &OpenTelemetryRecorder{}
	var err error
	if r.jobDuration, err = meter.Float64Histogram("batch.job.duration", otelmetric.WithUnit("s"),
		otelmetric.WithDescription("Duration of batch job executions.")); err != nil {
		return nil, err
	}
	if r.stepDuration, err = meter.Float64Histogram("batch.step.duration", otelmetric.WithUnit("s"),
		otelmetric.WithDescription("Duration of batch step executions.")); err != nil {
		return nil, err
	}
	if r.writes, err = meter.Int64Counter("batch.step.writes",
		otelmetric.WithDescription("Records written by step.")); err != nil {
		return nil, err
	}
	if r.filters, err = meter.Int64Counter("batch.step.filtered",
		otelmetric.WithDescription("Records dropped by step filters.")); err != nil {
		return nil, err
	}
	if r.skips, err = meter.Int64Counter("batch.unit.skips",
		otelmetric.WithDescription("Units of work skipped.")); err != nil {
		return nil, err
	}
	if r.operationDuration, err = meter.Float64Histogram("batch.operation.duration", otelmetric.WithUnit("s"),
		otelmetric.WithDescription("Duration of named operations.")); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *OpenTelemetryRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {}

func (r *OpenTelemetryRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	if execution.EndTime == nil {
		return
	}
	r.jobDuration.Record(ctx, execution.EndTime.Sub(execution.StartTime).Seconds(), otelmetric.WithAttributes(
		attribute.String("job_name", execution.JobName),
		attribute.String("status", execution.Status.String()),
	))
}

func (r *OpenTelemetryRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {}

func (r *OpenTelemetryRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution) {
	if execution.EndTime == nil {
		return
	}
	r.stepDuration.Record(ctx, execution.Duration().Seconds(), otelmetric.WithAttributes(
		attribute.String("step_name", execution.StepName),
		attribute.String("status", execution.Status.String()),
	))
}

func (r *OpenTelemetryRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	r.writes.Add(ctx, int64(count), otelmetric.WithAttributes(attribute.String("step_name", stepName)))
}

func (r *OpenTelemetryRecorder) RecordItemFilter(ctx context.Context, stepName string, count int) {
	r.filters.Add(ctx, int64(count), otelmetric.WithAttributes(attribute.String("step_name", stepName)))
}

func (r *OpenTelemetryRecorder) RecordUnitSkip(ctx context.Context, stepName string, reason string) {
	r.skips.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("step_name", stepName),
		attribute.String("reason", reason),
	))
}

func (r *OpenTelemetryRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	attrs := make([]attribute.KeyValue, 0, len(tags)+1)
	attrs = append(attrs, attribute.String("operation", name))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	r.operationDuration.Record(ctx, duration.Seconds(), otelmetric.WithAttributes(attrs...))
}

var _ metrics.MetricRecorder = (*OpenTelemetryRecorder)(nil)
