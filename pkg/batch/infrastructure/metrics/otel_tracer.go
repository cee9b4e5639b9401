package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/paddock/pkg/batch/core/metrics"
)

const instrumentationName = "github.com/tigerroll/paddock/pkg/batch"

// OpenTelemetryTracer is an implementation of metrics.Tracer using OpenTelemetry.
type OpenTelemetryTracer struct {
	tracer trace.Tracer
}

// NewOpenTelemetryTracer creates a tracer from provider.
func NewOpenTelemetryTracer(provider trace.TracerProvider) *OpenTelemetryTracer {
	return &OpenTelemetryTracer{tracer: provider.Tracer(instrumentationName)}
}

// StartJobSpan starts a new span for a JobExecution.
func (t *OpenTelemetryTracer) StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "job "+execution.JobName,
		trace.WithAttributes(
			attribute.String("batch.job.name", execution.JobName),
			attribute.String("batch.job.execution_id", execution.ID),
		))
	return ctx, func() {
		span.SetAttributes(attribute.String("batch.job.status", execution.Status.String()))
		if execution.Status == model.BatchStatusFailed {
			span.SetStatus(codes.Error, "job failed")
		}
		span.End()
	}
}

// StartStepSpan starts a new span for a StepExecution.
func (t *OpenTelemetryTracer) StartStepSpan(ctx context.Context, execution *model.StepExecution) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "step "+execution.StepName,
		trace.WithAttributes(
			attribute.String("batch.step.name", execution.StepName),
			attribute.String("batch.step.execution_id", execution.ID),
		))
	return ctx, func() {
		span.SetAttributes(
			attribute.String("batch.step.status", execution.Status.String()),
			attribute.Int("batch.step.read_count", execution.ReadCount),
			attribute.Int("batch.step.write_count", execution.WriteCount),
			attribute.Int("batch.step.filter_count", execution.FilterCount),
			attribute.Int("batch.step.skip_count", execution.SkipCount),
		)
		span.End()
	}
}

// RecordError records an error in the current span.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, trace.WithAttributes(attribute.String("batch.module", module)))
	span.SetStatus(codes.Error, err.Error())
}

// RecordEvent records an event in the current span.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

func toAttributes(in map[string]interface{}) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case string:
			out = append(out, attribute.String(k, val))
		case int:
			out = append(out, attribute.Int(k, val))
		case int64:
			out = append(out, attribute.Int64(k, val))
		case float64:
			out = append(out, attribute.Float64(k, val))
		case bool:
			out = append(out, attribute.Bool(k, val))
		default:
			out = append(out, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return out
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
