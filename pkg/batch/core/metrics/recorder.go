package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics related to batch execution.
// It lets the runtime stay independent of the metrics backend (Prometheus, OpenTelemetry).
type MetricRecorder interface {
	// RecordJobStart records the start of a JobExecution.
	RecordJobStart(ctx context.Context, execution *model.JobExecution)
	// RecordJobEnd records the end of a JobExecution.
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)
	// RecordStepStart records the start of a StepExecution.
	RecordStepStart(ctx context.Context, execution *model.StepExecution)
	// RecordStepEnd records the end of a StepExecution.
	RecordStepEnd(ctx context.Context, execution *model.StepExecution)
	// RecordItemWrite records count records written by a step.
	RecordItemWrite(ctx context.Context, stepName string, count int)
	// RecordItemFilter records count records dropped by a step's filters.
	RecordItemFilter(ctx context.Context, stepName string, count int)
	// RecordUnitSkip records a skipped unit of work; reason is a short error class.
	RecordUnitSkip(ctx context.Context, stepName string, reason string)
	// RecordDuration records the execution time of a named operation.
	// Example tags: `{"endpoint": "session", "status": "success"}`
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}

// NoOpMetricRecorder discards every measurement.
type NoOpMetricRecorder struct{}

func (NoOpMetricRecorder) RecordJobStart(context.Context, *model.JobExecution)    {}
func (NoOpMetricRecorder) RecordJobEnd(context.Context, *model.JobExecution)      {}
func (NoOpMetricRecorder) RecordStepStart(context.Context, *model.StepExecution)  {}
func (NoOpMetricRecorder) RecordStepEnd(context.Context, *model.StepExecution)    {}
func (NoOpMetricRecorder) RecordItemWrite(context.Context, string, int)           {}
func (NoOpMetricRecorder) RecordItemFilter(context.Context, string, int)          {}
func (NoOpMetricRecorder) RecordUnitSkip(context.Context, string, string)         {}
func (NoOpMetricRecorder) RecordDuration(context.Context, string, time.Duration, map[string]string) {
}

var _ MetricRecorder = NoOpMetricRecorder{}
