package metrics

import (
	"context"
	"errors"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/core/metrics"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
)

// --- Job Execution Listener ---

type MetricsJobListener struct {
	recorder metrics.MetricRecorder
}

func NewMetricsJobListener(recorder metrics.MetricRecorder) *MetricsJobListener {
	return &MetricsJobListener{recorder: recorder}
}

func (l *MetricsJobListener) BeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	l.recorder.RecordJobStart(ctx, jobExecution)
}

func (l *MetricsJobListener) AfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	l.recorder.RecordJobEnd(ctx, jobExecution)
}

var _ port.JobExecutionListener = (*MetricsJobListener)(nil)

// --- Step Execution Listener ---

type MetricsStepListener struct {
	recorder metrics.MetricRecorder
}

func NewMetricsStepListener(recorder metrics.MetricRecorder) *MetricsStepListener {
	return &MetricsStepListener{recorder: recorder}
}

func (l *MetricsStepListener) BeforeStep(ctx context.Context, stepExecution *model.StepExecution) {
	l.recorder.RecordStepStart(ctx, stepExecution)
}

// AfterStep records the step's duration and status together with its write and filter counts.
func (l *MetricsStepListener) AfterStep(ctx context.Context, stepExecution *model.StepExecution) {
	l.recorder.RecordStepEnd(ctx, stepExecution)
	if stepExecution.WriteCount > 0 {
		l.recorder.RecordItemWrite(ctx, stepExecution.StepName, stepExecution.WriteCount)
	}
	if stepExecution.FilterCount > 0 {
		l.recorder.RecordItemFilter(ctx, stepExecution.StepName, stepExecution.FilterCount)
	}
}

var _ port.StepExecutionListener = (*MetricsStepListener)(nil)

// --- Skip Listener ---

type MetricsSkipListener struct {
	recorder metrics.MetricRecorder
}

func NewMetricsSkipListener(recorder metrics.MetricRecorder) *MetricsSkipListener {
	return &MetricsSkipListener{recorder: recorder}
}

func (l *MetricsSkipListener) OnSkip(ctx context.Context, stepName string, unit string, err error) {
	l.recorder.RecordUnitSkip(ctx, stepName, skipReason(err))
}

// skipReason maps an error onto a low-cardinality label value.
func skipReason(err error) string {
	switch {
	case errors.Is(err, exception.ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, exception.ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "other"
	}
}

var _ port.SkipListener = (*MetricsSkipListener)(nil)
