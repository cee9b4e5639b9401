package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/paddock/pkg/batch/core/metrics"
)

// MultiRecorder fans every measurement out to several recorders.
type MultiRecorder []metrics.MetricRecorder

func (m MultiRecorder) RecordJobStart(ctx context.Context, e *model.JobExecution) {
	for _, r := range m {
		r.RecordJobStart(ctx, e)
	}
}

func (m MultiRecorder) RecordJobEnd(ctx context.Context, e *model.JobExecution) {
	for _, r := range m {
		r.RecordJobEnd(ctx, e)
	}
}

func (m MultiRecorder) RecordStepStart(ctx context.Context, e *model.StepExecution) {
	for _, r := range m {
		r.RecordStepStart(ctx, e)
	}
}

func (m MultiRecorder) RecordStepEnd(ctx context.Context, e *model.StepExecution) {
	for _, r := range m {
		r.RecordStepEnd(ctx, e)
	}
}

func (m MultiRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	for _, r := range m {
		r.RecordItemWrite(ctx, stepName, count)
	}
}

func (m MultiRecorder) RecordItemFilter(ctx context.Context, stepName string, count int) {
	for _, r := range m {
		r.RecordItemFilter(ctx, stepName, count)
	}
}

func (m MultiRecorder) RecordUnitSkip(ctx context.Context, stepName string, reason string) {
	for _, r := range m {
		r.RecordUnitSkip(ctx, stepName, reason)
	}
}

func (m MultiRecorder) RecordDuration(ctx context.Context, name string, d time.Duration, tags map[string]string) {
	for _, r := range m {
		r.RecordDuration(ctx, name, d, tags)
	}
}

var _ metrics.MetricRecorder = MultiRecorder(nil)
