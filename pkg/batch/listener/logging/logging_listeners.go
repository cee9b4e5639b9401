package logging

import (
	"context"
	"strings"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	exception "github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// --- Job Execution Listener ---

type LoggingJobListener struct{}

func NewLoggingJobListener() *LoggingJobListener {
	return &LoggingJobListener{}
}

func (l *LoggingJobListener) BeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	logger.Infof("JobExecutionListener: BeforeJob - JobName: %s, ID: %s", jobExecution.JobName, jobExecution.ID)
}

func (l *LoggingJobListener) AfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	logger.Infof("JobExecutionListener: AfterJob - JobName: %s, Status: %s, ExitStatus: %s", jobExecution.JobName, jobExecution.Status, jobExecution.ExitStatus)
	if len(jobExecution.Failures) > 0 {
		logger.Errorf("JobExecutionListener: Job '%s' failures: %s", jobExecution.JobName, strings.Join(jobExecution.Failures, "; "))
	}
}

var _ port.JobExecutionListener = (*LoggingJobListener)(nil)

// --- Step Execution Listener ---

type LoggingStepListener struct{}

func NewLoggingStepListener() *LoggingStepListener {
	return &LoggingStepListener{}
}

func (l *LoggingStepListener) BeforeStep(ctx context.Context, stepExecution *model.StepExecution) {
	logger.Infof("StepExecutionListener: BeforeStep - StepName: %s, ID: %s", stepExecution.StepName, stepExecution.ID)
}

func (l *LoggingStepListener) AfterStep(ctx context.Context, stepExecution *model.StepExecution) {
	logger.Infof("StepExecutionListener: AfterStep - StepName: %s, Status: %s, ExitStatus: %s, Read: %d, Write: %d, Filter: %d, Skip: %d",
		stepExecution.StepName, stepExecution.Status, stepExecution.ExitStatus,
		stepExecution.ReadCount, stepExecution.WriteCount, stepExecution.FilterCount, stepExecution.SkipCount)
}

var _ port.StepExecutionListener = (*LoggingStepListener)(nil)

// --- Skip Listener ---

type LoggingSkipListener struct{}

func NewLoggingSkipListener() *LoggingSkipListener {
	return &LoggingSkipListener{}
}

// OnSkip logs a skipped unit. Fetch failures are expected and logged at WARN; anything else at ERROR.
func (l *LoggingSkipListener) OnSkip(ctx context.Context, stepName string, unit string, err error) {
	if exception.IsSkippable(err) {
		logger.Warnf("SkipListener: step '%s' skipped %s: %v", stepName, unit, err)
		return
	}
	logger.Errorf("SkipListener: step '%s' skipped %s after unexpected error: %v", stepName, unit, err)
}

var _ port.SkipListener = (*LoggingSkipListener)(nil)
