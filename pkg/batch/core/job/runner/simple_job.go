package runner

import (
	"context"
	"time"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/paddock/pkg/batch/core/domain/repository"
	metrics "github.com/tigerroll/paddock/pkg/batch/core/metrics"
	exception "github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// SimpleJob is an implementation of port.Job that runs its steps sequentially
// and stops at the first failed step.
type SimpleJob struct {
	name          string
	steps         []port.Step
	jobRepository repository.JobRepository
	jobListeners  []port.JobExecutionListener
	tracer        metrics.Tracer
}

// Verify that SimpleJob implements the port.Job interface.
var _ port.Job = (*SimpleJob)(nil)

// NewSimpleJob creates a new instance of SimpleJob.
func NewSimpleJob(
	name string,
	steps []port.Step,
	jobRepository repository.JobRepository,
	jobListeners []port.JobExecutionListener,
	tracer metrics.Tracer,
) *SimpleJob {
	if tracer == nil {
		tracer = metrics.NoOpTracer{}
	}
	return &SimpleJob{
		name:          name,
		steps:         steps,
		jobRepository: jobRepository,
		jobListeners:  jobListeners,
		tracer:        tracer,
	}
}

// JobName returns the job name.
func (j *SimpleJob) JobName() string {
	return j.name
}

func (j *SimpleJob) notifyBeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	for _, l := range j.jobListeners {
		l.BeforeJob(ctx, jobExecution)
	}
}

func (j *SimpleJob) notifyAfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	for _, l := range j.jobListeners {
		l.AfterJob(ctx, jobExecution)
	}
}

// Run executes the steps in order. A failed step fails the job; later steps do not run.
func (j *SimpleJob) Run(ctx context.Context, jobExecution *model.JobExecution) error {
	logger.Infof("Starting Job '%s' (Execution ID: %s).", j.name, jobExecution.ID)

	ctx, finishSpan := j.tracer.StartJobSpan(ctx, jobExecution)
	defer finishSpan()

	j.notifyBeforeJob(ctx, jobExecution)

	defer func() {
		if jobExecution.EndTime == nil {
			now := time.Now()
			jobExecution.EndTime = &now
		}
		j.notifyAfterJob(ctx, jobExecution)
		logger.Infof("Job '%s' (Execution ID: %s) finished. Final Status: %s, Exit Status: %s",
			j.name, jobExecution.ID, jobExecution.Status, jobExecution.ExitStatus)
	}()

	for _, step := range j.steps {
		if err := ctx.Err(); err != nil {
			logger.Warnf("Job '%s' interrupted before step '%s': %v", j.name, step.StepName(), err)
			jobExecution.AddFailureException(err)
			jobExecution.MarkAsStopped()
			return err
		}

		jobExecution.CurrentStepName = step.StepName()
		stepExecution := model.NewStepExecution(jobExecution, step.StepName())
		jobExecution.AddStepExecution(stepExecution)
		if err := j.jobRepository.SaveStepExecution(ctx, stepExecution); err != nil {
			batchErr := exception.NewBatchError("job", "Failed to save StepExecution for step "+step.StepName(), err, false, false)
			jobExecution.MarkAsFailed(batchErr)
			return batchErr
		}

		if err := step.Execute(ctx, jobExecution, stepExecution); err != nil {
			logger.Errorf("Job '%s': step '%s' failed: %v", j.name, step.StepName(), err)
			j.tracer.RecordError(ctx, step.StepName(), err)
			jobExecution.MarkAsFailed(err)
			return err
		}
	}

	jobExecution.MarkAsCompleted()
	return nil
}
