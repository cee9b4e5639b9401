package runner

import (
	"context"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/paddock/pkg/batch/core/domain/repository"
	logger "github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// SimpleJobRunner creates a JobExecution, runs the Job and persists the outcome.
type SimpleJobRunner struct {
	jobRepository repository.JobRepository
}

// NewSimpleJobRunner creates an instance of SimpleJobRunner.
func NewSimpleJobRunner(repo repository.JobRepository) *SimpleJobRunner {
	return &SimpleJobRunner{jobRepository: repo}
}

// Run launches job and returns its finished JobExecution. The returned error is the
// job's failure, if any; metadata persistence failures are logged only.
func (r *SimpleJobRunner) Run(ctx context.Context, job port.Job) (*model.JobExecution, error) {
	jobExecution := model.NewJobExecution(job.JobName())
	if err := r.jobRepository.SaveJobExecution(ctx, jobExecution); err != nil {
		return jobExecution, err
	}

	jobExecution.MarkAsStarted()
	if err := r.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
		logger.Errorf("JobRunner: Failed to update JobExecution (ID: %s) status to STARTED: %v", jobExecution.ID, err)
	}

	err := job.Run(ctx, jobExecution)
	if err != nil {
		if !jobExecution.Status.IsFinished() {
			jobExecution.MarkAsFailed(err)
		}
	} else if !jobExecution.Status.IsFinished() {
		jobExecution.MarkAsCompleted()
	}

	// A fresh context lets the final state be recorded after cancellation.
	if updateErr := r.jobRepository.UpdateJobExecution(context.WithoutCancel(ctx), jobExecution); updateErr != nil {
		logger.Errorf("JobRunner: Failed to update final JobExecution (ID: %s) state: %v", jobExecution.ID, updateErr)
	}
	return jobExecution, err
}
