package tasklet

import (
	"context"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/paddock/pkg/batch/core/domain/repository"
	metrics "github.com/tigerroll/paddock/pkg/batch/core/metrics"
	exception "github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// TaskletStep is an implementation of port.Step for Tasklet-oriented processing.
type TaskletStep struct {
	id                     string
	tasklet                port.Tasklet
	jobRepository          repository.JobRepository
	stepExecutionListeners []port.StepExecutionListener
	tracer                 metrics.Tracer
}

// NewTaskletStep creates a new TaskletStep instance.
func NewTaskletStep(
	id string,
	tasklet port.Tasklet,
	jobRepository repository.JobRepository,
	stepExecutionListeners []port.StepExecutionListener,
	tracer metrics.Tracer,
) *TaskletStep {
	if tracer == nil {
		tracer = metrics.NoOpTracer{}
	}
	return &TaskletStep{
		id:                     id,
		tasklet:                tasklet,
		jobRepository:          jobRepository,
		stepExecutionListeners: stepExecutionListeners,
		tracer:                 tracer,
	}
}

// StepName returns the step name.
func (s *TaskletStep) StepName() string {
	return s.id
}

func (s *TaskletStep) notifyBeforeStep(ctx context.Context, stepExecution *model.StepExecution) {
	for _, l := range s.stepExecutionListeners {
		l.BeforeStep(ctx, stepExecution)
	}
}

func (s *TaskletStep) notifyAfterStep(ctx context.Context, stepExecution *model.StepExecution) {
	for _, l := range s.stepExecutionListeners {
		l.AfterStep(ctx, stepExecution)
	}
}

// Execute runs the Tasklet logic and persists the StepExecution before and after.
func (s *TaskletStep) Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) (err error) {
	logger.Infof("TaskletStep '%s' executing.", s.id)

	ctx, finishSpan := s.tracer.StartStepSpan(ctx, stepExecution)
	defer finishSpan()
	ctx = port.GetContextWithStepExecution(ctx, stepExecution)

	// 1. Update StepExecution status to STARTED
	stepExecution.MarkAsStarted()
	if err := s.jobRepository.UpdateStepExecution(ctx, stepExecution); err != nil {
		return exception.NewBatchError(s.id, "Failed to update StepExecution status to STARTED", err, false, false)
	}

	// 2. Listener notification (BeforeStep)
	s.notifyBeforeStep(ctx, stepExecution)

	// 3. Execute Tasklet business logic
	exitStatus, err := s.tasklet.Execute(ctx, stepExecution)

	// 4. Close Tasklet
	if closeErr := s.tasklet.Close(ctx); closeErr != nil {
		logger.Errorf("TaskletStep '%s': Failed to close Tasklet: %v", s.id, closeErr)
		if err == nil {
			err = closeErr
		}
	}

	// 5. Update StepExecution status
	if err != nil {
		s.tracer.RecordError(ctx, s.id, err)
		stepExecution.MarkAsFailed(err)
	} else {
		stepExecution.MarkAsCompleted(exitStatus)
	}

	// 6. Listener notification (AfterStep)
	s.notifyAfterStep(ctx, stepExecution)

	// 7. Persistence
	if updateErr := s.jobRepository.UpdateStepExecution(ctx, stepExecution); updateErr != nil {
		logger.Errorf("TaskletStep '%s': Failed to update final StepExecution state: %v", s.id, updateErr)
		if err == nil {
			err = updateErr
		}
	}

	logger.Infof("TaskletStep '%s' finished. ExitStatus: %s", s.id, stepExecution.ExitStatus)
	return err
}

// Verify that TaskletStep implements the port.Step interface.
var _ port.Step = (*TaskletStep)(nil)
