// Package port defines the core interfaces (ports) for the batch application.
// These interfaces abstract the application's capabilities and dependencies,
// allowing for flexible implementation and testing.
package port

import (
	"context"
	"io"

	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
)

// Job is an executable batch job: an ordered list of steps run one after another.
type Job interface {
	// Run executes every step of the job against jobExecution.
	Run(ctx context.Context, jobExecution *model.JobExecution) error
	// JobName returns the logical name of the job.
	JobName() string
}

// Step is a single unit executed within a job.
type Step interface {
	// Execute runs the step. The step is responsible for marking stepExecution
	// as completed or failed and for persisting its final state.
	Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error
	// StepName returns the logical name of the step.
	StepName() string
}

// Tasklet is the business logic of a tasklet-oriented step.
type Tasklet interface {
	// Execute performs the work and returns the exit status of the step.
	// Intermediate results are exchanged through stepExecution.JobExecution.ExecutionContext.
	Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)
	// Close releases resources.
	Close(ctx context.Context) error
}

// ItemWriter persists a batch of items into a single named artifact.
// I is the type of item to be written.
type ItemWriter[I any] interface {
	// Open prepares the writer for the artifact identified by name.
	Open(ctx context.Context, name string) error
	// Write buffers or writes a list of items.
	Write(ctx context.Context, items []I) error
	// Close flushes the artifact and releases resources.
	Close(ctx context.Context) error
}

// TableCodec serialises an in-memory table to a delimited-text stream and back.
type TableCodec[T any] interface {
	Encode(w io.Writer, table T) error
	Decode(r io.Reader) (T, error)
}

// StepExecutionListener is an interface for handling step execution events.
type StepExecutionListener interface {
	// BeforeStep is called just before a step execution starts.
	BeforeStep(ctx context.Context, stepExecution *model.StepExecution)
	// AfterStep is called after a step execution completes (regardless of success or failure).
	AfterStep(ctx context.Context, stepExecution *model.StepExecution)
}

// JobExecutionListener is an interface for handling job execution events.
type JobExecutionListener interface {
	// BeforeJob is called just before a job execution starts.
	BeforeJob(ctx context.Context, jobExecution *model.JobExecution)
	// AfterJob is called after a job execution completes (regardless of success or failure).
	AfterJob(ctx context.Context, jobExecution *model.JobExecution)
}

// SkipListener is notified when a unit of work (one driver, one round) is skipped.
type SkipListener interface {
	OnSkip(ctx context.Context, stepName string, unit string, err error)
}

type contextKey string

// StepExecutionKey is the context key under which the running StepExecution is stored.
const StepExecutionKey contextKey = "stepExecution"

// GetContextWithStepExecution stores a StepExecution in the Context.
func GetContextWithStepExecution(ctx context.Context, se *model.StepExecution) context.Context {
	return context.WithValue(ctx, StepExecutionKey, se)
}

// GetStepExecutionFromContext retrieves a StepExecution from the Context. Returns nil if not found.
func GetStepExecutionFromContext(ctx context.Context) *model.StepExecution {
	if se, ok := ctx.Value(StepExecutionKey).(*model.StepExecution); ok {
		return se
	}
	return nil
}
