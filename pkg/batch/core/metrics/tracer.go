package metrics

import (
	"context"

	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
)

// Tracer abstracts distributed tracing for job and step executions.
type Tracer interface {
	// StartJobSpan starts a Span for a JobExecution.
	//
	// Returns: A context with the new Span set, and a function to end the Span.
	//          It is recommended to call the returned function in a defer statement.
	StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func())

	// StartStepSpan starts a Span for a StepExecution.
	StartStepSpan(ctx context.Context, execution *model.StepExecution) (context.Context, func())

	// RecordError records an error in the current Span.
	// module names the component where the error occurred (e.g., "season", "provider").
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records an event in the current Span.
	// Example attributes: `map[string]interface{}{"round": 3, "status": "skipped"}`
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}

// NoOpTracer records nothing.
type NoOpTracer struct{}

func (NoOpTracer) StartJobSpan(ctx context.Context, _ *model.JobExecution) (context.Context, func()) {
	return ctx, func() {}
}

func (NoOpTracer) StartStepSpan(ctx context.Context, _ *model.StepExecution) (context.Context, func()) {
	return ctx, func() {}
}

func (NoOpTracer) RecordError(context.Context, string, error)                    {}
func (NoOpTracer) RecordEvent(context.Context, string, map[string]interface{}) {}

var _ Tracer = NoOpTracer{}
