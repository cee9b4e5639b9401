package listener

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/core/metrics"
	"github.com/tigerroll/paddock/pkg/batch/listener/logging"
	metricslistener "github.com/tigerroll/paddock/pkg/batch/listener/metrics"
)

// Listeners bundles every listener the job and its steps are built with.
type Listeners struct {
	Job       []port.JobExecutionListener
	Step      []port.StepExecutionListener
	Skip      []port.SkipListener
	Completed *JobCompletionSignaler
}

// NewListeners assembles the logging and metrics listeners around recorder.
func NewListeners(recorder metrics.MetricRecorder) *Listeners {
	completed := NewJobCompletionSignaler()
	return &Listeners{
		Job: []port.JobExecutionListener{
			logging.NewLoggingJobListener(),
			metricslistener.NewMetricsJobListener(recorder),
			completed,
		},
		Step: []port.StepExecutionListener{
			logging.NewLoggingStepListener(),
			metricslistener.NewMetricsStepListener(recorder),
		},
		Skip: []port.SkipListener{
			logging.NewLoggingSkipListener(),
			metricslistener.NewMetricsSkipListener(recorder),
		},
		Completed: completed,
	}
}

// Module aggregates all listener modules of the batch framework.
var Module = fx.Options(
	fx.Provide(NewListeners),
)
