// Package tasklet holds the batch tasklets of the teammate features job.
package tasklet

import (
	"context"

	"github.com/tigerroll/paddock/internal/pipeline/outcome"
	"github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/core/domain/model"
)

// Execution context keys shared between steps.
const (
	// KeySeasonTable holds the model.SeasonTable produced by the season step.
	KeySeasonTable = "season.table"
	// KeyPairCount holds the number of pair records written by the features step.
	KeyPairCount = "features.pairs"
	// KeyCleanReport holds the clean.Report of the telemetry step.
	KeyCleanReport = "telemetry.report"
)

// recordSkips notifies listeners of every failed unit and adds them to the step's skip count.
func recordSkips(ctx context.Context, listeners []port.SkipListener, stepExecution *model.StepExecution, failures []outcome.Failure) {
	for _, f := range failures {
		for _, l := range listeners {
			l.OnSkip(ctx, stepExecution.StepName, f.Unit, f.Err)
		}
	}
	stepExecution.SkipCount += len(failures)
}
