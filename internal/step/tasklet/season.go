package tasklet

import (
	"context"

	domain "github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/internal/pipeline/outcome"
	"github.com/tigerroll/paddock/internal/pipeline/season"
	"github.com/tigerroll/paddock/internal/step/writer"
	"github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// SeasonTasklet plans the configured seasons, aggregates their results, publishes
// the table to the job's execution context and writes it as CSV.
type SeasonTasklet struct {
	planner    *season.Planner
	aggregator *season.Aggregator
	store      *writer.TableStore[domain.SeasonTable]
	skips      []port.SkipListener
	seasons    []int
	file       string
}

// NewSeasonTasklet creates a SeasonTasklet over seasons.
func NewSeasonTasklet(
	planner *season.Planner,
	aggregator *season.Aggregator,
	store *writer.TableStore[domain.SeasonTable],
	skips []port.SkipListener,
	seasons []int,
	file string,
) (*SeasonTasklet, error) {
	if len(seasons) == 0 {
		return nil, exception.NewBatchErrorf("season", "season step requires at least one season")
	}
	return &SeasonTasklet{
		planner:    planner,
		aggregator: aggregator,
		store:      store,
		skips:      skips,
		seasons:    seasons,
		file:       file,
	}, nil
}

// Execute builds and persists the season table.
func (t *SeasonTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	plan, scheduleFailures := t.planner.Plan(ctx, t.seasons)
	recordSkips(ctx, t.skips, stepExecution, scheduleFailures)
	if len(scheduleFailures) == len(t.seasons) {
		return model.ExitStatusFailed, exception.NewEmptyResultError("schedule", len(t.seasons), outcome.Combine(scheduleFailures))
	}

	table, failures, err := t.aggregator.Aggregate(ctx, plan)
	stepExecution.ReadCount += len(plan)
	recordSkips(ctx, t.skips, stepExecution, failures)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	logger.Infof("Season table holds %d results from %d rounds.", len(table.Records), len(plan))

	if stepExecution.JobExecution != nil {
		stepExecution.JobExecution.ExecutionContext.Put(KeySeasonTable, table)
	}
	if err := t.store.Save(ctx, t.file, table); err != nil {
		return model.ExitStatusFailed, err
	}
	stepExecution.WriteCount += len(table.Records)
	return model.ExitStatusCompleted, nil
}

// Close does nothing.
func (t *SeasonTasklet) Close(ctx context.Context) error {
	return nil
}

var _ port.Tasklet = (*SeasonTasklet)(nil)
