package tasklet

import (
	"context"

	domain "github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/internal/pipeline/features"
	"github.com/tigerroll/paddock/internal/step/writer"
	"github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// FeaturesTasklet derives teammate pairs from the season table and writes them as CSV.
// The season table comes from the job's execution context when an earlier step
// produced it, and from the stored season CSV otherwise.
type FeaturesTasklet struct {
	engine      *features.Engine
	seasonStore *writer.TableStore[domain.SeasonTable]
	pairStore   *writer.TableStore[[]domain.PairRecord]
	seasonFile  string
	pairsFile   string
}

// NewFeaturesTasklet creates a FeaturesTasklet.
func NewFeaturesTasklet(
	engine *features.Engine,
	seasonStore *writer.TableStore[domain.SeasonTable],
	pairStore *writer.TableStore[[]domain.PairRecord],
	seasonFile, pairsFile string,
) *FeaturesTasklet {
	return &FeaturesTasklet{
		engine:      engine,
		seasonStore: seasonStore,
		pairStore:   pairStore,
		seasonFile:  seasonFile,
		pairsFile:   pairsFile,
	}
}

// Execute derives and persists the pair table.
func (t *FeaturesTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	table, err := t.seasonTable(ctx, stepExecution)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	stepExecution.ReadCount += len(table.Records)

	pairs, err := t.engine.Derive(table)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	if err := t.pairStore.Save(ctx, t.pairsFile, pairs); err != nil {
		return model.ExitStatusFailed, err
	}
	stepExecution.WriteCount += len(pairs)
	stepExecution.ExecutionContext.Put(KeyPairCount, len(pairs))
	return model.ExitStatusCompleted, nil
}

func (t *FeaturesTasklet) seasonTable(ctx context.Context, stepExecution *model.StepExecution) (domain.SeasonTable, error) {
	if je := stepExecution.JobExecution; je != nil {
		if v, ok := je.ExecutionContext.Get(KeySeasonTable); ok {
			if table, ok := v.(domain.SeasonTable); ok {
				return table, nil
			}
		}
	}
	logger.Infof("No season table in the execution context, reading %s.", t.seasonStore.ObjectName(t.seasonFile))
	return t.seasonStore.Load(ctx, t.seasonFile)
}

// Close does nothing.
func (t *FeaturesTasklet) Close(ctx context.Context) error {
	return nil
}

var _ port.Tasklet = (*FeaturesTasklet)(nil)
