package app

import (
	"io/fs"

	"go.uber.org/fx"

	domain "github.com/tigerroll/paddock/internal/domain/model"
	"github.com/tigerroll/paddock/internal/pipeline/clean"
	"github.com/tigerroll/paddock/internal/pipeline/features"
	"github.com/tigerroll/paddock/internal/pipeline/season"
	"github.com/tigerroll/paddock/internal/provider"
	steptasklet "github.com/tigerroll/paddock/internal/step/tasklet"
	"github.com/tigerroll/paddock/internal/step/writer"
	gormadapter "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/paddock/pkg/batch/adapter/storage"
	stepwriter "github.com/tigerroll/paddock/pkg/batch/component/step/writer"
	"github.com/tigerroll/paddock/pkg/batch/component/tasklet/migration"
	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	config "github.com/tigerroll/paddock/pkg/batch/core/config"
	"github.com/tigerroll/paddock/pkg/batch/core/domain/repository"
	jobRunner "github.com/tigerroll/paddock/pkg/batch/core/job/runner"
	"github.com/tigerroll/paddock/pkg/batch/core/metrics"
	taskletstep "github.com/tigerroll/paddock/pkg/batch/engine/step/tasklet"
	"github.com/tigerroll/paddock/pkg/batch/listener"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
	"github.com/tigerroll/paddock/pkg/batch/support/util/timeutil"
)

// JobParams are the dependencies of NewJob.
type JobParams struct {
	fx.In
	Cfg        *config.Config
	Databases  *gormadapter.Resolver
	Storage    *storage.Resolver
	Fetcher    provider.Fetcher
	Repository repository.JobRepository
	Listeners  *listener.Listeners
	Tracer     metrics.Tracer
	Clock      timeutil.Clock
	// MigrationsFS holds the application schema, one directory per database type.
	MigrationsFS fs.FS `name:"applicationMigrationsFS"`
}

// NewJob assembles the job from the configured step names, in order.
func NewJob(p JobParams) (port.Job, error) {
	names := p.Cfg.Paddock.Batch.Steps
	steps := make([]port.Step, 0, len(names))
	for _, name := range names {
		t, err := newTasklet(name, p)
		if err != nil {
			return nil, err
		}
		steps = append(steps, taskletstep.NewTaskletStep(name, t, p.Repository, p.Listeners.Step, p.Tracer))
	}
	logger.Debugf("Job '%s' assembled with steps %v.", p.Cfg.Paddock.Batch.JobName, names)
	return jobRunner.NewSimpleJob(p.Cfg.Paddock.Batch.JobName, steps, p.Repository, p.Listeners.Job, p.Tracer), nil
}

func newTasklet(name string, p JobParams) (port.Tasklet, error) {
	out := p.Cfg.Paddock.Output
	pipeline := p.Cfg.Paddock.Pipeline
	seasonStore := writer.NewTableStore[domain.SeasonTable](writer.SeasonCodec{}, p.Storage, out.StorageRef, out.BaseDir)

	switch name {
	case config.StepMigrate:
		return migration.NewMigrationTasklet(p.Databases, p.MigrationsFS, map[string]string{
			"dbRef": p.Cfg.Paddock.Provider.Cache.DBRef,
		})

	case config.StepTelemetry:
		parquetCfg := stepwriter.ParquetWriterConfig{
			StorageRef:      out.StorageRef,
			OutputBaseDir:   out.BaseDir,
			CompressionType: out.ParquetCompression,
		}
		raw, err := stepwriter.NewParquetWriter[domain.RawRow](parquetCfg, p.Storage)
		if err != nil {
			return nil, err
		}
		cleaned, err := stepwriter.NewParquetWriter[domain.CleanRow](parquetCfg, p.Storage)
		if err != nil {
			return nil, err
		}
		t := pipeline.Telemetry
		return steptasklet.NewTelemetryTasklet(p.Fetcher, clean.NewCleaner(), raw, cleaned, p.Listeners.Skip, steptasklet.TelemetryOptions{
			Year:        t.Year,
			Event:       t.Event,
			SessionType: t.SessionType,
			AttachLaps:  t.AttachLaps,
			RawName:     out.RawDataName,
			CleanName:   out.CleanedName,
		})

	case config.StepSeason:
		planner := season.NewPlanner(p.Fetcher, p.Clock, pipeline.EventFormats, pipeline.Rounds)
		return steptasklet.NewSeasonTasklet(planner, season.NewAggregator(p.Fetcher), seasonStore,
			p.Listeners.Skip, pipeline.Seasons, out.SeasonFile)

	case config.StepFeatures:
		f := pipeline.Features
		engine, err := features.NewEngine(features.Options{
			AllowedStatuses: f.AllowedStatuses,
			PairOrder:       f.PairOrder,
			StreetCircuits:  f.StreetCircuits,
			SemiCircuits:    f.SemiCircuits,
		})
		if err != nil {
			return nil, err
		}
		pairStore := writer.NewTableStore[[]domain.PairRecord](writer.PairCodec{}, p.Storage, out.StorageRef, out.BaseDir)
		return steptasklet.NewFeaturesTasklet(engine, seasonStore, pairStore, out.SeasonFile, out.PairsFile), nil
	}
	return nil, exception.NewBatchErrorf(moduleName, "Unknown step '%s'", name)
}
