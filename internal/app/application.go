package app

import (
	"context"
	"io/fs"

	"go.uber.org/fx"

	port "github.com/tigerroll/paddock/pkg/batch/core/application/port"
	config "github.com/tigerroll/paddock/pkg/batch/core/config"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	jobRunner "github.com/tigerroll/paddock/pkg/batch/core/job/runner"
	batchmetrics "github.com/tigerroll/paddock/pkg/batch/infrastructure/metrics"
	batchlistener "github.com/tigerroll/paddock/pkg/batch/listener"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// Options returns everything needed to build and run the job, without starting it.
func Options(cfg *config.Config, migrationsFS fs.FS) fx.Option {
	return fx.Options(
		fx.Supply(
			cfg,
			fx.Annotate(migrationsFS, fx.As(new(fs.FS)), fx.ResultTags(`name:"applicationMigrationsFS"`)),
		),
		logger.Module,
		config.Module,
		batchmetrics.Module,
		batchlistener.Module,
		Module,
	)
}

// RunApplication loads the configuration and runs the configured job once.
// The process exits with code 1 when the job does not complete.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, migrationsFS fs.FS) {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logger.SetLogLevel(cfg.Paddock.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.Paddock.System.Logging.Level)

	app := fx.New(
		Options(cfg, migrationsFS),
		fx.Supply(fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`))),
		fx.Invoke(fx.Annotate(startJobExecution, fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // shutdowner fx.Shutdowner
			"",              // job port.Job
			"",              // runner *jobRunner.SimpleJobRunner
			"",              // prom *batchmetrics.PrometheusRecorder
			"",              // cfg *config.Config
			`name:"appCtx"`, // appCtx context.Context
		))),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// startJobExecution is invoked by Fx to run the job once the application has started.
func startJobExecution(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	job port.Job,
	runner *jobRunner.SimpleJobRunner,
	prom *batchmetrics.PrometheusRecorder,
	cfg *config.Config,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				exitCode := 0
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in job execution: %v", r)
						exitCode = 1
					}
					logger.Infof("Requesting application shutdown after job completion.")
					if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()
				if !runJob(appCtx, job, runner, prom, cfg.Paddock.Output.MetricsTextfile) {
					exitCode = 1
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}

// runJob runs job to completion and exports the run's metrics. It reports whether the job completed.
func runJob(ctx context.Context, job port.Job, runner *jobRunner.SimpleJobRunner, prom *batchmetrics.PrometheusRecorder, textfile string) bool {
	logger.Infof("Starting job '%s'...", job.JobName())
	execution, err := runner.Run(ctx, job)
	if err != nil {
		logger.Errorf("Job '%s' failed: %v", job.JobName(), err)
	}
	if execution != nil {
		logger.Infof("Job '%s' (Execution ID: %s) finished with status: %s, ExitStatus: %s",
			job.JobName(), execution.ID, execution.Status, execution.ExitStatus)
	}

	if textfile != "" {
		if werr := prom.WriteToTextfile(textfile); werr != nil {
			logger.Warnf("Failed to write metrics textfile '%s': %v", textfile, werr)
		} else {
			logger.Infof("Metrics written to '%s'.", textfile)
		}
	}
	return err == nil && execution != nil && execution.ExitStatus == model.ExitStatusCompleted
}
