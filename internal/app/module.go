// Package app wires paddock's components with Fx and runs the configured job.
package app

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/tigerroll/paddock/internal/provider"
	gormadapter "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm"
	_ "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm/mysql"
	_ "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm/postgres"
	_ "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/paddock/pkg/batch/adapter/storage"
	"github.com/tigerroll/paddock/pkg/batch/adapter/storage/gcs"
	"github.com/tigerroll/paddock/pkg/batch/adapter/storage/local"
	"github.com/tigerroll/paddock/pkg/batch/component/tasklet/migration"
	"github.com/tigerroll/paddock/pkg/batch/component/tasklet/migration/filesystem"
	config "github.com/tigerroll/paddock/pkg/batch/core/config"
	"github.com/tigerroll/paddock/pkg/batch/core/domain/repository"
	jobRunner "github.com/tigerroll/paddock/pkg/batch/core/job/runner"
	"github.com/tigerroll/paddock/pkg/batch/core/metrics"
	"github.com/tigerroll/paddock/pkg/batch/engine/step/retry"
	"github.com/tigerroll/paddock/pkg/batch/infrastructure/repository/inmemory"
	"github.com/tigerroll/paddock/pkg/batch/infrastructure/repository/sql"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
	"github.com/tigerroll/paddock/pkg/batch/support/util/timeutil"
)

const moduleName = "app"

// NewDatabaseResolver creates the resolver for the configured database connections
// and closes them when the application stops.
func NewDatabaseResolver(lc fx.Lifecycle, cfg *config.Config) *gormadapter.Resolver {
	resolver := gormadapter.NewResolver(cfg.Paddock.AdapterConfigs)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Infof("Closing all database connections...")
			return resolver.CloseAll()
		},
	})
	return resolver
}

// NewStorageResolver creates the resolver for the configured storage connections.
// Local directories and GCS buckets are supported.
func NewStorageResolver(lc fx.Lifecycle, cfg *config.Config) *storage.Resolver {
	resolver := storage.NewResolver(cfg.Paddock.StorageConfigs, local.NewLocalProvider(), gcs.NewGCSProvider())
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return resolver.CloseAll()
		},
	})
	return resolver
}

// NewJobRepository brings the metadata schema up to date and returns a repository over it.
// Without a metadata database the repository lives in memory for the run.
func NewJobRepository(cfg *config.Config, resolver *gormadapter.Resolver) (repository.JobRepository, error) {
	ctx := context.Background()
	dbRef := cfg.Paddock.Infrastructure.JobRepositoryDBRef
	if dbRef == "" {
		logger.Infof("No job repository database configured; job metadata is kept in memory.")
		return inmemory.NewInMemoryJobRepository(), nil
	}
	if err := migration.Apply(ctx, resolver, filesystem.FrameworkMigrationsFS(), migration.Properties{
		DBRef:       dbRef,
		IsFramework: true,
	}); err != nil {
		return nil, err
	}
	conn, err := resolver.Resolve(ctx, dbRef)
	if err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "Failed to resolve job repository database '%s'", dbRef, err)
	}
	return sql.NewSQLJobRepository(conn.DB()), nil
}

// NewFetcher builds the provider client: HTTP with retries, optionally behind the response cache.
func NewFetcher(cfg *config.Config, resolver *gormadapter.Resolver, recorder metrics.MetricRecorder) (provider.Fetcher, error) {
	pc := cfg.Paddock.Provider
	var source provider.Source = provider.NewHTTPFetcher(
		pc.BaseURL, pc.UserAgent, time.Duration(pc.TimeoutSeconds)*time.Second, recorder)
	if pc.Retry.MaxAttempts > 1 {
		source = provider.NewRetryingFetcher(source, retry.NewRetryPolicy(
			pc.Retry.MaxAttempts, time.Duration(pc.Retry.InitialIntervalMS)*time.Millisecond, nil))
	}
	if pc.Cache.Enabled {
		conn, err := resolver.Resolve(context.Background(), pc.Cache.DBRef)
		if err != nil {
			return nil, exception.NewBatchErrorf(moduleName, "Failed to resolve cache database '%s'", pc.Cache.DBRef, err)
		}
		source = provider.NewCachingFetcher(source, conn.DB())
		logger.Infof("Provider responses are cached in '%s'.", pc.Cache.DBRef)
	}
	return provider.NewClient(source), nil
}

// Module provides the resolvers, the job repository, the provider client, the job and its runner.
var Module = fx.Options(
	fx.Provide(
		NewDatabaseResolver,
		NewStorageResolver,
		NewJobRepository,
		NewFetcher,
		func() timeutil.Clock { return timeutil.RealClock{} },
		NewJob,
		jobRunner.NewSimpleJobRunner,
	),
)
