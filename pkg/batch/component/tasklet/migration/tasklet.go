package migration

import (
	"context"
	"io/fs"

	gormadapter "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
	"github.com/tigerroll/paddock/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

const taskletName = "migration_tasklet"

// Properties configure one migration run.
type Properties struct {
	// DBRef names the database connection to migrate.
	DBRef string `yaml:"dbRef"`
	// MigrationDir is the directory inside the migration FS. Defaults to the database type.
	MigrationDir string `yaml:"migrationDir"`
	// Command is "up" (default) or "down".
	Command string `yaml:"command"`
	// IsFramework selects the framework history table instead of the application one.
	IsFramework bool `yaml:"isFramework"`
}

// Apply migrates the database named by props.DBRef on a dedicated connection,
// since golang-migrate closes the pool it is handed. Shared connections of the
// resolver stay usable.
func Apply(ctx context.Context, resolver *gormadapter.Resolver, migrationFS fs.FS, props Properties) error {
	conn, err := resolver.Dedicated(ctx, props.DBRef)
	if err != nil {
		return exception.NewBatchErrorf(taskletName, "Failed to open DB connection '%s'", props.DBRef, err)
	}
	defer conn.Close()

	dir := props.MigrationDir
	if dir == "" {
		dir = conn.Type()
		logger.Debugf("Using DB type '%s' as migration directory.", dir)
	}
	table := FixedAppMigrationsTable
	if props.IsFramework {
		table = FixedFrameworkMigrationsTable
	}

	migrator := NewMigrator(conn)
	switch props.Command {
	case "", "up":
		err = migrator.Up(ctx, migrationFS, dir, table)
	case "down":
		err = migrator.Down(ctx, migrationFS, dir, table)
	default:
		return exception.NewBatchErrorf(taskletName, "Unknown migration command: %s", props.Command)
	}
	if err != nil {
		return exception.NewBatchError(taskletName, "Migration failed", err, false, false)
	}
	return nil
}

// MigrationTasklet runs Apply as a job step.
type MigrationTasklet struct {
	resolver    *gormadapter.Resolver
	migrationFS fs.FS
	props       Properties
}

// NewMigrationTasklet creates a MigrationTasklet from string properties.
// The property 'dbRef' is required.
func NewMigrationTasklet(resolver *gormadapter.Resolver, migrationFS fs.FS, properties map[string]string) (*MigrationTasklet, error) {
	var props Properties
	if err := configbinder.BindProperties(properties, &props); err != nil {
		return nil, exception.NewBatchErrorf(taskletName, "Invalid migration properties", err)
	}
	if props.DBRef == "" {
		return nil, exception.NewBatchErrorf(taskletName, "Property 'dbRef' is required for MigrationTasklet")
	}
	logger.Debugf("MigrationTasklet initialized: DB=%s, Dir=%s, Command=%s, IsFramework=%t",
		props.DBRef, props.MigrationDir, props.Command, props.IsFramework)
	return &MigrationTasklet{resolver: resolver, migrationFS: migrationFS, props: props}, nil
}

// Execute applies the migrations.
func (t *MigrationTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	logger.Infof("Starting database migration for DB connection '%s'.", t.props.DBRef)
	if err := Apply(ctx, t.resolver, t.migrationFS, t.props); err != nil {
		return model.ExitStatusFailed, err
	}
	return model.ExitStatusCompleted, nil
}

// Close releases nothing; the resolver owns the connection.
func (t *MigrationTasklet) Close(ctx context.Context) error {
	return nil
}
