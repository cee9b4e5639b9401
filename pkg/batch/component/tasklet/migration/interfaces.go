package migration

import (
	"context"
	"io/fs"
)

// Migration history tables. Framework and application schemas are versioned separately.
const (
	FixedFrameworkMigrationsTable = "batch_framework_migrations"
	FixedAppMigrationsTable       = "batch_app_migrations"
)

// Migrator handles database schema migrations.
type Migrator interface {
	// Up applies all pending migrations found under path in migrationFS.
	Up(ctx context.Context, migrationFS fs.FS, path string, tableName string) error
	// Down rolls back all applied migrations.
	Down(ctx context.Context, migrationFS fs.FS, path string, tableName string) error
}
