package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// SQLDBSource exposes the connection a migration runs on.
type SQLDBSource interface {
	SQLDB() (*sql.DB, error)
	Type() string
}

type migratorImpl struct {
	conn   SQLDBSource
	dbType string
}

// NewMigrator creates a golang-migrate backed Migrator for conn.
// golang-migrate closes the *sql.DB when it finishes, so conn must not be shared.
func NewMigrator(conn SQLDBSource) Migrator {
	return &migratorImpl{conn: conn, dbType: conn.Type()}
}

func (m *migratorImpl) databaseDriver(sqlDB *sql.DB, tableName string) (database.Driver, error) {
	switch m.dbType {
	case "postgres":
		return postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: tableName})
	case "mysql":
		return mysql.WithInstance(sqlDB, &mysql.Config{MigrationsTable: tableName})
	case "sqlite":
		return sqlite.WithInstance(sqlDB, &sqlite.Config{MigrationsTable: tableName})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", m.dbType)
	}
}

func (m *migratorImpl) instance(migrationFS fs.FS, path string, tableName string) (*migrate.Migrate, error) {
	sqlDB, err := m.conn.SQLDB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs source driver for path %s: %w", path, err)
	}
	dbDriver, err := m.databaseDriver(sqlDB, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", sourceDriver, m.dbType, dbDriver)
}

func (m *migratorImpl) run(ctx context.Context, migrationFS fs.FS, path string, command string, tableName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Infof("Executing migration '%s' (Path: %s, Table: %s)", command, path, tableName)

	mInstance, err := m.instance(migrationFS, path, tableName)
	if err != nil {
		return fmt.Errorf("failed to get migrate instance: %w", err)
	}
	defer mInstance.Close()

	var migrateErr error
	switch command {
	case "up":
		migrateErr = mInstance.Up()
	case "down":
		migrateErr = mInstance.Down()
	default:
		return fmt.Errorf("unsupported migration command: %s", command)
	}

	if migrateErr != nil && !errors.Is(migrateErr, migrate.ErrNoChange) {
		if version, dirty, verr := mInstance.Version(); verr == nil {
			logger.Errorf("Migration stopped at version %d (dirty=%t)", version, dirty)
		}
		return fmt.Errorf("migration failed for command '%s' (DB: %s, Path: %s): %w", command, m.dbType, path, migrateErr)
	}

	logger.Infof("Migration '%s' completed successfully.", command)
	return nil
}

func (m *migratorImpl) Up(ctx context.Context, migrationFS fs.FS, path string, tableName string) error {
	return m.run(ctx, migrationFS, path, "up", tableName)
}

func (m *migratorImpl) Down(ctx context.Context, migrationFS fs.FS, path string, tableName string) error {
	return m.run(ctx, migrationFS, path, "down", tableName)
}
