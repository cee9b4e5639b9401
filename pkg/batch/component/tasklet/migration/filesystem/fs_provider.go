// Package filesystem embeds the schema of the batch metadata tables.
package filesystem

import (
	"embed"
	"io/fs"

	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

//go:embed resource
var rawFrameworkMigrationFS embed.FS

// FrameworkMigrationsFS returns the embedded migrations with one directory per database type.
func FrameworkMigrationsFS() fs.FS {
	subFS, err := fs.Sub(rawFrameworkMigrationFS, "resource")
	if err != nil {
		logger.Fatalf("Failed to create subdirectory for framework migration FS: %v", err)
	}
	return subFS
}
