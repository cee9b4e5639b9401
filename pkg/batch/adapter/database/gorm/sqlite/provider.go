// Package sqlite registers the SQLite dialector. Import it for side effects.
package sqlite

import (
	"errors"

	dbconfig "github.com/tigerroll/paddock/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString returns the SQLite DSN, which is the database file path.
// Foreign keys are switched on for file databases.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	if c.Database == ":memory:" {
		return c.Database
	}
	return c.Database + "?_foreign_keys=on"
}
