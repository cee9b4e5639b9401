// Package postgres registers the PostgreSQL dialector. Import it for side effects.
package postgres

import (
	"fmt"

	dbconfig "github.com/tigerroll/paddock/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gormadapter.RegisterDialector("postgres", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString builds a key/value DSN understood by pgx.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	sslmode := c.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslmode)
	if c.Schema != "" {
		dsn += " search_path=" + c.Schema
	}
	return dsn
}
