// Package mysql registers the MySQL dialector. Import it for side effects.
package mysql

import (
	"fmt"
	"time"

	driver "github.com/go-sql-driver/mysql"
	dbconfig "github.com/tigerroll/paddock/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func init() {
	gormadapter.RegisterDialector("mysql", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return mysql.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString builds a go-sql-driver DSN with utf8mb4, parsed times and UTC.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	dsn := driver.NewConfig()
	dsn.User = c.User
	dsn.Passwd = c.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	dsn.DBName = c.Database
	dsn.ParseTime = true
	dsn.Loc = time.UTC
	dsn.MultiStatements = true
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	return dsn.FormatDSN()
}
