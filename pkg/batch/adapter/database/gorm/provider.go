// Package gorm opens named database connections through gorm.
// Dialects register themselves from their own subpackages; import them for side effects.
package gorm

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	dbconfig "github.com/tigerroll/paddock/pkg/batch/adapter/database/config"
	"github.com/tigerroll/paddock/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"

	"gorm.io/gorm"
)

// DialectorFactory generates a gorm.Dialector from a dbconfig.DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory corresponding to the specified DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s", dbType)
	}
	return factory, nil
}

// Connection is an open gorm database bound to its configuration name.
type Connection struct {
	db   *gorm.DB
	cfg  dbconfig.DatabaseConfig
	name string
}

// DB returns the gorm handle.
func (c *Connection) DB() *gorm.DB { return c.db }

// SQLDB returns the underlying *sql.DB.
func (c *Connection) SQLDB() (*sql.DB, error) { return c.db.DB() }

// Config returns the configuration the connection was opened with.
func (c *Connection) Config() dbconfig.DatabaseConfig { return c.cfg }

// Type returns the database type, e.g. "sqlite".
func (c *Connection) Type() string { return c.cfg.Type }

// Name returns the configuration name.
func (c *Connection) Name() string { return c.name }

// Close closes the underlying connection pool.
func (c *Connection) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open establishes a gorm connection for dbConfig and applies its pool settings.
func Open(dbConfig dbconfig.DatabaseConfig) (*gorm.DB, error) {
	factory, err := GetDialectorFactory(dbConfig.Type)
	if err != nil {
		return nil, err
	}
	dialector, err := factory(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", dbConfig.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(dbConfig.LogLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if dbConfig.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(dbConfig.Pool.MaxOpenConns)
	}
	if dbConfig.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(dbConfig.Pool.MaxIdleConns)
	}
	if dbConfig.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(dbConfig.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}
	return db, nil
}

// Resolver opens connections by name from the "database" configuration block
// and keeps them open until CloseAll.
type Resolver struct {
	configs     map[string]interface{}
	connections map[string]*Connection
	mu          sync.Mutex
}

// NewResolver creates a Resolver over the raw named configurations.
func NewResolver(configs map[string]interface{}) *Resolver {
	return &Resolver{
		configs:     configs,
		connections: make(map[string]*Connection),
	}
}

// Config decodes the named configuration without opening a connection.
func (r *Resolver) Config(name string) (dbconfig.DatabaseConfig, error) {
	var cfg dbconfig.DatabaseConfig
	if err := configbinder.BindNamed(r.configs, name, &cfg); err != nil {
		return cfg, fmt.Errorf("database configuration '%s': %w", name, err)
	}
	return cfg, nil
}

// Resolve returns the connection called name, opening it on first use.
func (r *Resolver) Resolve(ctx context.Context, name string) (*Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[name]; ok {
		return conn, nil
	}
	return r.open(ctx, name)
}

// Dedicated opens a new connection called name that the resolver does not track.
// The caller owns it and must close it.
func (r *Resolver) Dedicated(ctx context.Context, name string) (*Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg, err := r.Config(name)
	if err != nil {
		return nil, err
	}
	db, err := Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection '%s': %w", name, err)
	}
	return &Connection{db: db, cfg: cfg, name: name}, nil
}

func (r *Resolver) open(ctx context.Context, name string) (*Connection, error) {
	conn, err := r.Dedicated(ctx, name)
	if err != nil {
		return nil, err
	}
	r.connections[name] = conn
	logger.Infof("Established new DB connection: %s (%s)", name, conn.cfg.Type)
	return conn, nil
}

// CloseAll closes every connection opened by the resolver.
func (r *Resolver) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result error
	for name, conn := range r.connections {
		if err := conn.Close(); err != nil {
			logger.Errorf("Failed to close connection '%s': %v", name, err)
			result = multierror.Append(result, err)
		}
		delete(r.connections, name)
	}
	return result
}
