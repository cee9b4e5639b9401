// Package storage defines the common interfaces for storage adapters.
// Artifacts (parquet snapshots, CSV tables, metrics textfiles) are written through
// these interfaces so the same job can target the local file system or a GCS bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"

	storageConfig "github.com/tigerroll/paddock/pkg/batch/adapter/storage/config"
	coreAdapter "github.com/tigerroll/paddock/pkg/batch/core/adapter"
	"github.com/tigerroll/paddock/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// StorageExecutor defines generic storage operations.
type StorageExecutor interface {
	// Upload uploads data to the specified bucket and object name.
	// 'data' is the stream of data to upload. 'contentType' is the MIME type of the data.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download downloads data from the specified bucket and object name.
	// It returns a ReadCloser which must be closed by the caller after use.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
}

// StorageConnection represents a generic data storage connection.
type StorageConnection interface {
	coreAdapter.ResourceConnection
	StorageExecutor
	// Config returns the storage configuration associated with this connection.
	Config() storageConfig.StorageConfig
}

// StorageProvider creates connections of one storage type.
type StorageProvider interface {
	// Type returns the storage type served by this provider (e.g. "local", "gcs").
	Type() string
	// Open creates a connection named name from cfg.
	Open(ctx context.Context, name string, cfg storageConfig.StorageConfig) (StorageConnection, error)
}

// Resolver resolves named storage connections from configuration and caches them.
type Resolver struct {
	configs     map[string]interface{}
	providers   map[string]StorageProvider
	connections map[string]StorageConnection
	mu          sync.Mutex
}

// NewResolver creates a Resolver over the named storage configs.
func NewResolver(configs map[string]interface{}, providers ...StorageProvider) *Resolver {
	byType := make(map[string]StorageProvider, len(providers))
	for _, p := range providers {
		byType[p.Type()] = p
	}
	return &Resolver{
		configs:     configs,
		providers:   byType,
		connections: make(map[string]StorageConnection),
	}
}

// Resolve returns the connection for name, opening it on first use.
func (r *Resolver) Resolve(ctx context.Context, name string) (StorageConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.connections[name]; ok {
		return conn, nil
	}

	var cfg storageConfig.StorageConfig
	if err := configbinder.BindNamed(r.configs, name, &cfg); err != nil {
		return nil, fmt.Errorf("storage connection '%s': %w", name, err)
	}
	provider, ok := r.providers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("no storage provider found for type '%s' (connection '%s')", cfg.Type, name)
	}
	conn, err := provider.Open(ctx, name, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage connection '%s' (%s): %w", name, cfg.Type, err)
	}
	r.connections[name] = conn
	logger.Debugf("Opened storage connection '%s' (%s).", name, cfg.Type)
	return conn, nil
}

// CloseAll closes every opened connection.
func (r *Resolver) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result error
	for name, conn := range r.connections {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close storage connection '%s': %w", name, err))
		}
		delete(r.connections, name)
	}
	return result
}
