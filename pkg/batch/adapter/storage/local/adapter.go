// Package local stores artifacts in a directory of the local file system.
package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	storageAdapter "github.com/tigerroll/paddock/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/paddock/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// ProviderType is the storage type served by this package.
const ProviderType = "local"

// localAdapter maps bucket/objectName to BaseDir/bucket/objectName.
type localAdapter struct {
	cfg  storageConfig.StorageConfig
	root string
	name string
}

var _ storageAdapter.StorageConnection = (*localAdapter)(nil)

// NewLocalAdapter creates an adapter rooted at cfg.BaseDir, creating the directory if needed.
func NewLocalAdapter(cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
	if cfg.BaseDir == "" {
		return nil, fmt.Errorf("local storage '%s': base_dir is required", name)
	}
	root, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("local storage '%s': %w", name, err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local storage '%s': cannot create base_dir: %w", name, err)
	}
	return &localAdapter{cfg: cfg, root: root, name: name}, nil
}

func (a *localAdapter) Close() error                        { return nil }
func (a *localAdapter) Type() string                        { return ProviderType }
func (a *localAdapter) Name() string                        { return a.name }
func (a *localAdapter) Config() storageConfig.StorageConfig { return a.cfg }

// Upload writes data to a temporary sibling and renames it into place,
// so a reader never sees a partially written artifact.
func (a *localAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	target, err := a.path(bucket, objectName)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("local storage '%s': %w", a.name, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("local storage '%s': %w", a.name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, data); err != nil {
		tmp.Close()
		return fmt.Errorf("local storage '%s': writing %s: %w", a.name, target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local storage '%s': writing %s: %w", a.name, target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("local storage '%s': %w", a.name, err)
	}
	logger.Debugf("Wrote %s (%s).", target, contentType)
	return nil
}

// Download opens bucket/objectName for reading. The caller closes it.
func (a *localAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	source, err := a.path(bucket, objectName)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("local storage '%s': %w", a.name, err)
	}
	return f, nil
}

// path resolves an object inside the root. Names escaping the root are rejected.
func (a *localAdapter) path(bucket, objectName string) (string, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	full := filepath.Join(a.root, bucket, objectName)
	if full != a.root && !strings.HasPrefix(full, a.root+string(filepath.Separator)) {
		return "", fmt.Errorf("local storage '%s': object %q is outside base_dir", a.name, objectName)
	}
	return full, nil
}

// LocalProvider opens local connections.
type LocalProvider struct{}

// NewLocalProvider creates a LocalProvider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Type returns "local".
func (p *LocalProvider) Type() string {
	return ProviderType
}

// Open creates a local adapter from cfg.
func (p *LocalProvider) Open(ctx context.Context, name string, cfg storageConfig.StorageConfig) (storageAdapter.StorageConnection, error) {
	return NewLocalAdapter(cfg, name)
}

var _ storageAdapter.StorageProvider = (*LocalProvider)(nil)
