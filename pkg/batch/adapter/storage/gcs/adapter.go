// Package gcs provides a Google Cloud Storage implementation of the storage adapter interfaces.
package gcs

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	storageAdapter "github.com/tigerroll/paddock/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/paddock/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

const (
	// ProviderType defines the type identifier for this storage provider.
	ProviderType = "gcs"
)

// gcsAdapter implements storage.StorageConnection on a GCS client.
type gcsAdapter struct {
	client *storage.Client
	cfg    storageConfig.StorageConfig
	name   string
}

var _ storageAdapter.StorageConnection = (*gcsAdapter)(nil)

// NewGCSAdapter creates a client from cfg. An empty CredentialsFile falls back to
// application default credentials.
func NewGCSAdapter(ctx context.Context, cfg storageConfig.StorageConfig, name string) (storageAdapter.StorageConnection, error) {
	client, err := storage.NewClient(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}
	return &gcsAdapter{client: client, cfg: cfg, name: name}, nil
}

func clientOptions(cfg storageConfig.StorageConfig) []option.ClientOption {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	return opts
}

func (a *gcsAdapter) Close() error {
	logger.Debugf("GCS storage adapter '%s' closed.", a.name)
	return a.client.Close()
}

func (a *gcsAdapter) Type() string { return ProviderType }

func (a *gcsAdapter) Name() string { return a.name }

func (a *gcsAdapter) Config() storageConfig.StorageConfig { return a.cfg }

func (a *gcsAdapter) bucket(bucket string) (string, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	if bucket == "" {
		return "", fmt.Errorf("gcs storage adapter '%s': no bucket given and bucket_name not configured", a.name)
	}
	return bucket, nil
}

// Upload streams data into bucket/objectName.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	w := a.client.Bucket(b).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload gs://%s/%s: %w", b, objectName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", b, objectName, err)
	}
	logger.Debugf("Uploaded gs://%s/%s (adapter '%s').", b, objectName, a.name)
	return nil
}

// Download opens a reader on bucket/objectName.
func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	b, err := a.bucket(bucket)
	if err != nil {
		return nil, err
	}
	r, err := a.client.Bucket(b).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", b, objectName, err)
	}
	return r, nil
}

// GCSProvider opens GCS connections.
type GCSProvider struct{}

// NewGCSProvider creates a new GCSProvider.
func NewGCSProvider() *GCSProvider {
	return &GCSProvider{}
}

// Type returns "gcs".
func (p *GCSProvider) Type() string { return ProviderType }

// Open creates a GCS adapter from cfg.
func (p *GCSProvider) Open(ctx context.Context, name string, cfg storageConfig.StorageConfig) (storageAdapter.StorageConnection, error) {
	return NewGCSAdapter(ctx, cfg, name)
}

var _ storageAdapter.StorageProvider = (*GCSProvider)(nil)
