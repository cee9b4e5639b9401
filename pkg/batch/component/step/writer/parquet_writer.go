// Package writer provides item writers that persist whole artifacts through a storage connection.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/xitongsys/parquet-go/parquet"
	pqwriter "github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/paddock/pkg/batch/adapter/storage"
	"github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/support/util/exception"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

const moduleName = "writer"

// StorageResolver resolves a named storage connection.
type StorageResolver interface {
	Resolve(ctx context.Context, name string) (storage.StorageConnection, error)
}

// ParquetWriterConfig holds the configuration for ParquetWriter.
type ParquetWriterConfig struct {
	// StorageRef is the name of the storage connection to use.
	StorageRef string `yaml:"storageRef"`
	// OutputBaseDir is the directory inside the storage connection.
	OutputBaseDir string `yaml:"outputBaseDir"`
	// CompressionType is "SNAPPY" (default), "GZIP" or "NONE".
	CompressionType string `yaml:"compressionType"`
}

// ParquetWriter buffers items and writes them as one Parquet file named after
// the artifact given to Open. The file name carries no timestamp, so a re-run
// replaces the previous snapshot.
type ParquetWriter[T any] struct {
	config   ParquetWriterConfig
	resolver StorageResolver
	// itemPrototype drives schema reflection from the parquet struct tags of T.
	itemPrototype *T

	name        string
	storageConn storage.StorageConnection
	buffered    []T
}

// NewParquetWriter creates a ParquetWriter. StorageRef is required.
func NewParquetWriter[T any](config ParquetWriterConfig, resolver StorageResolver) (*ParquetWriter[T], error) {
	if config.StorageRef == "" {
		return nil, exception.NewBatchErrorf(moduleName, "ParquetWriter requires 'storageRef'")
	}
	if config.CompressionType == "" {
		config.CompressionType = "SNAPPY"
	}
	if _, err := compressionCodec(config.CompressionType); err != nil {
		return nil, exception.NewBatchErrorf(moduleName, "Invalid ParquetWriter configuration", err)
	}
	return &ParquetWriter[T]{
		config:        config,
		resolver:      resolver,
		itemPrototype: new(T),
	}, nil
}

// ObjectName returns the storage object the artifact name maps to.
func (w *ParquetWriter[T]) ObjectName(name string) string {
	return path.Join(w.config.OutputBaseDir, name+".parquet")
}

// Open resolves the storage connection and starts a new artifact.
func (w *ParquetWriter[T]) Open(ctx context.Context, name string) error {
	if name == "" {
		return exception.NewBatchErrorf(moduleName, "ParquetWriter requires an artifact name")
	}
	conn, err := w.resolver.Resolve(ctx, w.config.StorageRef)
	if err != nil {
		return exception.NewBatchError(moduleName,
			fmt.Sprintf("Failed to resolve storage connection '%s' for ParquetWriter '%s'", w.config.StorageRef, name),
			err, false, false)
	}
	w.name = name
	w.storageConn = conn
	w.buffered = w.buffered[:0]
	logger.Debugf("ParquetWriter '%s' opened. Target storage: %s, Base directory: %s", name, w.config.StorageRef, w.config.OutputBaseDir)
	return nil
}

// Write buffers items; nothing reaches storage before Close.
func (w *ParquetWriter[T]) Write(ctx context.Context, items []T) error {
	if w.storageConn == nil {
		return exception.NewBatchErrorf(moduleName, "ParquetWriter.Write called before Open")
	}
	w.buffered = append(w.buffered, items...)
	return nil
}

// Close encodes the buffered items and uploads the file.
func (w *ParquetWriter[T]) Close(ctx context.Context) error {
	if w.storageConn == nil {
		return nil
	}
	defer func() {
		w.storageConn = nil
		w.buffered = nil
	}()

	buf := new(bytes.Buffer)
	if err := w.encode(buf); err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("Failed to encode Parquet file '%s'", w.name), err, false, false)
	}

	objectName := w.ObjectName(w.name)
	size := buf.Len()
	if err := w.storageConn.Upload(ctx, "", objectName, buf, "application/octet-stream"); err != nil {
		return exception.NewBatchError(moduleName, fmt.Sprintf("Failed to upload Parquet file '%s'", objectName), err, false, false)
	}
	logger.Infof("ParquetWriter '%s': wrote %d rows (%d bytes) to %s/%s", w.name, len(w.buffered), size, w.config.StorageRef, objectName)
	return nil
}

func (w *ParquetWriter[T]) encode(buf *bytes.Buffer) (err error) {
	codec, err := compressionCodec(w.config.CompressionType)
	if err != nil {
		return err
	}
	pw, err := pqwriter.NewParquetWriterFromWriter(buf, w.itemPrototype, 4)
	if err != nil {
		return fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	pw.CompressionType = codec

	for i := range w.buffered {
		if err := pw.Write(w.buffered[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	// parquet-go reports some schema problems by panicking in WriteStop.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parquet writer panicked during WriteStop: %v", r)
		}
	}()
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to stop Parquet writer: %w", err)
	}
	return nil
}

func compressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "":
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

var _ port.ItemWriter[any] = (*ParquetWriter[any])(nil)
