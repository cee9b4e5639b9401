package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"

	stepwriter "github.com/tigerroll/paddock/pkg/batch/component/step/writer"
	"github.com/tigerroll/paddock/pkg/batch/core/application/port"
	"github.com/tigerroll/paddock/pkg/batch/support/util/logger"
)

// TableStore saves and loads one kind of table as CSV files in a storage connection.
type TableStore[T any] struct {
	codec      port.TableCodec[T]
	resolver   stepwriter.StorageResolver
	storageRef string
	baseDir    string
}

// NewTableStore creates a TableStore writing under baseDir of the storageRef connection.
func NewTableStore[T any](codec port.TableCodec[T], resolver stepwriter.StorageResolver, storageRef, baseDir string) *TableStore[T] {
	return &TableStore[T]{codec: codec, resolver: resolver, storageRef: storageRef, baseDir: baseDir}
}

// ObjectName returns the storage object for file.
func (s *TableStore[T]) ObjectName(file string) string {
	return path.Join(s.baseDir, file)
}

// Save encodes table and replaces file with it.
func (s *TableStore[T]) Save(ctx context.Context, file string, table T) error {
	var buf bytes.Buffer
	if err := s.codec.Encode(&buf, table); err != nil {
		return fmt.Errorf("encode %s: %w", file, err)
	}
	conn, err := s.resolver.Resolve(ctx, s.storageRef)
	if err != nil {
		return err
	}
	object := s.ObjectName(file)
	if err := conn.Upload(ctx, "", object, &buf, ContentType); err != nil {
		return fmt.Errorf("upload %s: %w", object, err)
	}
	logger.Infof("Wrote %s to storage '%s'.", object, s.storageRef)
	return nil
}

// Load reads and decodes file.
func (s *TableStore[T]) Load(ctx context.Context, file string) (T, error) {
	var zero T
	conn, err := s.resolver.Resolve(ctx, s.storageRef)
	if err != nil {
		return zero, err
	}
	object := s.ObjectName(file)
	rc, err := conn.Download(ctx, "", object)
	if err != nil {
		return zero, fmt.Errorf("download %s: %w", object, err)
	}
	defer rc.Close()
	table, err := s.codec.Decode(rc)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", object, err)
	}
	return table, nil
}
