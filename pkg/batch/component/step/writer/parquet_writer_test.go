package writer_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pqlocal "github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/tigerroll/paddock/pkg/batch/adapter/storage"
	"github.com/tigerroll/paddock/pkg/batch/adapter/storage/local"
	"github.com/tigerroll/paddock/pkg/batch/component/step/writer"
)

type sample struct {
	Driver string  `parquet:"name=Driver, type=BYTE_ARRAY, convertedtype=UTF8"`
	Speed  float64 `parquet:"name=Speed, type=DOUBLE"`
	NGear  int32   `parquet:"name=nGear, type=INT32, convertedtype=INT_8"`
}

func newResolver(t *testing.T) (*storage.Resolver, string) {
	dir := t.TempDir()
	r := storage.NewResolver(map[string]interface{}{
		"local": map[string]interface{}{"type": "local", "base_dir": dir},
	}, local.NewLocalProvider())
	t.Cleanup(func() { _ = r.CloseAll() })
	return r, dir
}

func readBack(t *testing.T, file string) []sample {
	t.Helper()
	fr, err := pqlocal.NewLocalFileReader(file)
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(sample), 1)
	require.NoError(t, err)
	defer pr.ReadStop()
	rows := make([]sample, int(pr.GetNumRows()))
	require.NoError(t, pr.Read(&rows))
	return rows
}

func TestParquetWriter_WritesFixedName(t *testing.T) {
	r, dir := newResolver(t)
	w, err := writer.NewParquetWriter[sample](writer.ParquetWriterConfig{StorageRef: "local", OutputBaseDir: "out"}, r)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, w.Open(ctx, "raw_cleaned"))
	require.NoError(t, w.Write(ctx, []sample{{"VER", 301.5, 8}}))
	require.NoError(t, w.Write(ctx, []sample{{"PER", 298.0, 7}}))
	require.NoError(t, w.Close(ctx))

	rows := readBack(t, filepath.Join(dir, "out", "raw_cleaned.parquet"))
	assert.Equal(t, []sample{{"VER", 301.5, 8}, {"PER", 298.0, 7}}, rows)

	// A second run replaces the snapshot instead of adding a new file.
	require.NoError(t, w.Open(ctx, "raw_cleaned"))
	require.NoError(t, w.Write(ctx, []sample{{"HAM", 280.25, 6}}))
	require.NoError(t, w.Close(ctx))

	rows = readBack(t, filepath.Join(dir, "out", "raw_cleaned.parquet"))
	assert.Equal(t, []sample{{"HAM", 280.25, 6}}, rows)
	matches, err := filepath.Glob(filepath.Join(dir, "out", "*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestParquetWriter_Validation(t *testing.T) {
	r, _ := newResolver(t)

	_, err := writer.NewParquetWriter[sample](writer.ParquetWriterConfig{}, r)
	assert.Error(t, err)

	_, err = writer.NewParquetWriter[sample](writer.ParquetWriterConfig{StorageRef: "local", CompressionType: "LZMA"}, r)
	assert.Error(t, err)

	w, err := writer.NewParquetWriter[sample](writer.ParquetWriterConfig{StorageRef: "missing"}, r)
	require.NoError(t, err)
	assert.Error(t, w.Open(context.Background(), "raw_data"))
	assert.Error(t, w.Write(context.Background(), []sample{{}}))
	assert.NoError(t, w.Close(context.Background()))
}
