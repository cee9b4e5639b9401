package gorm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbconfig "github.com/tigerroll/paddock/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm"
	_ "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm/sqlite"
)

func TestResolver_ResolveCachesConnection(t *testing.T) {
	r := gormadapter.NewResolver(map[string]interface{}{
		"cache": map[string]interface{}{
			"type":     "sqlite",
			"database": ":memory:",
			"pool":     map[string]interface{}{"max_open_conns": "1"},
		},
	})
	defer r.CloseAll()

	ctx := context.Background()
	first, err := r.Resolve(ctx, "cache")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, "cache")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "sqlite", first.Type())
	assert.Equal(t, "cache", first.Name())

	var one int
	require.NoError(t, first.DB().Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestResolver_Errors(t *testing.T) {
	r := gormadapter.NewResolver(map[string]interface{}{
		"oracle": map[string]interface{}{"type": "oracle"},
		"nopath": map[string]interface{}{"type": "sqlite"},
	})
	ctx := context.Background()

	_, err := r.Resolve(ctx, "missing")
	assert.ErrorContains(t, err, "not found")

	_, err = r.Resolve(ctx, "oracle")
	assert.ErrorContains(t, err, "no dialector registered")

	_, err = r.Resolve(ctx, "nopath")
	assert.ErrorContains(t, err, "path cannot be empty")

	assert.NoError(t, r.CloseAll())
}

func TestOpen_UnknownType(t *testing.T) {
	_, err := gormadapter.Open(dbconfig.DatabaseConfig{Type: "db2"})
	assert.Error(t, err)
}

func TestResolver_DedicatedIsUntracked(t *testing.T) {
	dir := t.TempDir()
	r := gormadapter.NewResolver(map[string]interface{}{
		"metadata": map[string]interface{}{
			"type":     "sqlite",
			"database": dir + "/meta.db",
		},
	})
	defer r.CloseAll()
	ctx := context.Background()

	shared, err := r.Resolve(ctx, "metadata")
	require.NoError(t, err)

	own, err := r.Dedicated(ctx, "metadata")
	require.NoError(t, err)
	assert.NotSame(t, shared, own)
	require.NoError(t, own.Close())

	var one int
	require.NoError(t, shared.DB().Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
