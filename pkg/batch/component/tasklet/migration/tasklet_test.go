package migration_test

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gormadapter "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm"
	_ "github.com/tigerroll/paddock/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/paddock/pkg/batch/component/tasklet/migration"
	"github.com/tigerroll/paddock/pkg/batch/component/tasklet/migration/filesystem"
	model "github.com/tigerroll/paddock/pkg/batch/core/domain/model"
)

func newResolver(t *testing.T) *gormadapter.Resolver {
	t.Helper()
	r := gormadapter.NewResolver(map[string]interface{}{
		"metadata": map[string]interface{}{
			"type":     "sqlite",
			"database": filepath.Join(t.TempDir(), "metadata.db"),
		},
	})
	t.Cleanup(func() { _ = r.CloseAll() })
	return r
}

func tableExists(t *testing.T, r *gormadapter.Resolver, table string) bool {
	t.Helper()
	conn, err := r.Resolve(context.Background(), "metadata")
	require.NoError(t, err)
	return conn.DB().Migrator().HasTable(table)
}

func TestApply_FrameworkSchema(t *testing.T) {
	r := newResolver(t)
	ctx := context.Background()
	props := migration.Properties{DBRef: "metadata", IsFramework: true}

	require.NoError(t, migration.Apply(ctx, r, filesystem.FrameworkMigrationsFS(), props))
	assert.True(t, tableExists(t, r, "batch_job_execution"))
	assert.True(t, tableExists(t, r, "batch_step_execution"))

	// Second run is a no-op.
	require.NoError(t, migration.Apply(ctx, r, filesystem.FrameworkMigrationsFS(), props))

	props.Command = "down"
	require.NoError(t, migration.Apply(ctx, r, filesystem.FrameworkMigrationsFS(), props))
	assert.False(t, tableExists(t, r, "batch_job_execution"))
}

func TestMigrationTasklet_Execute(t *testing.T) {
	r := newResolver(t)
	appFS := fstest.MapFS{
		"sqlite/000001_cache.up.sql":   {Data: []byte("CREATE TABLE provider_cache (cache_key VARCHAR(64) PRIMARY KEY);")},
		"sqlite/000001_cache.down.sql": {Data: []byte("DROP TABLE provider_cache;")},
	}

	tasklet, err := migration.NewMigrationTasklet(r, appFS, map[string]string{"dbRef": "metadata"})
	require.NoError(t, err)

	status, err := tasklet.Execute(context.Background(), &model.StepExecution{StepName: "migrate"})
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, status)
	assert.True(t, tableExists(t, r, "provider_cache"))
	assert.NoError(t, tasklet.Close(context.Background()))
}

func TestMigrationTasklet_Errors(t *testing.T) {
	r := newResolver(t)

	_, err := migration.NewMigrationTasklet(r, fstest.MapFS{}, map[string]string{})
	assert.ErrorContains(t, err, "dbRef")

	err = migration.Apply(context.Background(), r, filesystem.FrameworkMigrationsFS(),
		migration.Properties{DBRef: "metadata", Command: "sideways"})
	assert.ErrorContains(t, err, "Unknown migration command")

	err = migration.Apply(context.Background(), r, filesystem.FrameworkMigrationsFS(),
		migration.Properties{DBRef: "absent"})
	assert.Error(t, err)
}
