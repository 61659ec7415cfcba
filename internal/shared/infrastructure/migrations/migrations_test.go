package migrations_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, migrations.Migrate(ctx, conn, "", nil))
	require.NoError(t, migrations.Migrate(ctx, conn, "", nil), "re-running is a no-op")

	for _, table := range []string{"instructors", "students", "lessons"} {
		var name string
		err := conn.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	provider, err := migrations.NewProvider(database.DriverSQLite, conn.(*sqlite.Connection).DB())
	require.NoError(t, err)
	version, err := provider.GetDBVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestFS(t *testing.T) {
	_, err := migrations.FS(database.DriverPostgres)
	assert.NoError(t, err)
	_, err = migrations.FS("mysql")
	assert.Error(t, err)
}
