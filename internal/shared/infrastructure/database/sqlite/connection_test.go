package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/lessonboard/internal/shared/application"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) database.Connection {
	t.Helper()
	conn, err := database.NewConnection(context.Background(), database.Config{
		URL: "sqlite://" + filepath.Join(t.TempDir(), "nested", "lessons.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	_, err = conn.Exec(context.Background(), `CREATE TABLE instructors (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return conn
}

func count(t *testing.T, conn database.Connection) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(context.Background(), `SELECT COUNT(*) FROM instructors`).Scan(&n))
	return n
}

func TestNewConnection(t *testing.T) {
	conn := open(t)

	assert.Equal(t, database.DriverSQLite, conn.Driver())
	assert.NoError(t, conn.Ping(context.Background()))
	assert.Contains(t, sqlite.DSN("/tmp/x.db"), "_pragma=foreign_keys(1)")
}

func TestConnection_ExecAndQuery(t *testing.T) {
	ctx := context.Background()
	conn := open(t)

	res, err := conn.Exec(ctx, `INSERT INTO instructors (id, name) VALUES (?, ?), (?, ?)`, 1, "Paul", 2, "Inès")
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := conn.Query(ctx, `SELECT name FROM instructors ORDER BY id`)
	require.NoError(t, err)
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Paul", "Inès"}, names)

	var missing string
	err = conn.QueryRow(ctx, `SELECT name FROM instructors WHERE id = ?`, 9).Scan(&missing)
	assert.True(t, database.IsNoRows(err))
}

func TestUnitOfWork(t *testing.T) {
	ctx := context.Background()
	conn := open(t)
	uow := database.NewUnitOfWork(conn)
	insert := func(ctx context.Context, id int) error {
		_, err := database.ExecutorFromContext(ctx, conn).Exec(ctx, `INSERT INTO instructors (id, name) VALUES (?, 'x')`, id)
		return err
	}

	t.Run("commits", func(t *testing.T) {
		err := application.WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
			return insert(ctx, 1)
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count(t, conn))
	})

	t.Run("nested units share the outer transaction", func(t *testing.T) {
		boom := errors.New("conflict")
		err := application.WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
			require.NoError(t, application.WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
				return insert(ctx, 2)
			}))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count(t, conn))
	})
}
