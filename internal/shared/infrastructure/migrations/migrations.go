// Package migrations holds the lesson store schema for both drivers and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// FS returns the migration files of one driver.
func FS(driver database.Driver) (fs.FS, error) {
	switch driver {
	case database.DriverSQLite:
		return fs.Sub(files, "sqlite")
	case database.DriverPostgres:
		return fs.Sub(files, "postgres")
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}

// NewProvider builds a goose provider for db.
func NewProvider(driver database.Driver, db *sql.DB) (*goose.Provider, error) {
	fsys, err := FS(driver)
	if err != nil {
		return nil, err
	}
	dialect := goose.DialectSQLite3
	if driver == database.DriverPostgres {
		dialect = goose.DialectPostgres
	}
	return goose.NewProvider(dialect, db, fsys)
}

// Up applies pending migrations to db.
func Up(ctx context.Context, driver database.Driver, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	provider, err := NewProvider(driver, db)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		logger.Info("migration applied",
			"driver", driver,
			"version", r.Source.Version,
			"duration_ms", r.Duration.Milliseconds(),
		)
	}
	return nil
}

type sqlDBer interface {
	DB() *sql.DB
}

// Migrate applies pending migrations through conn. SQLite connections are
// migrated in place; PostgreSQL is reached with a database/sql handle on
// url since goose does not drive pgx pools.
func Migrate(ctx context.Context, conn database.Connection, url string, logger *slog.Logger) error {
	switch conn.Driver() {
	case database.DriverSQLite:
		withDB, ok := conn.(sqlDBer)
		if !ok {
			return fmt.Errorf("sqlite connection %T exposes no *sql.DB", conn)
		}
		return Up(ctx, database.DriverSQLite, withDB.DB(), logger)
	case database.DriverPostgres:
		db, err := sql.Open("postgres", url)
		if err != nil {
			return fmt.Errorf("failed to open migration connection: %w", err)
		}
		defer db.Close()
		return Up(ctx, database.DriverPostgres, db, logger)
	default:
		return fmt.Errorf("no migrations for driver %q", conn.Driver())
	}
}
