package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds database configuration.
type Config struct {
	// Driver selects the backend. Empty or "auto" detects it from URL.
	Driver Driver

	// URL is the PostgreSQL connection string, or a SQLite path or URL.
	URL string

	// SQLitePath is the SQLite file. Defaults to ~/.lessonboard/lessonboard.db.
	SQLitePath string

	// MaxConns caps the PostgreSQL pool.
	MaxConns int
}

// NewConnection opens a connection with the factory registered for the
// configured driver. Import the sqlite or postgres subpackage to register it.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		driver = DetectDriver(cfg.URL)
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" && cfg.URL != "" {
		cfg.SQLitePath = SQLitePathFromURL(cfg.URL)
	}

	factory, ok := factories[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return factory(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".lessonboard", "lessonboard.db")
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Factory opens a connection for one driver.
type Factory func(ctx context.Context, cfg Config) (Connection, error)

var factories = map[Driver]Factory{}

// RegisterPostgresDriver registers the PostgreSQL connection factory.
func RegisterPostgresDriver(fn Factory) {
	factories[DriverPostgres] = fn
}

// RegisterSQLiteDriver registers the SQLite connection factory.
func RegisterSQLiteDriver(fn Factory) {
	factories[DriverSQLite] = fn
}
