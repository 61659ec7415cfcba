package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars clears all lessonboard environment variables.
func clearEnvVars() {
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT",
		"DATABASE_URL", "SQLITE_PATH",
		"REDIS_URL", "CACHE_TTL", "CACHE_REQUIRED",
		"RABBITMQ_URL", "RABBITMQ_EXCHANGE", "RABBITMQ_QUEUE",
		"HTTP_ADDR",
		"BACKOFFICE_URL", "BACKOFFICE_TIMEOUT",
		"BREAKER_FAILURE_THRESHOLD", "BREAKER_OPEN_TIMEOUT",
		"BREAKER_INTERVAL", "BREAKER_HALF_OPEN_MAX_REQUESTS",
		"CALDAV_URL", "CALDAV_USERNAME", "CALDAV_PASSWORD",
		"CALDAV_CALENDAR_PATH", "CALDAV_DELETE_MISSING",
		"PUBLISH_CRON", "PUBLISH_HORIZON_DAYS",
		"WORKER_HEALTH_ADDR", "BOARD_LAYOUT_FILE",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.True(t, cfg.IsDevelopment())

	// Local store by default
	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.UsesLocalStore())
	assert.Equal(t, "lessonboard.db", filepath.Base(cfg.SQLitePath))

	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CacheRequired)
	assert.Equal(t, "lessonboard.lessons", cfg.RabbitMQExchange)

	assert.Equal(t, 10*time.Second, cfg.BackOfficeTimeout)
	assert.Equal(t, 5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 30*time.Second, cfg.BreakerOpenTimeout)
	assert.Equal(t, 1, cfg.BreakerHalfOpenMaxRequests)

	assert.False(t, cfg.CalDAVEnabled())
	assert.Equal(t, "*/30 * * * *", cfg.PublishCron)
	assert.Equal(t, 28, cfg.PublishHorizonDays)
	assert.Equal(t, "127.0.0.1:8081", cfg.WorkerHealthAddr)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	os.Setenv("APP_ENV", "production")
	os.Setenv("DATABASE_URL", "postgres://localhost/lessonboard")
	os.Setenv("BACKOFFICE_URL", "https://backoffice.example")
	os.Setenv("BREAKER_FAILURE_THRESHOLD", "3")
	os.Setenv("BREAKER_OPEN_TIMEOUT", "1m")
	os.Setenv("CALDAV_URL", "https://dav.example")
	os.Setenv("CALDAV_DELETE_MISSING", "true")
	os.Setenv("PUBLISH_HORIZON_DAYS", "14")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://localhost/lessonboard", cfg.DatabaseURL)
	assert.False(t, cfg.UsesLocalStore())
	assert.Equal(t, 3, cfg.BreakerFailureThreshold)
	assert.Equal(t, time.Minute, cfg.BreakerOpenTimeout)
	assert.True(t, cfg.CalDAVEnabled())
	assert.True(t, cfg.CalDAVDeleteMissing)
	assert.Equal(t, 14, cfg.PublishHorizonDays)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	os.Setenv("BREAKER_FAILURE_THRESHOLD", "many")
	os.Setenv("CACHE_TTL", "soon")
	os.Setenv("CACHE_REQUIRED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.BreakerFailureThreshold)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.False(t, cfg.CacheRequired)
}

func TestLoadLayout(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		layout, err := LoadLayout("")
		require.NoError(t, err)
		assert.Equal(t, DefaultLayoutFile(), *layout)
	})

	t.Run("reads and normalizes a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "board.yaml")
		data := `
day_start_hour: 7
day_end_hour: 21
week_start: " Sunday "
include_sunday: true
palette: ["#111111", "#222222", "#333333", "#444444", "#555555", "#666666"]
types:
  unavailability: [Urlaub, Krank]
  exams: [Prüfung]
styles:
  Exam:
    background: "#ffeb3b"
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		layout, err := LoadLayout(path)
		require.NoError(t, err)

		assert.Equal(t, 7, layout.DayStartHour)
		assert.Equal(t, 21, layout.DayEndHour)
		assert.Equal(t, 50.0, layout.PixelsPerHour)
		assert.Equal(t, 15, layout.SlotMinutes)
		assert.Equal(t, "sunday", layout.WeekStart)
		assert.True(t, layout.IncludeSunday)
		assert.Len(t, layout.Palette, 6)
		assert.Equal(t, []string{"Urlaub", "Krank"}, layout.Types.Unavailability)
		assert.Equal(t, "#ffeb3b", layout.Styles["exam"].Background)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadLayout(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "board.yaml")
		require.NoError(t, os.WriteFile(path, []byte("day_start_hour: [\n"), 0o600))

		_, err := LoadLayout(path)
		assert.Error(t, err)
	})
}
