package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	internalApp "github.com/felixgeelhaar/lessonboard/internal/app"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, time.March, 18, 8, 0, 0, 0, time.UTC)

// setupLocalApp wires a CLI app on a fresh SQLite store.
func setupLocalApp(t *testing.T, seed bool) *App {
	t.Helper()
	cfg := &config.Config{
		AppEnv:     "test",
		SQLitePath: filepath.Join(t.TempDir(), "lessonboard.db"),
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	container, err := internalApp.NewContainer(context.Background(), cfg, quiet)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	if seed {
		_, err := internalApp.Seed(context.Background(), container.Repository, domain.DateOf(testNow))
		require.NoError(t, err)
	}

	a := NewApp(container)
	a.SetClock(func() time.Time { return testNow })
	SetApp(a)
	SetLogger(quiet)
	t.Cleanup(func() { SetApp(nil) })
	return a
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInstructorsCommand(t *testing.T) {
	setupLocalApp(t, true)

	out, err := run(t, "instructors")

	require.NoError(t, err)
	assert.Contains(t, out, "Paul Durand")
	assert.Contains(t, out, "Claire Martin")
	assert.Contains(t, out, "Karim Benali")
	assert.Contains(t, out, "06 12 34 56 78")
}

func TestInstructorsCommand_Empty(t *testing.T) {
	setupLocalApp(t, false)

	out, err := run(t, "instructors")

	require.NoError(t, err)
	assert.Contains(t, out, "No instructors yet.")
}

func TestExportICSCommand(t *testing.T) {
	setupLocalApp(t, true)

	t.Run("writes the calendar to stdout", func(t *testing.T) {
		out, err := run(t, "export", "ics", "--instructor", "1", "--from", "2024-03-18", "--days", "7", "--output", "")

		require.NoError(t, err)
		assert.Contains(t, out, "BEGIN:VCALENDAR")
		assert.Contains(t, out, "DTSTART:20240318T090000")
	})

	t.Run("writes the calendar to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "paul.ics")

		out, err := run(t, "export", "ics", "-i", "1", "--from", "2024-03-18", "--days", "7", "-o", path)

		require.NoError(t, err)
		assert.Contains(t, out, "to "+path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "BEGIN:VEVENT")
	})

	t.Run("reports an empty timetable", func(t *testing.T) {
		out, err := run(t, "export", "ics", "-i", "3", "--from", "2024-04-01", "--days", "7", "-o", "")

		require.NoError(t, err)
		assert.Contains(t, out, "No lessons for Karim Benali")
	})

	t.Run("unknown instructor", func(t *testing.T) {
		_, err := run(t, "export", "ics", "-i", "99", "--from", "2024-03-18", "--days", "7", "-o", "")

		assert.ErrorIs(t, err, domain.ErrInstructorNotFound)
	})

	t.Run("rejects an empty range", func(t *testing.T) {
		_, err := run(t, "export", "ics", "-i", "1", "--from", "2024-03-18", "--days", "0", "-o", "")

		assert.Error(t, err)
	})
}

func TestSeedCommand(t *testing.T) {
	setupLocalApp(t, false)

	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Seeded week of 2024-03-18")
	assert.Contains(t, out, "instructors: 3")

	_, err = run(t, "seed")
	assert.ErrorIs(t, err, internalApp.ErrAlreadySeeded)
}

func TestMigrateCommand(t *testing.T) {
	setupLocalApp(t, false)

	out, err := run(t, "migrate")

	require.NoError(t, err)
	assert.Contains(t, out, "up to date")
}

func TestPublishCommand_NotConfigured(t *testing.T) {
	setupLocalApp(t, true)

	out, err := run(t, "publish", "caldav")

	require.NoError(t, err)
	assert.Contains(t, out, "not configured")
}

func TestHealthCommand(t *testing.T) {
	setupLocalApp(t, false)

	out, err := run(t, "health")

	require.NoError(t, err)
	assert.Contains(t, out, "database")
	assert.Contains(t, out, "overall    healthy")
}

func TestConfigFlag_ReloadsLayout(t *testing.T) {
	a := setupLocalApp(t, false)
	path := filepath.Join(t.TempDir(), "layout.yaml")
	require.NoError(t, os.WriteFile(path, []byte("day_start_hour: 7\nday_end_hour: 19\n"), 0600))
	t.Cleanup(func() { cfgFile = "" })

	_, err := run(t, "--config", path, "version")

	require.NoError(t, err)
	assert.Equal(t, 7, a.Layout.Geometry.DayStartHour)
	assert.Equal(t, 19, a.Layout.Geometry.DayEndHour)
	assert.Same(t, a.Container.CreateLessonHandler, a.CreateLessonHandler)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "lessonboard dev")
}

func TestCorrelationID(t *testing.T) {
	var logs bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { SetLogger(nil) })

	_, err := run(t, "version")

	require.NoError(t, err)
	assert.Contains(t, logs.String(), `msg="command start"`)
	assert.Contains(t, logs.String(), `msg="command end"`)
	assert.Contains(t, logs.String(), "correlation_id=")
}
