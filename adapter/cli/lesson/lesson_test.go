package lesson

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/lessonboard/adapter/cli"
	internalApp "github.com/felixgeelhaar/lessonboard/internal/app"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = domain.NewDate(2024, time.March, 18)

func setupApp(t *testing.T) *cli.App {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	container, err := internalApp.NewContainer(context.Background(), &config.Config{
		AppEnv:     "test",
		SQLitePath: filepath.Join(t.TempDir(), "lessonboard.db"),
	}, quiet)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })
	_, err = internalApp.Seed(context.Background(), container.Repository, monday)
	require.NoError(t, err)

	a := cli.NewApp(container)
	a.SetClock(func() time.Time { return monday.Time().Add(8 * time.Hour) })
	cli.SetApp(a)
	t.Cleanup(func() { cli.SetApp(nil) })
	return a
}

func runLessonCmd(args ...string) (string, error) {
	createInstructor, createDate, createStart, createEnd = 0, "", "", ""
	createType, createStudent, createComment = "conduite", 0, ""
	editInstructor, editDate, editStart, editEnd = 0, "", "", ""
	editType, editStudent, editComment = "", 0, ""
	for _, c := range []*cobra.Command{createCmd, editCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}

	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetArgs(args)
	err := Cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreate(t *testing.T) {
	a := setupApp(t)

	t.Run("books a free slot", func(t *testing.T) {
		out, err := runLessonCmd("create", "-i", "1", "--start", "12:00", "--end", "13:00", "--student", "2", "--comment", "autoroute")

		require.NoError(t, err)
		assert.Contains(t, out, "Lesson created")
		assert.Contains(t, out, "2024-03-18 12:00-13:00")
		assert.Contains(t, out, "Hugo Petit")
		assert.Contains(t, out, "autoroute")

		lessons, err := a.Source.ListLessons(context.Background(), monday, monday, []domain.ResourceID{1})
		require.NoError(t, err)
		assert.Len(t, lessons, 4)
	})

	t.Run("refuses an overlapping slot", func(t *testing.T) {
		_, err := runLessonCmd("create", "-i", "1", "--date", "2024-03-18", "--start", "09:30", "--end", "10:30")

		assert.ErrorIs(t, err, domain.ErrLessonConflict)
	})

	t.Run("refuses an inverted range", func(t *testing.T) {
		_, err := runLessonCmd("create", "-i", "1", "--start", "13:00", "--end", "12:00")

		assert.Error(t, err)
	})

	t.Run("rejects a malformed time", func(t *testing.T) {
		_, err := runLessonCmd("create", "-i", "1", "--start", "9h", "--end", "10:00")

		assert.ErrorContains(t, err, "invalid --start")
	})
}

func TestCancelAndComplete(t *testing.T) {
	setupApp(t)

	out, err := runLessonCmd("cancel", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Lesson cancelled: #1")
	assert.Contains(t, out, "Status:     cancelled")

	_, err = runLessonCmd("cancel", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	out, err = runLessonCmd("complete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     completed")

	_, err = runLessonCmd("complete", "999")
	assert.ErrorIs(t, err, domain.ErrLessonNotFound)

	_, err = runLessonCmd("complete", "abc")
	assert.ErrorContains(t, err, "invalid lesson ID")
}

func TestEdit(t *testing.T) {
	setupApp(t)

	t.Run("a lone start keeps the end", func(t *testing.T) {
		out, err := runLessonCmd("edit", "5", "--start", "10:00")

		require.NoError(t, err)
		assert.Contains(t, out, "Lesson updated: #5")
		assert.Contains(t, out, "10:00-10:30")
		assert.Contains(t, out, "Status:     scheduled")
	})

	t.Run("moves and detaches the student", func(t *testing.T) {
		out, err := runLessonCmd("edit", "5", "--instructor", "3", "--date", "2024-03-22", "--student", "0", "--type", "examen code")

		require.NoError(t, err)
		assert.Contains(t, out, "Instructor: 3")
		assert.Contains(t, out, "2024-03-22")
		assert.Contains(t, out, "Type:       examen code")
		assert.NotContains(t, out, "Student:")
	})

	t.Run("refuses an overlap", func(t *testing.T) {
		_, err := runLessonCmd("edit", "2", "--start", "09:30")

		assert.ErrorIs(t, err, domain.ErrLessonConflict)
	})

	t.Run("nothing to edit", func(t *testing.T) {
		_, err := runLessonCmd("edit", "5")

		assert.ErrorIs(t, err, errNothingToEdit)
	})
}
