package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/lessonboard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seedWeek = domain.NewDate(2024, time.March, 18)

func newLocalContainer(t *testing.T) *Container {
	t.Helper()
	cfg := &config.Config{
		AppEnv:     "test",
		SQLitePath: filepath.Join(t.TempDir(), "lessonboard.db"),
		CacheTTL:   time.Minute,
	}
	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestLocalContainer checks the wiring of a standalone install.
func TestLocalContainer(t *testing.T) {
	c := newLocalContainer(t)

	require.NotNil(t, c.DB)
	assert.Equal(t, database.DriverSQLite, c.DB.Driver())
	assert.NotNil(t, c.Repository)
	assert.NotNil(t, c.Gateway)
	assert.Same(t, c.InProcessEventBus, c.EventPublisher)
	assert.Nil(t, c.Cache)
	assert.Nil(t, c.RabbitPublisher)
	assert.Nil(t, c.PublishTimetablesHandler)

	results := c.Health.Check(context.Background())
	require.Contains(t, results, "database")
	assert.Equal(t, "healthy", string(results["database"].Status))
}

func TestLocalContainer_LessonWorkflow(t *testing.T) {
	c := newLocalContainer(t)
	ctx := context.Background()

	seeded, err := Seed(ctx, c.Repository, seedWeek)
	require.NoError(t, err)
	assert.Equal(t, 3, seeded.Instructors)
	assert.Equal(t, len(seedLessons), seeded.Lessons)

	instructors, err := c.ListInstructorsHandler.Handle(ctx, queries.ListInstructorsQuery{})
	require.NoError(t, err)
	require.Len(t, instructors, 3)
	paul := instructors[0].ID

	lesson, err := c.CreateLessonHandler.Handle(ctx, commands.CreateLessonCommand{
		Selection: domain.Selection{
			ResourceID: paul,
			Date:       seedWeek,
			Start:      domain.MustTimeOfDay("12:00"),
			End:        domain.MustTimeOfDay("13:00"),
		},
		Type: "conduite",
	})
	require.NoError(t, err)

	_, err = c.UpdateLessonHandler.Handle(ctx, commands.UpdateLessonCommand{
		Lesson: lesson,
		Action: domain.ActionComplete,
	})
	require.NoError(t, err)

	window := projection.WindowFor(projection.GranularityDay, seedWeek, c.Layout.WeekStart)
	calendar, err := c.GetCalendarHandler.Handle(ctx, queries.GetCalendarQuery{Window: window, Layout: c.Layout.Layout})
	require.NoError(t, err)
	require.NotNil(t, calendar.View.Day)

	var categories []domain.Category
	for _, col := range calendar.View.Day.Columns {
		for _, item := range col.Items {
			categories = append(categories, item.Category)
		}
	}
	assert.Contains(t, categories, domain.CategoryCompleted)
	assert.Contains(t, categories, domain.CategoryCancelled)
	assert.Contains(t, categories, domain.CategoryUnavailable)
}

func TestSeed_RefusesPopulatedStore(t *testing.T) {
	c := newLocalContainer(t)
	ctx := context.Background()
	_, err := Seed(ctx, c.Repository, seedWeek)
	require.NoError(t, err)

	_, err = Seed(ctx, c.Repository, seedWeek)

	assert.ErrorIs(t, err, ErrAlreadySeeded)
}

func TestRemoteContainer(t *testing.T) {
	cfg := &config.Config{
		AppEnv:        "test",
		BackOfficeURL: "http://backoffice.invalid",
	}

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.DB)
	assert.NotNil(t, c.Gateway)
	_, err = c.RequireRepository()
	assert.ErrorIs(t, err, ErrLocalStoreRequired)
	assert.ErrorIs(t, c.Migrate(context.Background()), ErrLocalStoreRequired)

	results := c.Health.Check(context.Background())
	assert.Equal(t, "healthy", string(results["backoffice"].Status))
}

func TestCurrentWeekStart(t *testing.T) {
	wednesday := time.Date(2024, time.March, 20, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, seedWeek, CurrentWeekStart(wednesday, time.Monday))
	assert.Equal(t, domain.NewDate(2024, time.March, 17), CurrentWeekStart(wednesday, time.Sunday))
}
