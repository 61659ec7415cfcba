package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutFromFile(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		layout, err := LayoutFromFile(config.DefaultLayoutFile())

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultGeometry(), layout.Geometry)
		assert.Equal(t, 15*time.Minute, layout.SlotGranularity)
		assert.Equal(t, time.Monday, layout.WeekStart)
		assert.False(t, layout.IncludeSunday)
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "layout.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
day_start_hour: 7
day_end_hour: 19
pixels_per_hour: 60
slot_minutes: 30
week_start: Sunday
include_sunday: true
palette: ["c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9", "c10"]
types:
  exams: ["code"]
styles:
  Exam:
    background: "#000000"
`), 0o600))

		layout, err := LoadBoardLayout(path)

		require.NoError(t, err)
		assert.Equal(t, 7, layout.Geometry.DayStartHour)
		assert.InDelta(t, 1.0, layout.Geometry.PixelsPerMinute, 0.0001)
		assert.Equal(t, 30*time.Minute, layout.SlotGranularity)
		assert.Equal(t, time.Sunday, layout.WeekStart)
		assert.True(t, layout.IncludeSunday)
		assert.Equal(t, 11, layout.Palette.Len())
		assert.Equal(t, domain.CategoryExam, layout.Resolver.Resolve("Code", domain.StatusScheduled))
		assert.Equal(t, domain.CategoryNormal, layout.Resolver.Resolve("examen code", domain.StatusScheduled))

		exam := layout.Styles.Style(domain.CategoryExam)
		assert.Equal(t, domain.ColorToken("#000000"), exam.Background)
		assert.Equal(t, domain.DefaultStyleSheet()[domain.CategoryExam].Border, exam.Border)
	})

	t.Run("short palette", func(t *testing.T) {
		f := config.DefaultLayoutFile()
		f.Palette = []string{"red", "blue"}

		_, err := LayoutFromFile(f)

		assert.ErrorIs(t, err, domain.ErrPaletteTooSmall)
	})

	t.Run("unknown week start", func(t *testing.T) {
		f := config.DefaultLayoutFile()
		f.WeekStart = "someday"

		_, err := LayoutFromFile(f)

		assert.ErrorIs(t, err, ErrInvalidLayout)
	})

	t.Run("unknown style category", func(t *testing.T) {
		f := config.DefaultLayoutFile()
		f.Styles = map[string]config.StyleOverride{"holiday": {Background: "#fff"}}

		_, err := LayoutFromFile(f)

		assert.ErrorIs(t, err, ErrInvalidLayout)
	})

	t.Run("inverted day window", func(t *testing.T) {
		f := config.DefaultLayoutFile()
		f.DayStartHour, f.DayEndHour = 18, 9

		_, err := LayoutFromFile(f)

		assert.ErrorIs(t, err, domain.ErrInvalidGeometry)
	})
}
