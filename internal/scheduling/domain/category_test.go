package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name       string
		lessonType domain.LessonType
		status     domain.Status
		want       domain.Category
	}{
		{name: "status cancelled overrides type", lessonType: "driving", status: domain.StatusCancelled, want: domain.CategoryCancelled},
		{name: "cancelled exam is cancelled", lessonType: "examen code", status: domain.StatusCancelled, want: domain.CategoryCancelled},
		{name: "completed", lessonType: "conduite", status: domain.StatusCompleted, want: domain.CategoryCompleted},
		{name: "unavailability", lessonType: "Congé", status: domain.StatusScheduled, want: domain.CategoryUnavailable},
		{name: "unavailability english", lessonType: "illness", status: domain.StatusScheduled, want: domain.CategoryUnavailable},
		{name: "exam ignores case and accents", lessonType: "  EXAMEN   Plateau ", status: domain.StatusScheduled, want: domain.CategoryExam},
		{name: "exam english", lessonType: "driving-test", status: domain.StatusScheduled, want: domain.CategoryExam},
		{name: "available", lessonType: "Disponible", status: domain.StatusScheduled, want: domain.CategoryAvailable},
		{name: "plain driving", lessonType: "conduite", status: domain.StatusScheduled, want: domain.CategoryNormal},
		{name: "unknown type", lessonType: "karaoke", status: domain.StatusScheduled, want: domain.CategoryNormal},
		{name: "empty type", lessonType: "", status: domain.StatusScheduled, want: domain.CategoryNormal},
		{name: "unknown status", lessonType: "reunion", status: domain.Status("postponed"), want: domain.CategoryUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.ResolveCategory(tt.lessonType, tt.status))
		})
	}
}

func TestCategoryResolver_CustomCatalog(t *testing.T) {
	resolver := domain.NewCategoryResolver(domain.TypeCatalog{
		Exams: []string{"Code de la route"},
	})

	assert.Equal(t, domain.CategoryExam, resolver.Resolve("code de la route", domain.StatusScheduled))
	assert.Equal(t, domain.CategoryNormal, resolver.Resolve("congé", domain.StatusScheduled))

	b := lesson(1, r1, testDate, "09:00", "10:00").WithType("Code de la route")
	assert.Equal(t, domain.CategoryExam, resolver.ResolveBooking(b))
}

func TestStyleSheet(t *testing.T) {
	styles := domain.DefaultStyleSheet()

	for _, c := range domain.Categories() {
		_, ok := styles[c]
		assert.True(t, ok, "missing style for %s", c)
	}

	assert.True(t, styles.Style(domain.CategoryCancelled).Muted)
	assert.Equal(t, styles[domain.CategoryNormal], styles.Style(domain.Category("mystery")))

	merged := styles.Merge(domain.StyleSheet{domain.CategoryExam: {Background: "#000000"}})
	assert.Equal(t, domain.ColorToken("#000000"), merged.Style(domain.CategoryExam).Background)
	assert.NotEqual(t, domain.ColorToken("#000000"), styles.Style(domain.CategoryExam).Background)
}

func TestColorFor(t *testing.T) {
	palette := domain.DefaultResourcePalette()

	t.Run("is stable", func(t *testing.T) {
		first := domain.ColorFor(5)
		for i := 0; i < 50; i++ {
			domain.ColorFor(domain.ResourceID(i))
		}
		assert.Equal(t, first, domain.ColorFor(5))
	})

	t.Run("indexes the palette modulo its size", func(t *testing.T) {
		tokens := palette.Tokens()
		assert.Equal(t, tokens[3], palette.ColorFor(3))
		assert.Equal(t, tokens[3], palette.ColorFor(domain.ResourceID(3+palette.Len())))
		assert.Equal(t, tokens[palette.Len()-1], palette.ColorFor(-1))
	})

	t.Run("palette is large enough", func(t *testing.T) {
		assert.GreaterOrEqual(t, palette.Len(), domain.MinPaletteSize)
	})
}

func TestNewResourcePalette(t *testing.T) {
	_, err := domain.NewResourcePalette("#000", "#111")
	assert.ErrorIs(t, err, domain.ErrPaletteTooSmall)

	tokens := []domain.ColorToken{"#0", "#1", "#2", "#3", "#4", "#5", "#6", "#7", "#8", "#9"}
	palette, err := domain.NewResourcePalette(tokens...)
	require.NoError(t, err)

	tokens[0] = "#changed"
	assert.Equal(t, domain.ColorToken("#0"), palette.ColorFor(0))
	assert.Equal(t, domain.ColorToken("#0"), palette.ColorFor(10))
}
