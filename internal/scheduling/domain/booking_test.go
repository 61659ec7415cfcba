package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBooking(t *testing.T) {
	b := lesson(7, r1, testDate, "09:00", "10:00").
		WithType("Examen plateau").
		WithComment("bring the L plate").
		WithStudent(domain.Student{ID: 3, FirstName: "Léa", LastName: "Martin", Category: "B"})

	assert.Equal(t, domain.BookingID(7), b.ID())
	assert.Equal(t, r1, b.ResourceID())
	assert.Equal(t, testDate, b.Date())
	assert.Equal(t, domain.StatusScheduled, b.Status())
	assert.Equal(t, domain.LessonType("Examen plateau"), b.Type())
	assert.Equal(t, "bring the L plate", b.Comment())

	student, ok := b.Student()
	require.True(t, ok)
	assert.Equal(t, "Léa Martin", student.DisplayName())

	_, ok = b.WithoutStudent().Student()
	assert.False(t, ok)
}

func TestBooking_WithDoesNotMutate(t *testing.T) {
	original := lesson(1, r1, testDate, "09:00", "10:00")

	cancelled := original.WithStatus(domain.StatusCancelled)
	moved := original.WithRange(tr("11:00", "12:00"))

	assert.Equal(t, domain.StatusScheduled, original.Status())
	assert.Equal(t, tr("09:00", "10:00"), original.Range())
	assert.Equal(t, domain.StatusCancelled, cancelled.Status())
	assert.Equal(t, tr("11:00", "12:00"), moved.Range())
	assert.False(t, original.Equal(cancelled))
	assert.True(t, original.Equal(lesson(1, r1, testDate, "09:00", "10:00")))
}

func TestBooking_Validate(t *testing.T) {
	g := domain.DefaultGeometry()

	assert.NoError(t, lesson(1, r1, testDate, "09:00", "10:00").Validate(g))
	assert.NoError(t, lesson(1, r1, testDate, "07:00", "09:00").Validate(g))
	assert.ErrorIs(t, lesson(1, r1, testDate, "10:00", "10:00").Validate(g), domain.ErrInvalidRange)
	assert.ErrorIs(t, lesson(1, r1, testDate, "11:00", "10:00").Validate(g), domain.ErrInvalidRange)
	assert.ErrorIs(t, lesson(1, r1, testDate, "06:00", "21:00").Validate(g), domain.ErrRangeOutsideWindow)
}

func TestParseStatus(t *testing.T) {
	tests := map[string]domain.Status{
		"scheduled": domain.StatusScheduled,
		"Planifiée": domain.StatusScheduled,
		"planned":   domain.StatusScheduled,
		"réalisée":  domain.StatusCompleted,
		"realisee":  domain.StatusCompleted,
		"DONE":      domain.StatusCompleted,
		"annulée":   domain.StatusCancelled,
		" canceled": domain.StatusCancelled,
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := domain.ParseStatus(in)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	_, err := domain.ParseStatus("postponed")
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)
}

func TestBookingSet(t *testing.T) {
	tomorrow := testDate.AddDays(1)
	set := domain.NewBookingSet(
		lesson(3, r1, testDate, "14:00", "15:00"),
		lesson(1, r1, testDate, "09:00", "10:00"),
		lesson(2, r2, testDate, "09:00", "10:00"),
		lesson(4, r1, tomorrow, "08:00", "09:00"),
	)

	t.Run("orders lessons by start", func(t *testing.T) {
		list := set.For(testDate, r1)

		require.Len(t, list, 2)
		assert.Equal(t, domain.BookingID(1), list[0].ID())
		assert.Equal(t, domain.BookingID(3), list[1].ID())
	})

	t.Run("returns copies", func(t *testing.T) {
		list := set.For(testDate, r1)
		list[0] = lesson(99, r1, testDate, "18:00", "19:00")

		assert.Equal(t, domain.BookingID(1), set.For(testDate, r1)[0].ID())
	})

	t.Run("lists dates and lessons", func(t *testing.T) {
		assert.Equal(t, 4, set.Len())
		assert.Equal(t, []domain.Date{testDate, tomorrow}, set.Dates())

		var ids []domain.BookingID
		for _, b := range set.All() {
			ids = append(ids, b.ID())
		}
		assert.Equal(t, []domain.BookingID{1, 3, 2, 4}, ids)
	})

	t.Run("finds by id", func(t *testing.T) {
		b, ok := set.Find(2)
		require.True(t, ok)
		assert.Equal(t, r2, b.ResourceID())

		_, ok = set.Find(42)
		assert.False(t, ok)
	})

	t.Run("empty set", func(t *testing.T) {
		empty := domain.NewBookingSet()
		assert.Nil(t, empty.For(testDate, r1))
		assert.Zero(t, empty.Len())
	})
}

func TestLifecycleAction(t *testing.T) {
	scheduled := lesson(1, r1, testDate, "09:00", "10:00")

	t.Run("parses actions", func(t *testing.T) {
		a, err := domain.ParseAction(" Cancel ")
		require.NoError(t, err)
		assert.Equal(t, domain.ActionCancel, a)

		_, err = domain.ParseAction("delete")
		assert.ErrorIs(t, err, domain.ErrUnknownAction)
	})

	t.Run("cancel and complete require a scheduled lesson", func(t *testing.T) {
		cancelled, err := domain.ActionCancel.Apply(scheduled)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status())

		_, err = domain.ActionComplete.Apply(cancelled)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("edit keeps the status", func(t *testing.T) {
		done := scheduled.WithStatus(domain.StatusCompleted)
		edited, err := domain.ActionEdit.Apply(done)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, edited.Status())
	})

	t.Run("routing keys", func(t *testing.T) {
		assert.Equal(t, domain.RoutingKeyLessonCancelled, domain.RoutingKeyForAction(domain.ActionCancel))
		assert.Equal(t, domain.RoutingKeyLessonCompleted, domain.RoutingKeyForAction(domain.ActionComplete))
		assert.Equal(t, domain.RoutingKeyLessonEdited, domain.RoutingKeyForAction(domain.ActionEdit))
	})
}

func TestLessonDraft(t *testing.T) {
	studentID := int64(5)
	draft := domain.LessonDraft{
		ResourceID: r1,
		Date:       testDate,
		Range:      tr("14:00", "15:00"),
		Type:       "conduite",
		StudentID:  &studentID,
	}

	require.NoError(t, draft.Validate(domain.DefaultGeometry()))

	b := draft.Booking()
	assert.Equal(t, domain.StatusScheduled, b.Status())
	student, ok := b.Student()
	require.True(t, ok)
	assert.Equal(t, studentID, student.ID)

	draft.Range = tr("15:00", "14:00")
	assert.ErrorIs(t, draft.Validate(domain.DefaultGeometry()), domain.ErrInvalidRange)

	draft.ResourceID = 0
	assert.ErrorIs(t, draft.Validate(domain.DefaultGeometry()), domain.ErrMissingInstructor)
}
