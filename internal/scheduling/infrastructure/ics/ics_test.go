package ics_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/ics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	monday = domain.NewDate(2024, time.March, 18)
	paul   = domain.Resource{ID: 1, FirstName: "Paul", LastName: "Durand"}
)

func lesson(id domain.BookingID, res domain.ResourceID, start, end string) domain.Booking {
	return domain.NewBooking(id, res, monday, domain.TimeRange{
		Start: domain.MustTimeOfDay(start),
		End:   domain.MustTimeOfDay(end),
	})
}

func TestEncode(t *testing.T) {
	lessons := []domain.Booking{
		lesson(1, 1, "09:00", "10:30").
			WithStudent(domain.Student{ID: 3, FirstName: "Léa", LastName: "Martin", Phone: "0601"}).
			WithComment("autoroute"),
		lesson(2, 1, "14:00", "15:00").WithType("Examen plateau").WithStatus(domain.StatusCancelled),
		lesson(3, 2, "09:00", "10:00"),
	}
	var buf bytes.Buffer

	err := ics.Encode(&buf, paul, lessons, ics.Options{Now: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	cal, err := ical.NewDecoder(&buf).Decode()
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2, "lessons of other instructors are left out")

	first := events[0]
	assert.Equal(t, "20240318T090000", first.Props.Get(ical.PropDateTimeStart).Value)
	assert.Equal(t, "20240318T103000", first.Props.Get(ical.PropDateTimeEnd).Value)
	assert.Empty(t, first.Props.Get(ical.PropDateTimeStart).Params.Get(ical.ParamTimezoneID))
	assert.Equal(t, "conduite - Léa Martin", first.Props.Get(ical.PropSummary).Value)
	assert.Equal(t, ics.UID(1), first.Props.Get(ical.PropUID).Value)
	assert.Contains(t, first.Props.Get(ical.PropDescription).Value, "Léa Martin (0601)")
	assert.True(t, ics.IsLessonboardEvent(first.Component))

	second := events[1]
	assert.Equal(t, "CANCELLED", second.Props.Get(ical.PropStatus).Value)
	assert.Equal(t, string(domain.CategoryCancelled), second.Props.Get(ical.PropCategories).Value)
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer

	err := ics.Encode(&buf, paul, nil, ics.Options{})

	assert.ErrorIs(t, err, ics.ErrEmptyTimetable)
}

func TestUID(t *testing.T) {
	assert.Equal(t, ics.UID(7), ics.UID(7))
	assert.NotEqual(t, ics.UID(7), ics.UID(8))
}
