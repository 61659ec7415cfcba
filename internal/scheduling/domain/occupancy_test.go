package domain_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testDate = domain.NewDate(2024, time.March, 18)
	r1       = domain.ResourceID(1)
	r2       = domain.ResourceID(2)
)

func tr(start, end string) domain.TimeRange {
	return domain.TimeRange{Start: domain.MustTimeOfDay(start), End: domain.MustTimeOfDay(end)}
}

func lesson(id int64, resource domain.ResourceID, date domain.Date, start, end string) domain.Booking {
	return domain.NewBooking(domain.BookingID(id), resource, date, tr(start, end))
}

func TestIsOccupied_ScenarioA(t *testing.T) {
	set := domain.NewBookingSet(lesson(1, r1, testDate, "09:00", "10:00"))

	assert.True(t, domain.IsOccupied(set, testDate, r1, domain.MustTimeOfDay("09:30")))
	assert.False(t, domain.IsOccupied(set, testDate, r1, domain.MustTimeOfDay("10:00")))
	assert.True(t, domain.IsOccupied(set, testDate, r1, domain.MustTimeOfDay("09:00")))
	assert.False(t, domain.IsOccupied(set, testDate, r2, domain.MustTimeOfDay("09:30")))
	assert.False(t, domain.IsOccupied(set, testDate.AddDays(1), r1, domain.MustTimeOfDay("09:30")))
}

func TestOverlaps(t *testing.T) {
	set := domain.NewBookingSet(
		lesson(1, r1, testDate, "09:00", "10:00"),
		lesson(2, r1, testDate, "13:00", "14:30"),
	)

	tests := []struct {
		name  string
		query domain.TimeRange
		want  bool
	}{
		{name: "touching the end", query: tr("10:00", "11:00"), want: false},
		{name: "touching the start", query: tr("08:00", "09:00"), want: false},
		{name: "inside", query: tr("09:15", "09:45"), want: true},
		{name: "covering", query: tr("08:00", "11:00"), want: true},
		{name: "straddling the end", query: tr("14:00", "15:00"), want: true},
		{name: "between lessons", query: tr("10:00", "13:00"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Overlaps(set, testDate, r1, tt.query))
		})
	}
}

func TestOverlaps_MatchesHalfOpenDefinition(t *testing.T) {
	set := domain.NewBookingSet(
		lesson(1, r1, testDate, "09:00", "10:00"),
		lesson(2, r1, testDate, "10:30", "11:15"),
		lesson(3, r1, testDate, "16:45", "18:00"),
	)
	existing := set.For(testDate, r1)
	idx := domain.NewOccupancyIndex(set)

	for a := 8 * 60; a < 20*60; a += 5 {
		for b := a + 5; b <= 20*60; b += 10 {
			want := false
			for _, e := range existing {
				if a < e.End().Minutes() && b > e.Start().Minutes() {
					want = true
				}
			}
			q := domain.TimeRange{Start: domain.TimeOfDayFromMinutes(a), End: domain.TimeOfDayFromMinutes(b)}
			require.Equal(t, want, idx.Overlaps(testDate, r1, q), "query %s", q)
		}
	}
}

func TestOccupancyIndex_Cancelled(t *testing.T) {
	set := domain.NewBookingSet(
		lesson(1, r1, testDate, "09:00", "10:00").WithStatus(domain.StatusCancelled),
	)

	t.Run("cancelled lessons occupy by default", func(t *testing.T) {
		idx := domain.NewOccupancyIndex(set)
		assert.True(t, idx.IsOccupied(testDate, r1, domain.MustTimeOfDay("09:30")))
	})

	t.Run("cancelled lessons can free their slot", func(t *testing.T) {
		idx := domain.NewOccupancyIndex(set, domain.WithIgnoreCancelled())
		assert.False(t, idx.IsOccupied(testDate, r1, domain.MustTimeOfDay("09:30")))
		assert.False(t, idx.Overlaps(testDate, r1, tr("09:00", "10:00")))
	})
}

func TestOccupancyIndex_Conflicts(t *testing.T) {
	set := domain.NewBookingSet(
		lesson(2, r1, testDate, "11:00", "12:00"),
		lesson(1, r1, testDate, "09:00", "10:00"),
	)
	idx := domain.NewOccupancyIndex(set)

	conflicts := idx.Conflicts(testDate, r1, tr("09:30", "11:30"))

	require.Len(t, conflicts, 2)
	assert.Equal(t, domain.BookingID(1), conflicts[0].ID())
	assert.Equal(t, domain.BookingID(2), conflicts[1].ID())
}

func TestOccupancyIndex_Cells(t *testing.T) {
	set := domain.NewBookingSet(lesson(1, r1, testDate, "09:10", "09:20"))
	idx := domain.NewOccupancyIndex(set)

	t.Run("samples at the requested granularity", func(t *testing.T) {
		cells, err := idx.Cells(testDate, r1, domain.MustTimeOfDay("09:00"), domain.MustTimeOfDay("10:00"), 15*time.Minute)

		require.NoError(t, err)
		require.Len(t, cells, 4)
		assert.True(t, cells[0].Occupied)
		assert.True(t, cells[1].Occupied)
		assert.False(t, cells[2].Occupied)
		assert.Equal(t, domain.MustTimeOfDay("09:45"), cells[3].Time)
	})

	t.Run("supports finer cells", func(t *testing.T) {
		cells, err := idx.Cells(testDate, r1, domain.MustTimeOfDay("09:00"), domain.MustTimeOfDay("09:30"), 5*time.Minute)

		require.NoError(t, err)
		require.Len(t, cells, 6)
		occupied := 0
		for _, c := range cells {
			if c.Occupied {
				occupied++
			}
		}
		assert.Equal(t, 2, occupied)
	})

	t.Run("rejects granularities not dividing an hour", func(t *testing.T) {
		_, err := idx.Cells(testDate, r1, domain.MustTimeOfDay("09:00"), domain.MustTimeOfDay("10:00"), 7*time.Minute)
		assert.ErrorIs(t, err, domain.ErrInvalidGranularity)

		_, err = idx.Cells(testDate, r1, domain.MustTimeOfDay("09:00"), domain.MustTimeOfDay("10:00"), 90*time.Second)
		assert.ErrorIs(t, err, domain.ErrInvalidGranularity)
	})
}
