package projection

import (
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
)

// Badge summarises one instructor's lessons on a month day.
type Badge struct {
	Header ResourceHeader
	Count  int
	// ShowCount is true when more than one lesson is summarised.
	ShowCount bool
	// Representative is the first lesson of the day by start time and is
	// what a click on the badge opens.
	Representative Item
}

// MonthDay is a day cell of the month grid. Padding days from adjacent
// months are muted, carry no badges and take no interaction.
type MonthDay struct {
	Date        domain.Date
	InRange     bool
	Muted       bool
	Interactive bool
	Badges      []Badge
}

// MonthWeek is one row of the month grid.
type MonthWeek struct {
	Days []MonthDay
}

// MonthView is the month grid.
type MonthView struct {
	Start     domain.Date
	End       domain.Date
	Weekdays  []time.Weekday
	Resources []ResourceHeader
	Weeks     []MonthWeek
	Rejected  []Rejection
}

// Weekdays returns the column order of a week starting on weekStart.
func Weekdays(weekStart time.Weekday, includeSunday bool) []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(weekStart) + i) % 7)
		if wd == time.Sunday && !includeSunday {
			continue
		}
		days = append(days, wd)
	}
	return days
}

// MonthWeeks buckets [start, end] into calendar weeks starting on weekStart.
// Leading and trailing weeks are padded with days of adjacent months. Every
// week has 7 cells, or 6 when Sundays are left out.
func MonthWeeks(start, end domain.Date, weekStart time.Weekday, includeSunday bool) []MonthWeek {
	if end.Before(start) {
		return nil
	}
	var weeks []MonthWeek
	for first := StartOfWeek(start, weekStart); !first.After(end); first = first.AddDays(7) {
		week := MonthWeek{Days: make([]MonthDay, 0, 7)}
		shown := false
		for i := 0; i < 7; i++ {
			d := first.AddDays(i)
			if d.Weekday() == time.Sunday && !includeSunday {
				continue
			}
			inRange := !d.Before(start) && !d.After(end)
			week.Days = append(week.Days, MonthDay{
				Date:        d,
				InRange:     inRange,
				Muted:       !inRange,
				Interactive: inRange,
			})
			shown = shown || inRange
		}
		// a week holding only a hidden Sunday of the range adds nothing
		if shown {
			weeks = append(weeks, week)
		}
	}
	return weeks
}

// BuildMonth renders the month grid with one badge per instructor per day.
func BuildMonth(set domain.BookingSet, resources []domain.Resource, window Window, layout Layout) (*MonthView, error) {
	b, err := newBuilder(set, resources, window, layout)
	if err != nil {
		return nil, err
	}
	view := &MonthView{
		Start:     window.Start,
		End:       window.End,
		Weekdays:  Weekdays(layout.WeekStart, window.IncludeSunday),
		Resources: b.resources,
		Weeks:     MonthWeeks(window.Start, window.End, layout.WeekStart, window.IncludeSunday),
	}
	for w := range view.Weeks {
		days := view.Weeks[w].Days
		for i := range days {
			if !days[i].InRange {
				continue
			}
			days[i].Badges = b.badges(days[i].Date)
		}
	}
	view.Rejected = b.rejected
	return view, nil
}

func (b *builder) badges(date domain.Date) []Badge {
	var badges []Badge
	for _, header := range b.resources {
		var valid []domain.Booking
		for _, booking := range b.set.For(date, header.Resource.ID) {
			if err := booking.Validate(b.layout.Geometry); err != nil {
				b.rejected = append(b.rejected, Rejection{Booking: booking, Err: err})
				continue
			}
			valid = append(valid, booking)
		}
		if len(valid) == 0 {
			continue
		}
		badges = append(badges, Badge{
			Header:         header,
			Count:          len(valid),
			ShowCount:      len(valid) > 1,
			Representative: b.item(valid[0], header.Color),
		})
	}
	return badges
}

// Day returns the cell of a date, padding days included.
func (v *MonthView) Day(date domain.Date) (MonthDay, bool) {
	for _, w := range v.Weeks {
		for _, d := range w.Days {
			if d.Date == date {
				return d, true
			}
		}
	}
	return MonthDay{}, false
}

// Badge returns the badge of an instructor on an in-range day.
func (v *MonthView) Badge(date domain.Date, resource domain.ResourceID) (Badge, bool) {
	day, ok := v.Day(date)
	if !ok || !day.InRange {
		return Badge{}, false
	}
	for _, badge := range day.Badges {
		if badge.Header.Resource.ID == resource {
			return badge, true
		}
	}
	return Badge{}, false
}
