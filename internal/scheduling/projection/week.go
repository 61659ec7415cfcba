package projection

import "github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"

// WeekDay is one day column split into equal instructor sub-columns.
type WeekDay struct {
	Date           domain.Date
	SubColumns     []ResourceColumn
	SubColumnWidth float64
}

// WeekView is one column per displayed day.
type WeekView struct {
	Start     domain.Date
	End       domain.Date
	Ruler     []domain.HourMark
	Height    float64
	Resources []ResourceHeader
	Days      []WeekDay
	Rejected  []Rejection
}

// BuildWeek renders every displayed day of the window. Sundays are left out
// unless the window includes them.
func BuildWeek(set domain.BookingSet, resources []domain.Resource, window Window, layout Layout) (*WeekView, error) {
	b, err := newBuilder(set, resources, window, layout)
	if err != nil {
		return nil, err
	}
	view := &WeekView{
		Start:     window.Start,
		End:       window.End,
		Ruler:     layout.Geometry.Ruler(),
		Height:    layout.Geometry.Height(),
		Resources: b.resources,
	}
	width := 0.0
	if len(b.resources) > 0 {
		width = 1 / float64(len(b.resources))
	}
	for _, date := range window.Days() {
		day := WeekDay{Date: date, SubColumnWidth: width}
		for _, header := range b.resources {
			col, err := b.column(header, date)
			if err != nil {
				return nil, err
			}
			day.SubColumns = append(day.SubColumns, col)
		}
		view.Days = append(view.Days, day)
	}
	view.Rejected = b.rejected
	return view, nil
}

// Day returns the column of a date.
func (v *WeekView) Day(date domain.Date) (WeekDay, bool) {
	for _, d := range v.Days {
		if d.Date == date {
			return d, true
		}
	}
	return WeekDay{}, false
}
