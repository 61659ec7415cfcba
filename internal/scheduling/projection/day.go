package projection

import "github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"

// DayView is one column per instructor under a shared hour ruler.
type DayView struct {
	Date      domain.Date
	Ruler     []domain.HourMark
	Height    float64
	Resources []ResourceHeader
	Columns   []ResourceColumn
	Rejected  []Rejection
}

// BuildDay renders date with one column per visible instructor.
func BuildDay(set domain.BookingSet, resources []domain.Resource, date domain.Date, window Window, layout Layout) (*DayView, error) {
	b, err := newBuilder(set, resources, window, layout)
	if err != nil {
		return nil, err
	}
	view := &DayView{
		Date:      date,
		Ruler:     layout.Geometry.Ruler(),
		Height:    layout.Geometry.Height(),
		Resources: b.resources,
	}
	for _, header := range b.resources {
		col, err := b.column(header, date)
		if err != nil {
			return nil, err
		}
		view.Columns = append(view.Columns, col)
	}
	view.Rejected = b.rejected
	return view, nil
}

// Column returns the column of an instructor.
func (v *DayView) Column(id domain.ResourceID) (ResourceColumn, bool) {
	for _, col := range v.Columns {
		if col.Header.Resource.ID == id {
			return col, true
		}
	}
	return ResourceColumn{}, false
}
