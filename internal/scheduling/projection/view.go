package projection

import (
	"fmt"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
)

// View is the projection selected by the window granularity. Exactly one of
// Day, Week and Month is set.
type View struct {
	Granularity Granularity
	Window      Window
	Day         *DayView
	Week        *WeekView
	Month       *MonthView
}

// Rejected returns the lessons that could not be drawn.
func (v View) Rejected() []Rejection {
	switch {
	case v.Day != nil:
		return v.Day.Rejected
	case v.Week != nil:
		return v.Week.Rejected
	case v.Month != nil:
		return v.Month.Rejected
	}
	return nil
}

// Build renders the projection matching window.Granularity. Day windows
// render their start date.
func Build(set domain.BookingSet, resources []domain.Resource, window Window, layout Layout) (View, error) {
	view := View{Granularity: window.Granularity, Window: window}
	var err error
	switch window.Granularity {
	case GranularityDay:
		view.Day, err = BuildDay(set, resources, window.Start, window, layout)
	case GranularityWeek:
		view.Week, err = BuildWeek(set, resources, window, layout)
	case GranularityMonth:
		view.Month, err = BuildMonth(set, resources, window, layout)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownGranularity, window.Granularity)
	}
	if err != nil {
		return View{}, err
	}
	return view, nil
}
