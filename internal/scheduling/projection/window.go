// Package projection arranges a booking set into the day, week and month
// layouts of the instructor board. Every view shares the same geometry,
// occupancy, category and color primitives from the domain package.
package projection

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
)

var (
	ErrInvalidWindow      = errors.New("invalid calendar window")
	ErrUnknownGranularity = errors.New("unknown calendar granularity")
)

// Granularity selects the projection.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// ParseGranularity validates a granularity name.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case GranularityDay, GranularityWeek, GranularityMonth:
		return g, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
}

// Window is the caller's visible range. It is never modified by a projection.
type Window struct {
	Start              domain.Date
	End                domain.Date
	Granularity        Granularity
	VisibleResourceIDs []domain.ResourceID
	IncludeSunday      bool
}

// Validate checks the bounds and granularity.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidWindow)
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: end %s before start %s", ErrInvalidWindow, w.End, w.Start)
	}
	if _, err := ParseGranularity(string(w.Granularity)); err != nil {
		return err
	}
	return nil
}

// Days returns the displayed days of the window, skipping Sundays unless
// IncludeSunday is set.
func (w Window) Days() []domain.Date {
	var days []domain.Date
	for d := w.Start; !d.After(w.End); d = d.AddDays(1) {
		if d.Weekday() == time.Sunday && !w.IncludeSunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

// Contains reports whether d is one of the displayed days.
func (w Window) Contains(d domain.Date) bool {
	if d.Before(w.Start) || d.After(w.End) {
		return false
	}
	return w.IncludeSunday || d.Weekday() != time.Sunday
}

// ShowsResource reports whether the instructor is visible. An empty
// VisibleResourceIDs shows everyone.
func (w Window) ShowsResource(id domain.ResourceID) bool {
	if len(w.VisibleResourceIDs) == 0 {
		return true
	}
	for _, visible := range w.VisibleResourceIDs {
		if visible == id {
			return true
		}
	}
	return false
}

// WindowFor builds the window of the given granularity containing anchor.
// Weeks start on weekStart; months span the calendar month.
func WindowFor(g Granularity, anchor domain.Date, weekStart time.Weekday) Window {
	w := Window{Start: anchor, End: anchor, Granularity: g}
	switch g {
	case GranularityWeek:
		w.Start = StartOfWeek(anchor, weekStart)
		w.End = w.Start.AddDays(6)
	case GranularityMonth:
		w.Start = domain.NewDate(anchor.Year, anchor.Month, 1)
		w.End = domain.NewDate(anchor.Year, anchor.Month+1, 0)
	}
	return w
}

// StartOfWeek returns the last weekStart on or before d.
func StartOfWeek(d domain.Date, weekStart time.Weekday) domain.Date {
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDays(-offset)
}

// Layout holds the rendering constants shared by all views.
type Layout struct {
	Geometry        domain.Geometry
	SlotGranularity time.Duration
	WeekStart       time.Weekday
	Styles          domain.StyleSheet
	Palette         domain.ResourcePalette
	Resolver        *domain.CategoryResolver
}

// DefaultLayout is 08:00 to 20:00, quarter-hour cells, Monday weeks.
func DefaultLayout() Layout {
	return Layout{
		Geometry:        domain.DefaultGeometry(),
		SlotGranularity: domain.DefaultGranularity,
		WeekStart:       time.Monday,
		Styles:          domain.DefaultStyleSheet(),
		Palette:         domain.DefaultResourcePalette(),
		Resolver:        domain.NewCategoryResolver(domain.DefaultTypeCatalog()),
	}
}

// Validate checks the geometry and slot size.
func (l Layout) Validate() error {
	if err := l.Geometry.Validate(); err != nil {
		return err
	}
	return domain.ValidateGranularity(l.SlotGranularity)
}

func (l Layout) resolver() *domain.CategoryResolver {
	if l.Resolver == nil {
		return domain.NewCategoryResolver(domain.DefaultTypeCatalog())
	}
	return l.Resolver
}

func (l Layout) styles() domain.StyleSheet {
	if l.Styles == nil {
		return domain.DefaultStyleSheet()
	}
	return l.Styles
}

// ResourceHeader is an instructor column header.
type ResourceHeader struct {
	Resource domain.Resource
	Color    domain.ColorToken
}

// Item is a lesson ready to draw.
type Item struct {
	Booking   domain.Booking
	Category  domain.Category
	Style     domain.CategoryStyle
	Color     domain.ColorToken
	Placement domain.Placement
}

// Rejection is a lesson that could not be drawn.
type Rejection struct {
	Booking domain.Booking
	Err     error
}

// ResourceColumn is one instructor's timeline on one day.
type ResourceColumn struct {
	Header ResourceHeader
	Date   domain.Date
	Items  []Item
	Cells  []domain.CellState
}

// builder carries what every view needs while rendering.
type builder struct {
	set       domain.BookingSet
	layout    Layout
	window    Window
	resources []ResourceHeader
	occupancy *domain.OccupancyIndex
	resolver  *domain.CategoryResolver
	styles    domain.StyleSheet
	rejected  []Rejection
}

func newBuilder(set domain.BookingSet, resources []domain.Resource, window Window, layout Layout) (*builder, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	b := &builder{
		set:       set,
		layout:    layout,
		window:    window,
		occupancy: domain.NewOccupancyIndex(set),
		resolver:  layout.resolver(),
		styles:    layout.styles(),
	}
	for _, r := range resources {
		if window.ShowsResource(r.ID) {
			b.resources = append(b.resources, ResourceHeader{Resource: r, Color: layout.Palette.ColorFor(r.ID)})
		}
	}
	return b, nil
}

func (b *builder) item(booking domain.Booking, color domain.ColorToken) Item {
	category := b.resolver.ResolveBooking(booking)
	return Item{
		Booking:  booking,
		Category: category,
		Style:    b.styles.Style(category),
		Color:    color,
	}
}

// column places one instructor's lessons of one day.
func (b *builder) column(header ResourceHeader, date domain.Date) (ResourceColumn, error) {
	col := ResourceColumn{Header: header, Date: date}
	g := b.layout.Geometry
	for _, booking := range b.set.For(date, header.Resource.ID) {
		if err := booking.Validate(g); err != nil {
			b.rejected = append(b.rejected, Rejection{Booking: booking, Err: err})
			continue
		}
		raw, err := g.Position(booking.Start(), booking.End())
		if err != nil {
			b.rejected = append(b.rejected, Rejection{Booking: booking, Err: err})
			continue
		}
		placement, visible := g.Clip(raw)
		if !visible {
			continue
		}
		it := b.item(booking, header.Color)
		it.Placement = placement
		col.Items = append(col.Items, it)
	}
	cells, err := b.occupancy.Cells(date, header.Resource.ID, g.Window().Start, g.Window().End, b.layout.SlotGranularity)
	if err != nil {
		return ResourceColumn{}, err
	}
	col.Cells = cells
	return col, nil
}
