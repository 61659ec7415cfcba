package domain

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrRangeOutsideWindow = errors.New("range is longer than the visible day window")
	ErrInvalidGeometry    = errors.New("invalid grid geometry")
)

const (
	DefaultDayStartHour  = 8
	DefaultDayEndHour    = 20
	DefaultPixelsPerHour = 50.0
)

// Placement is the vertical position of a range inside a day column.
type Placement struct {
	Offset        float64
	Length        float64
	ClippedTop    bool
	ClippedBottom bool
}

// Bottom returns the offset of the lower edge.
func (p Placement) Bottom() float64 {
	return p.Offset + p.Length
}

// HourMark is one labelled line of the hour ruler.
type HourMark struct {
	Hour   int
	Label  string
	Offset float64
}

// Geometry maps wall-clock times to vertical pixel offsets inside the
// visible day window [DayStartHour, DayEndHour).
type Geometry struct {
	DayStartHour    int
	DayEndHour      int
	PixelsPerMinute float64
}

// DefaultGeometry shows 08:00 to 20:00 at 50 pixels per hour.
func DefaultGeometry() Geometry {
	return Geometry{
		DayStartHour:    DefaultDayStartHour,
		DayEndHour:      DefaultDayEndHour,
		PixelsPerMinute: DefaultPixelsPerHour / 60,
	}
}

// Validate checks the window bounds and scale.
func (g Geometry) Validate() error {
	if g.DayStartHour < 0 || g.DayStartHour > 23 {
		return fmt.Errorf("%w: day start hour %d", ErrInvalidGeometry, g.DayStartHour)
	}
	if g.DayEndHour <= g.DayStartHour || g.DayEndHour > 24 {
		return fmt.Errorf("%w: day end hour %d", ErrInvalidGeometry, g.DayEndHour)
	}
	if g.PixelsPerMinute <= 0 || math.IsNaN(g.PixelsPerMinute) || math.IsInf(g.PixelsPerMinute, 0) {
		return fmt.Errorf("%w: pixels per minute %v", ErrInvalidGeometry, g.PixelsPerMinute)
	}
	return nil
}

// Window returns the visible day window as a range.
func (g Geometry) Window() TimeRange {
	return TimeRange{
		Start: TimeOfDay{Hour: g.DayStartHour},
		End:   TimeOfDay{Hour: g.DayEndHour},
	}
}

// WindowMinutes returns the length of the visible window in minutes.
func (g Geometry) WindowMinutes() int {
	return (g.DayEndHour - g.DayStartHour) * 60
}

// Height returns the pixel height of a full day column.
func (g Geometry) Height() float64 {
	return float64(g.WindowMinutes()) * g.PixelsPerMinute
}

// Position computes the raw placement of [start, end). It never clamps:
// ranges outside the window produce negative offsets or overflow the column.
func (g Geometry) Position(start, end TimeOfDay) (Placement, error) {
	p, err := Position(start, end, g.DayStartHour, g.PixelsPerMinute)
	if err != nil {
		return Placement{}, err
	}
	if end.Minutes()-start.Minutes() > g.WindowMinutes() {
		return Placement{}, fmt.Errorf("%w: %s-%s", ErrRangeOutsideWindow, start, end)
	}
	return p, nil
}

// Position is the window-independent form of Geometry.Position.
func Position(start, end TimeOfDay, dayStartHour int, pixelsPerMinute float64) (Placement, error) {
	if end.Minutes() <= start.Minutes() {
		return Placement{}, fmt.Errorf("%w: %s-%s", ErrInvalidRange, start, end)
	}
	offset := float64((start.Hour-dayStartHour)*60+start.Minute) * pixelsPerMinute
	length := float64(end.Minutes()-start.Minutes()) * pixelsPerMinute
	return Placement{Offset: offset, Length: length}, nil
}

// Recover returns the range that produced p, rounded to the minute.
func (g Geometry) Recover(p Placement) TimeRange {
	startMin := g.DayStartHour*60 + int(math.Round(p.Offset/g.PixelsPerMinute))
	lengthMin := int(math.Round(p.Length / g.PixelsPerMinute))
	return TimeRange{
		Start: TimeOfDayFromMinutes(startMin),
		End:   TimeOfDayFromMinutes(startMin + lengthMin),
	}
}

// TimeAt returns the minute under a pointer offset. The second result is
// false when the offset falls outside the column.
func (g Geometry) TimeAt(offset float64) (TimeOfDay, bool) {
	if offset < 0 || offset >= g.Height() {
		return TimeOfDay{}, false
	}
	minutes := int(math.Floor(offset/g.PixelsPerMinute + 1e-9))
	return TimeOfDayFromMinutes(g.DayStartHour*60 + minutes), true
}

// Ruler returns one mark per displayed hour.
func (g Geometry) Ruler() []HourMark {
	marks := make([]HourMark, 0, g.DayEndHour-g.DayStartHour)
	for h := g.DayStartHour; h < g.DayEndHour; h++ {
		marks = append(marks, HourMark{
			Hour:   h,
			Label:  TimeOfDay{Hour: h}.String(),
			Offset: float64((h-g.DayStartHour)*60) * g.PixelsPerMinute,
		})
	}
	return marks
}

// Clip trims a placement to the column. The second result is false when
// nothing of the placement remains visible.
func (g Geometry) Clip(p Placement) (Placement, bool) {
	height := g.Height()
	if p.Offset < 0 {
		p.Length += p.Offset
		p.Offset = 0
		p.ClippedTop = true
	}
	if p.Bottom() > height {
		p.Length = height - p.Offset
		p.ClippedBottom = true
	}
	if p.Length <= 0 {
		return Placement{}, false
	}
	return p, true
}

// Contains reports whether the range lies entirely inside the window.
func (g Geometry) Contains(r TimeRange) bool {
	w := g.Window()
	return r.Start.Minutes() >= w.Start.Minutes() && r.End.Minutes() <= w.End.Minutes()
}
