package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidGranularity = errors.New("granularity must be a whole number of minutes dividing an hour")

// DefaultGranularity is the quarter-hour cell used by the board.
const DefaultGranularity = 15 * time.Minute

// ValidateGranularity checks that g splits an hour into whole-minute cells.
func ValidateGranularity(g time.Duration) error {
	if g <= 0 || g%time.Minute != 0 || time.Hour%g != 0 {
		return fmt.Errorf("%w: %s", ErrInvalidGranularity, g)
	}
	return nil
}

// Cell is one grid position: an instructor column on a day at a time.
type Cell struct {
	ResourceID ResourceID
	Date       Date
	Time       TimeOfDay
}

// SameColumn reports whether both cells share instructor and day.
func (c Cell) SameColumn(other Cell) bool {
	return c.ResourceID == other.ResourceID && c.Date == other.Date
}

// CellState is a cell together with its occupancy.
type CellState struct {
	Cell
	Occupied bool
}

// OccupancyChecker answers occupancy questions for the selection machine.
type OccupancyChecker interface {
	IsOccupied(date Date, resource ResourceID, t TimeOfDay) bool
	Overlaps(date Date, resource ResourceID, r TimeRange) bool
}

// OccupancyIndex is a read-only predicate over a BookingSet. Lists per
// instructor and day are short, so every query is a linear scan.
type OccupancyIndex struct {
	set             BookingSet
	ignoreCancelled bool
}

// OccupancyOption configures an OccupancyIndex.
type OccupancyOption func(*OccupancyIndex)

// WithIgnoreCancelled makes cancelled lessons free their slot.
func WithIgnoreCancelled() OccupancyOption {
	return func(idx *OccupancyIndex) {
		idx.ignoreCancelled = true
	}
}

// NewOccupancyIndex creates an index over set.
func NewOccupancyIndex(set BookingSet, opts ...OccupancyOption) *OccupancyIndex {
	idx := &OccupancyIndex{set: set}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

func (idx *OccupancyIndex) counts(b Booking) bool {
	return !(idx.ignoreCancelled && b.Status() == StatusCancelled)
}

// IsOccupied reports whether minute t falls inside [start, end) of a lesson.
func (idx *OccupancyIndex) IsOccupied(date Date, resource ResourceID, t TimeOfDay) bool {
	m := t.Minutes()
	for _, b := range idx.set.days[date][resource] {
		if idx.counts(b) && m >= b.Start().Minutes() && m < b.End().Minutes() {
			return true
		}
	}
	return false
}

// Overlaps reports whether [r.Start, r.End) intersects an existing lesson.
// Touching ranges do not overlap.
func (idx *OccupancyIndex) Overlaps(date Date, resource ResourceID, r TimeRange) bool {
	return len(idx.conflicts(date, resource, r, 1)) > 0
}

// Conflicts returns the lessons overlapping r, ordered by start.
func (idx *OccupancyIndex) Conflicts(date Date, resource ResourceID, r TimeRange) []Booking {
	return idx.conflicts(date, resource, r, -1)
}

func (idx *OccupancyIndex) conflicts(date Date, resource ResourceID, r TimeRange, limit int) []Booking {
	var out []Booking
	a, b := r.Start.Minutes(), r.End.Minutes()
	for _, existing := range idx.set.days[date][resource] {
		if !idx.counts(existing) {
			continue
		}
		if a < existing.End().Minutes() && b > existing.Start().Minutes() {
			out = append(out, existing)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out
}

// Cells samples [from, to) every granularity and reports which cells
// overlap a lesson.
func (idx *OccupancyIndex) Cells(date Date, resource ResourceID, from, to TimeOfDay, granularity time.Duration) ([]CellState, error) {
	if err := ValidateGranularity(granularity); err != nil {
		return nil, err
	}
	step := int(granularity / time.Minute)
	cells := make([]CellState, 0, (to.Minutes()-from.Minutes())/step+1)
	for m := from.Minutes(); m+step <= to.Minutes(); m += step {
		start := TimeOfDayFromMinutes(m)
		cells = append(cells, CellState{
			Cell:     Cell{ResourceID: resource, Date: date, Time: start},
			Occupied: idx.Overlaps(date, resource, TimeRange{Start: start, End: TimeOfDayFromMinutes(m + step)}),
		})
	}
	return cells, nil
}

// IsOccupied is the set-level form of OccupancyIndex.IsOccupied.
func IsOccupied(set BookingSet, date Date, resource ResourceID, t TimeOfDay) bool {
	return NewOccupancyIndex(set).IsOccupied(date, resource, t)
}

// Overlaps is the set-level form of OccupancyIndex.Overlaps.
func Overlaps(set BookingSet, date Date, resource ResourceID, r TimeRange) bool {
	return NewOccupancyIndex(set).Overlaps(date, resource, r)
}
