package domain

import (
	"fmt"
	"time"
)

// SelectionState is a state of the drag-to-create gesture.
type SelectionState string

const (
	SelectionIdle      SelectionState = "idle"
	SelectionDragging  SelectionState = "dragging"
	SelectionCompleted SelectionState = "completed"
	SelectionCancelled SelectionState = "cancelled"
)

// Selection is a dragged range on one instructor column.
type Selection struct {
	ResourceID ResourceID `json:"resource_id"`
	Date       Date       `json:"date"`
	Start      TimeOfDay  `json:"start"`
	End        TimeOfDay  `json:"end"`
}

// Range returns [Start, End).
func (s Selection) Range() TimeRange {
	return TimeRange{Start: s.Start, End: s.End}
}

// SelectionMachine tracks a single drag gesture: Idle -> Dragging -> Idle,
// ending either Completed or Cancelled. It only reads occupancy and never
// modifies lessons. It is not safe for concurrent use.
type SelectionMachine struct {
	occupancy    OccupancyChecker
	geometry     Geometry
	step         int
	creationMode bool

	state     SelectionState
	outcome   SelectionState
	anchor    Cell
	end       int
	listeners []func(Selection)
}

// NewSelectionMachine creates an idle machine with creation mode off.
func NewSelectionMachine(occupancy OccupancyChecker, geometry Geometry, granularity time.Duration) (*SelectionMachine, error) {
	if occupancy == nil {
		return nil, fmt.Errorf("selection machine: occupancy checker is required")
	}
	if err := geometry.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateGranularity(granularity); err != nil {
		return nil, err
	}
	return &SelectionMachine{
		occupancy: occupancy,
		geometry:  geometry,
		step:      int(granularity / time.Minute),
		state:     SelectionIdle,
		outcome:   SelectionIdle,
	}, nil
}

// OnComplete registers a listener fired once per completed gesture.
func (m *SelectionMachine) OnComplete(fn func(Selection)) {
	if fn != nil {
		m.listeners = append(m.listeners, fn)
	}
}

// SetCreationMode toggles whether presses start a gesture. Turning it off
// cancels a gesture in progress.
func (m *SelectionMachine) SetCreationMode(on bool) {
	m.creationMode = on
	if !on {
		m.Cancel()
	}
}

func (m *SelectionMachine) CreationMode() bool { return m.creationMode }

// State returns Idle or Dragging.
func (m *SelectionMachine) State() SelectionState { return m.state }

// LastOutcome returns how the previous gesture ended (Completed or
// Cancelled), or Idle if none has ended yet.
func (m *SelectionMachine) LastOutcome() SelectionState { return m.outcome }

// Granularity returns the cell size.
func (m *SelectionMachine) Granularity() time.Duration {
	return time.Duration(m.step) * time.Minute
}

// Press starts a gesture on a free cell. It returns false, leaving the
// machine untouched, when creation mode is off, a gesture is already active,
// the cell lies outside the day window or the cell is occupied.
func (m *SelectionMachine) Press(cell Cell) bool {
	if !m.creationMode || m.state == SelectionDragging {
		return false
	}
	t := m.snap(cell.Time)
	if !m.inWindow(t) {
		return false
	}
	if m.occupancy.Overlaps(cell.Date, cell.ResourceID, m.span(t, t)) {
		return false
	}
	m.anchor = Cell{ResourceID: cell.ResourceID, Date: cell.Date, Time: TimeOfDayFromMinutes(t)}
	m.end = t
	m.state = SelectionDragging
	return true
}

// Move extends the gesture towards cell. Cells on another instructor or day
// are ignored. The end walks cell by cell from the anchor and stops before
// the first cell whose inclusion would overlap a lesson. It returns true when
// the selected range changed.
func (m *SelectionMachine) Move(cell Cell) bool {
	if m.state != SelectionDragging || !m.anchor.SameColumn(cell) {
		return false
	}
	target := m.clamp(m.snap(cell.Time))
	anchor := m.anchor.Time.Minutes()

	best := anchor
	if target != anchor {
		dir := m.step
		if target < anchor {
			dir = -m.step
		}
		for k := anchor + dir; ; k += dir {
			if m.occupancy.Overlaps(m.anchor.Date, m.anchor.ResourceID, m.span(anchor, k)) {
				break
			}
			best = k
			if k == target {
				break
			}
		}
	}

	changed := best != m.end
	m.end = best
	return changed
}

// Release ends the gesture. With ok false, or a cell above or below the day
// window, the pointer left the grid and the gesture is cancelled. Otherwise
// the selection is extended to cell when it shares the anchor's column, then
// emitted to the listeners.
func (m *SelectionMachine) Release(cell Cell, ok bool) (Selection, bool) {
	if m.state != SelectionDragging {
		return Selection{}, false
	}
	if !ok || !cell.Time.Valid() || !m.inWindow(m.snap(cell.Time)) {
		m.Cancel()
		return Selection{}, false
	}
	m.Move(cell)
	sel, _ := m.Current()
	m.state = SelectionIdle
	m.outcome = SelectionCompleted
	for _, fn := range m.listeners {
		fn(sel)
	}
	return sel, true
}

// Cancel discards an active gesture without emitting anything.
func (m *SelectionMachine) Cancel() {
	if m.state != SelectionDragging {
		return
	}
	m.state = SelectionIdle
	m.outcome = SelectionCancelled
}

// Current returns the in-progress selection while dragging.
func (m *SelectionMachine) Current() (Selection, bool) {
	if m.state != SelectionDragging {
		return Selection{}, false
	}
	r := m.span(m.anchor.Time.Minutes(), m.end)
	return Selection{
		ResourceID: m.anchor.ResourceID,
		Date:       m.anchor.Date,
		Start:      r.Start,
		End:        r.End,
	}, true
}

func (m *SelectionMachine) snap(t TimeOfDay) int {
	minutes := t.Minutes()
	return minutes - minutes%m.step
}

func (m *SelectionMachine) inWindow(minutes int) bool {
	return minutes >= m.geometry.DayStartHour*60 && minutes+m.step <= m.geometry.DayEndHour*60
}

func (m *SelectionMachine) clamp(minutes int) int {
	first := m.geometry.DayStartHour * 60
	last := m.geometry.DayEndHour*60 - m.step
	switch {
	case minutes < first:
		return first
	case minutes > last:
		return last
	default:
		return minutes
	}
}

// span covers the whole cells from a to b in either order.
func (m *SelectionMachine) span(a, b int) TimeRange {
	if b < a {
		a, b = b, a
	}
	return TimeRange{Start: TimeOfDayFromMinutes(a), End: TimeOfDayFromMinutes(b + m.step)}
}
