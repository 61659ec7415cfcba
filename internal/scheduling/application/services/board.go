package services

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
)

var (
	ErrBookingNotFound = errors.New("lesson is not on the board")
	ErrBadgeNotFound   = errors.New("no lessons for this instructor on this day")
)

// BoardConfig contains the initial state of a board.
type BoardConfig struct {
	Window          projection.Window
	Layout          projection.Layout
	CreationMode    bool
	IgnoreCancelled bool
}

// Board is the interactive instructor board. It owns the selection gesture
// and renders the caller-supplied booking set, which it only ever reads.
// Methods are safe for concurrent use; listeners run after the board lock is
// released so they may call back into the board.
type Board struct {
	mu              sync.Mutex
	resources       []domain.Resource
	set             domain.BookingSet
	index           *domain.OccupancyIndex
	window          projection.Window
	layout          projection.Layout
	ignoreCancelled bool
	machine         *domain.SelectionMachine

	onSelection []func(domain.Selection)
	onActivated []func(domain.Booking)
	logger      *slog.Logger
}

// boardOccupancy reads the board's current index. Callers hold Board.mu.
type boardOccupancy struct {
	b *Board
}

func (o boardOccupancy) IsOccupied(date domain.Date, resource domain.ResourceID, t domain.TimeOfDay) bool {
	return o.b.index.IsOccupied(date, resource, t)
}

func (o boardOccupancy) Overlaps(date domain.Date, resource domain.ResourceID, r domain.TimeRange) bool {
	return o.b.index.Overlaps(date, resource, r)
}

// NewBoard creates a board over the given instructors and lessons.
func NewBoard(resources []domain.Resource, set domain.BookingSet, cfg BoardConfig, logger *slog.Logger) (*Board, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Window.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Layout.Validate(); err != nil {
		return nil, err
	}
	b := &Board{
		resources:       copyResources(resources),
		window:          cfg.Window,
		layout:          cfg.Layout,
		ignoreCancelled: cfg.IgnoreCancelled,
		logger:          logger,
	}
	b.setBookings(set)

	machine, err := domain.NewSelectionMachine(boardOccupancy{b: b}, cfg.Layout.Geometry, cfg.Layout.SlotGranularity)
	if err != nil {
		return nil, fmt.Errorf("failed to create selection machine: %w", err)
	}
	machine.SetCreationMode(cfg.CreationMode)
	b.machine = machine
	return b, nil
}

func (b *Board) setBookings(set domain.BookingSet) {
	b.set = set
	var opts []domain.OccupancyOption
	if b.ignoreCancelled {
		opts = append(opts, domain.WithIgnoreCancelled())
	}
	b.index = domain.NewOccupancyIndex(set, opts...)
}

func copyResources(resources []domain.Resource) []domain.Resource {
	out := make([]domain.Resource, len(resources))
	copy(out, resources)
	return out
}

// OnSelectionComplete registers a listener fired once per completed drag.
func (b *Board) OnSelectionComplete(fn func(domain.Selection)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fn != nil {
		b.onSelection = append(b.onSelection, fn)
	}
}

// OnBookingActivated registers a listener fired when a lesson or badge is clicked.
func (b *Board) OnBookingActivated(fn func(domain.Booking)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if fn != nil {
		b.onActivated = append(b.onActivated, fn)
	}
}

// Replace swaps in a refreshed booking set and cancels any gesture.
func (b *Board) Replace(set domain.BookingSet) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.machine.Cancel()
	b.setBookings(set)
}

// SetResources replaces the instructor list and cancels any gesture.
func (b *Board) SetResources(resources []domain.Resource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.machine.Cancel()
	b.resources = copyResources(resources)
}

// SetWindow changes the visible window and cancels any gesture.
func (b *Board) SetWindow(window projection.Window) error {
	if err := window.Validate(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.machine.Cancel()
	b.window = window
	return nil
}

// Window returns the visible window.
func (b *Board) Window() projection.Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.window
}

// Bookings returns the current booking set.
func (b *Board) Bookings() domain.BookingSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.set
}

// SetCreationMode toggles drag-to-create. Turning it off cancels a drag.
func (b *Board) SetCreationMode(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.machine.SetCreationMode(on)
}

// CreationMode reports whether presses start a gesture.
func (b *Board) CreationMode() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.machine.CreationMode()
}

// State returns the gesture state.
func (b *Board) State() domain.SelectionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.machine.State()
}

// LastOutcome returns how the previous gesture ended.
func (b *Board) LastOutcome() domain.SelectionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.machine.LastOutcome()
}

// Current returns the in-progress selection.
func (b *Board) Current() (domain.Selection, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.machine.Current()
}

// interactive reports whether the cell is a displayed day of a visible
// instructor. Padding days of the month grid and hidden Sundays are not.
func (b *Board) interactive(cell domain.Cell) bool {
	if !b.window.Contains(cell.Date) || !b.window.ShowsResource(cell.ResourceID) {
		return false
	}
	for _, r := range b.resources {
		if r.ID == cell.ResourceID {
			return true
		}
	}
	return false
}

// Press starts a gesture on a free, displayed cell.
func (b *Board) Press(cell domain.Cell) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.interactive(cell) {
		return false
	}
	return b.machine.Press(cell)
}

// Move extends the gesture.
func (b *Board) Move(cell domain.Cell) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.machine.Move(cell)
}

// Release ends the gesture. Releasing outside the grid (ok false) or on a
// cell that is not displayed cancels it; otherwise the selection is emitted.
func (b *Board) Release(cell domain.Cell, ok bool) (domain.Selection, bool) {
	b.mu.Lock()
	if ok && !b.interactive(cell) {
		ok = false
	}
	sel, completed := b.machine.Release(cell, ok)
	listeners := append([]func(domain.Selection){}, b.onSelection...)
	b.mu.Unlock()

	if !completed {
		b.logger.Debug("selection cancelled")
		return domain.Selection{}, false
	}
	b.logger.Debug("selection completed",
		"instructor_id", sel.ResourceID,
		"date", sel.Date.String(),
		"start", sel.Start.String(),
		"end", sel.End.String(),
	)
	for _, fn := range listeners {
		fn(sel)
	}
	return sel, true
}

// Cancel discards the gesture in progress.
func (b *Board) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.machine.Cancel()
}

// Render returns the projection of the current window.
func (b *Board) Render() (projection.View, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return projection.Build(b.set, b.resources, b.window, b.layout)
}

// ActivateBooking fires OnBookingActivated for a displayed lesson.
func (b *Board) ActivateBooking(id domain.BookingID) (domain.Booking, error) {
	b.mu.Lock()
	booking, ok := b.set.Find(id)
	if ok && !b.interactive(domain.Cell{ResourceID: booking.ResourceID(), Date: booking.Date()}) {
		ok = false
	}
	listeners := append([]func(domain.Booking){}, b.onActivated...)
	b.mu.Unlock()

	if !ok {
		return domain.Booking{}, fmt.Errorf("%w: %d", ErrBookingNotFound, id)
	}
	for _, fn := range listeners {
		fn(booking)
	}
	return booking, nil
}

// ActivateBadge opens the first lesson of an instructor's day, as a click
// on a month badge does.
func (b *Board) ActivateBadge(date domain.Date, resource domain.ResourceID) (domain.Booking, error) {
	b.mu.Lock()
	var (
		representative domain.Booking
		found          bool
	)
	if b.interactive(domain.Cell{ResourceID: resource, Date: date}) {
		for _, booking := range b.set.For(date, resource) {
			if booking.Validate(b.layout.Geometry) == nil {
				representative, found = booking, true
				break
			}
		}
	}
	listeners := append([]func(domain.Booking){}, b.onActivated...)
	b.mu.Unlock()

	if !found {
		return domain.Booking{}, fmt.Errorf("%w: instructor %d on %s", ErrBadgeNotFound, resource, date)
	}
	for _, fn := range listeners {
		fn(representative)
	}
	return representative, nil
}
