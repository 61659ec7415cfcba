package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAction     = errors.New("unknown lifecycle action")
	ErrInvalidTransition = errors.New("lesson is not scheduled")
	ErrLessonConflict    = errors.New("lesson overlaps an existing lesson")
	ErrMissingInstructor = errors.New("instructor is required")
)

// LifecycleAction is an update requested from a lesson's detail view.
type LifecycleAction string

const (
	ActionCancel   LifecycleAction = "cancel"
	ActionComplete LifecycleAction = "complete"
	ActionEdit     LifecycleAction = "edit"
)

// ParseAction validates an action name.
func ParseAction(s string) (LifecycleAction, error) {
	a := LifecycleAction(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionCancel, ActionComplete, ActionEdit:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// TargetStatus returns the status a lesson ends up in after the action.
// Edits keep the current status.
func (a LifecycleAction) TargetStatus(current Status) Status {
	switch a {
	case ActionCancel:
		return StatusCancelled
	case ActionComplete:
		return StatusCompleted
	default:
		return current
	}
}

// Apply checks the transition and returns the updated copy of b.
// Cancel and complete are only allowed on scheduled lessons.
func (a LifecycleAction) Apply(b Booking) (Booking, error) {
	switch a {
	case ActionCancel, ActionComplete:
		if !b.IsScheduled() {
			return Booking{}, fmt.Errorf("%w: lesson %d is %s", ErrInvalidTransition, b.ID(), b.Status())
		}
		return b.WithStatus(a.TargetStatus(b.Status())), nil
	case ActionEdit:
		return b, nil
	}
	return Booking{}, fmt.Errorf("%w: %q", ErrUnknownAction, a)
}

// LessonDraft is a lesson to be created by the back office.
type LessonDraft struct {
	ResourceID ResourceID
	Date       Date
	Range      TimeRange
	Type       LessonType
	StudentID  *int64
	Comment    string
}

// Validate checks the draft against the grid geometry.
func (d LessonDraft) Validate(g Geometry) error {
	if d.ResourceID == 0 {
		return fmt.Errorf("lesson draft: %w", ErrMissingInstructor)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("lesson draft: %w", ErrInvalidDate)
	}
	return NewBooking(0, d.ResourceID, d.Date, d.Range).Validate(g)
}

// Booking returns the draft as an unsaved scheduled lesson.
func (d LessonDraft) Booking() Booking {
	b := NewBooking(0, d.ResourceID, d.Date, d.Range).WithComment(d.Comment)
	if d.Type != "" {
		b = b.WithType(d.Type)
	}
	if d.StudentID != nil {
		b = b.WithStudent(Student{ID: *d.StudentID})
	}
	return b
}
