package domain

import (
	"context"
	"errors"
)

var (
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrStudentNotFound    = errors.New("student not found")
	// ErrBackOfficeUnavailable means the back office refused the call
	// without trying it, as an open circuit breaker does.
	ErrBackOfficeUnavailable = errors.New("back office unavailable")
)

// LessonSource supplies instructors and lessons for a visible window.
type LessonSource interface {
	ListInstructors(ctx context.Context) ([]Resource, error)
	ListLessons(ctx context.Context, from, to Date, resources []ResourceID) ([]Booking, error)
}

// LessonGateway is the back office entry point for lesson changes.
// Implementations return the lesson as persisted.
type LessonGateway interface {
	Update(ctx context.Context, b Booking, action LifecycleAction) (Booking, error)
	Create(ctx context.Context, draft LessonDraft) (Booking, error)
}

// LessonRepository is the local store behind the back office.
type LessonRepository interface {
	LessonSource
	FindLesson(ctx context.Context, id BookingID) (Booking, error)
	CreateLesson(ctx context.Context, draft LessonDraft) (Booking, error)
	SaveLesson(ctx context.Context, b Booking) (Booking, error)
	SaveInstructor(ctx context.Context, r Resource) (Resource, error)
	SaveStudent(ctx context.Context, s Student) (Student, error)
}

// TimetablePublisher pushes the lessons of one instructor to an external
// calendar.
type TimetablePublisher interface {
	Publish(ctx context.Context, resource Resource, lessons []Booking) (PublishResult, error)
}

// PublishResult counts the outcome of one publication.
type PublishResult struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}

// Add accumulates other into r.
func (r *PublishResult) Add(other PublishResult) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Deleted += other.Deleted
	r.Failed += other.Failed
}
