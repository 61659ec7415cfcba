package domain

import (
	"strconv"

	sharedDomain "github.com/felixgeelhaar/lessonboard/internal/shared/domain"
)

const (
	AggregateType = "Lesson"

	RoutingKeyLessonCreated   = "lessons.lesson.created"
	RoutingKeyLessonCancelled = "lessons.lesson.cancelled"
	RoutingKeyLessonCompleted = "lessons.lesson.completed"
	RoutingKeyLessonEdited    = "lessons.lesson.edited"
)

// RoutingKeyForAction returns the event routing key of a lifecycle action.
func RoutingKeyForAction(a LifecycleAction) string {
	switch a {
	case ActionCancel:
		return RoutingKeyLessonCancelled
	case ActionComplete:
		return RoutingKeyLessonCompleted
	default:
		return RoutingKeyLessonEdited
	}
}

// LessonChanged is emitted after the back office confirmed a lesson change.
type LessonChanged struct {
	sharedDomain.BaseEvent
	LessonID   BookingID  `json:"lesson_id"`
	ResourceID ResourceID `json:"instructor_id"`
	Date       Date       `json:"date"`
	Start      TimeOfDay  `json:"start"`
	End        TimeOfDay  `json:"end"`
	Type       LessonType `json:"type"`
	Status     Status     `json:"status"`
}

// NewLessonChanged creates the event for b under routingKey.
func NewLessonChanged(routingKey string, b Booking) *LessonChanged {
	return &LessonChanged{
		BaseEvent:  sharedDomain.NewBaseEvent(strconv.FormatInt(int64(b.ID()), 10), AggregateType, routingKey),
		LessonID:   b.ID(),
		ResourceID: b.ResourceID(),
		Date:       b.Date(),
		Start:      b.Start(),
		End:        b.End(),
		Type:       b.Type(),
		Status:     b.Status(),
	}
}
