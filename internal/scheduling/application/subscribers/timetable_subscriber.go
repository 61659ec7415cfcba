package subscribers

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/eventbus"
)

// DefaultHorizonDays is how far ahead a changed timetable is republished.
const DefaultHorizonDays = 28

// TimetablePublishing publishes instructor timetables.
type TimetablePublishing interface {
	Handle(ctx context.Context, cmd commands.PublishTimetablesCommand) (domain.PublishResult, error)
}

// TimetableSubscriber republishes the timetable of the instructor whose
// lesson changed. Failures are logged and dropped; the periodic publication
// catches up.
type TimetableSubscriber struct {
	publish     TimetablePublishing
	horizonDays int
	now         func() time.Time
	logger      *slog.Logger
	enabled     bool
}

// NewTimetableSubscriber creates a new timetable subscriber.
func NewTimetableSubscriber(publish TimetablePublishing, horizonDays int, logger *slog.Logger) *TimetableSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}
	return &TimetableSubscriber{
		publish:     publish,
		horizonDays: horizonDays,
		now:         time.Now,
		logger:      logger,
		enabled:     true,
	}
}

// SetEnabled enables or disables the subscriber.
func (s *TimetableSubscriber) SetEnabled(enabled bool) {
	s.enabled = enabled
}

// SetClock replaces the clock used to compute the publication window.
func (s *TimetableSubscriber) SetClock(now func() time.Time) {
	s.now = now
}

// EventTypes returns the event types this subscriber handles.
func (s *TimetableSubscriber) EventTypes() []string {
	return []string{"lessons.lesson.*"}
}

// lessonChangedPayload is the part of domain.LessonChanged the subscriber reads.
type lessonChangedPayload struct {
	LessonID   domain.BookingID  `json:"lesson_id"`
	ResourceID domain.ResourceID `json:"instructor_id"`
	Date       domain.Date       `json:"date"`
}

// Handle processes an event.
func (s *TimetableSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if !s.enabled {
		s.logger.Debug("timetable subscriber disabled, skipping event",
			"routing_key", event.RoutingKey,
		)
		return nil
	}

	var payload lessonChangedPayload
	if err := event.Decode(&payload); err != nil {
		s.logger.Warn("malformed lesson event",
			"routing_key", event.RoutingKey,
			"aggregate_id", event.AggregateID,
			"error", err,
		)
		return nil
	}
	if payload.ResourceID == 0 {
		s.logger.Warn("lesson event without instructor", "lesson_id", payload.LessonID)
		return nil
	}

	from := domain.DateOf(s.now())
	to := from.AddDays(s.horizonDays)
	if payload.Date.Before(from) || to.Before(payload.Date) {
		s.logger.Debug("lesson outside publication window, skipping",
			"lesson_id", payload.LessonID,
			"date", payload.Date.String(),
		)
		return nil
	}

	result, err := s.publish.Handle(ctx, commands.PublishTimetablesCommand{
		From:        from,
		To:          to,
		ResourceIDs: []domain.ResourceID{payload.ResourceID},
	})
	if err != nil {
		s.logger.Error("failed to republish timetable",
			"instructor_id", payload.ResourceID,
			"lesson_id", payload.LessonID,
			"error", err,
		)
		return nil
	}

	s.logger.Info("republished timetable",
		"instructor_id", payload.ResourceID,
		"routing_key", event.RoutingKey,
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
	)
	return nil
}
