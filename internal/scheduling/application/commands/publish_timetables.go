package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
)

// PublishTimetablesCommand publishes the lessons dated within [From, To].
// An empty ResourceIDs publishes every instructor.
type PublishTimetablesCommand struct {
	From        domain.Date
	To          domain.Date
	ResourceIDs []domain.ResourceID
}

func (PublishTimetablesCommand) CommandName() string { return "timetables.publish" }

// PublishTimetablesHandler pushes instructor timetables to an external
// calendar. One instructor failing does not stop the others.
type PublishTimetablesHandler struct {
	source    domain.LessonSource
	publisher domain.TimetablePublisher
	logger    *slog.Logger
}

// NewPublishTimetablesHandler creates a new PublishTimetablesHandler.
func NewPublishTimetablesHandler(source domain.LessonSource, publisher domain.TimetablePublisher, logger *slog.Logger) *PublishTimetablesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishTimetablesHandler{source: source, publisher: publisher, logger: logger}
}

// Handle executes the PublishTimetablesCommand.
func (h *PublishTimetablesHandler) Handle(ctx context.Context, cmd PublishTimetablesCommand) (domain.PublishResult, error) {
	start := time.Now()
	logger := observability.LogOperation(h.logger, "publish_timetables",
		"from", cmd.From.String(),
		"to", cmd.To.String(),
	)
	if cmd.To.Before(cmd.From) {
		return domain.PublishResult{}, fmt.Errorf("%w: %s before %s", domain.ErrInvalidRange, cmd.To, cmd.From)
	}

	resources, err := h.source.ListInstructors(ctx)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("failed to load instructors: %w", err)
	}
	lessons, err := h.source.ListLessons(ctx, cmd.From, cmd.To, cmd.ResourceIDs)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("failed to load lessons: %w", err)
	}
	set := domain.NewBookingSet(lessons...)

	var (
		total domain.PublishResult
		errs  []error
	)
	for _, r := range resources {
		if !selected(cmd.ResourceIDs, r.ID) {
			continue
		}
		var own []domain.Booking
		for _, d := range set.Dates() {
			own = append(own, set.For(d, r.ID)...)
		}
		result, err := h.publisher.Publish(ctx, r, own)
		if err != nil {
			logger.WarnContext(ctx, "timetable publication failed", "instructor_id", r.ID, "error", err)
			errs = append(errs, fmt.Errorf("instructor %d: %w", r.ID, err))
			continue
		}
		total.Add(result)
	}

	logger.InfoContext(ctx, "timetables published",
		"created", total.Created,
		"updated", total.Updated,
		"deleted", total.Deleted,
		"failed", total.Failed+len(errs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return total, errors.Join(errs...)
}

func selected(ids []domain.ResourceID, id domain.ResourceID) bool {
	if len(ids) == 0 {
		return true
	}
	for _, want := range ids {
		if want == id {
			return true
		}
	}
	return false
}
