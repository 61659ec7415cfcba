package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/lessonboard/internal/shared/application"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
)

// LessonEdit lists the fields an edit changes. Nil fields are kept.
type LessonEdit struct {
	ResourceID *domain.ResourceID
	Date       *domain.Date
	Range      *domain.TimeRange
	Type       *domain.LessonType
	Comment    *string
	// StudentID set to zero detaches the student.
	StudentID *int64
}

// IsZero reports whether the edit changes nothing.
func (e LessonEdit) IsZero() bool {
	return e == LessonEdit{}
}

// Apply returns b with the edited fields replaced.
func (e LessonEdit) Apply(b domain.Booking) domain.Booking {
	if e.ResourceID != nil {
		b = b.WithResource(*e.ResourceID)
	}
	if e.Date != nil {
		b = b.WithDate(*e.Date)
	}
	if e.Range != nil {
		b = b.WithRange(*e.Range)
	}
	if e.Type != nil {
		b = b.WithType(*e.Type)
	}
	if e.Comment != nil {
		b = b.WithComment(*e.Comment)
	}
	if e.StudentID != nil {
		if *e.StudentID == 0 {
			b = b.WithoutStudent()
		} else {
			b = b.WithStudent(domain.Student{ID: *e.StudentID})
		}
	}
	return b
}

// UpdateLessonCommand asks the back office to cancel, complete or edit a
// displayed lesson.
type UpdateLessonCommand struct {
	Lesson domain.Booking
	Action domain.LifecycleAction
	Edit   LessonEdit
}

func (UpdateLessonCommand) CommandName() string { return "lessons.update" }

// UpdateLessonHandler is the lifecycle facade. It makes exactly one gateway
// call per command, applies nothing locally before the gateway confirms, and
// returns the lesson as the back office persisted it.
type UpdateLessonHandler struct {
	gateway   domain.LessonGateway
	publisher eventbus.Publisher
	geometry  domain.Geometry
	logger    *slog.Logger
}

var _ sharedApplication.CommandHandler[UpdateLessonCommand, domain.Booking] = (*UpdateLessonHandler)(nil)

// NewUpdateLessonHandler creates a new UpdateLessonHandler.
func NewUpdateLessonHandler(gateway domain.LessonGateway, publisher eventbus.Publisher, geometry domain.Geometry, logger *slog.Logger) *UpdateLessonHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	return &UpdateLessonHandler{
		gateway:   gateway,
		publisher: publisher,
		geometry:  geometry,
		logger:    logger,
	}
}

// Handle executes the UpdateLessonCommand.
func (h *UpdateLessonHandler) Handle(ctx context.Context, cmd UpdateLessonCommand) (domain.Booking, error) {
	start := time.Now()
	logger := observability.LogOperation(h.logger, "update_lesson",
		"lesson_id", cmd.Lesson.ID(),
		"action", cmd.Action,
	)

	target, err := h.prepare(cmd)
	if err != nil {
		logger.WarnContext(ctx, "lesson update rejected", "error", err, "error_kind", ErrorKind(err))
		return domain.Booking{}, err
	}

	confirmed, err := h.gateway.Update(ctx, target, cmd.Action)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLifecycleFailed, err)
		logger.ErrorContext(ctx, "lesson update failed",
			"error", err,
			"error_kind", ErrorKind(err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return domain.Booking{}, err
	}

	publish(ctx, h.publisher, logger, domain.RoutingKeyForAction(cmd.Action), confirmed)
	logger.InfoContext(ctx, "lesson updated",
		"status", confirmed.Status(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return confirmed, nil
}

func (h *UpdateLessonHandler) prepare(cmd UpdateLessonCommand) (domain.Booking, error) {
	action, err := domain.ParseAction(string(cmd.Action))
	if err != nil {
		return domain.Booking{}, err
	}
	if action != domain.ActionEdit && !cmd.Edit.IsZero() {
		return domain.Booking{}, ErrUnexpectedEdit
	}
	target, err := action.Apply(cmd.Lesson)
	if err != nil {
		return domain.Booking{}, err
	}
	if action == domain.ActionEdit {
		target = cmd.Edit.Apply(target)
		if err := target.Validate(h.geometry); err != nil {
			return domain.Booking{}, err
		}
	}
	return target, nil
}

// publish announces a confirmed change. The change is already persisted,
// so a broker failure is logged and not returned.
func publish(ctx context.Context, publisher eventbus.Publisher, logger *slog.Logger, routingKey string, b domain.Booking) {
	event := domain.NewLessonChanged(routingKey, b)
	sharedApplication.ApplyEventMetadata(sharedApplication.EventMetadataFromContext(ctx), event)
	if err := eventbus.PublishEvent(ctx, publisher, event); err != nil {
		logger.WarnContext(ctx, "failed to publish lesson event",
			"routing_key", routingKey,
			"error", err,
		)
	}
}
