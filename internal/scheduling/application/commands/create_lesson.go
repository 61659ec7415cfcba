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

// CreateLessonCommand turns a completed drag selection and the creation
// form into a new lesson.
type CreateLessonCommand struct {
	Selection domain.Selection
	Type      domain.LessonType
	StudentID *int64
	Comment   string
}

func (CreateLessonCommand) CommandName() string { return "lessons.create" }

// Draft returns the lesson draft described by the command.
func (c CreateLessonCommand) Draft() domain.LessonDraft {
	return domain.LessonDraft{
		ResourceID: c.Selection.ResourceID,
		Date:       c.Selection.Date,
		Range:      c.Selection.Range(),
		Type:       c.Type,
		StudentID:  c.StudentID,
		Comment:    c.Comment,
	}
}

// CreateLessonHandler handles the CreateLessonCommand.
type CreateLessonHandler struct {
	gateway   domain.LessonGateway
	publisher eventbus.Publisher
	geometry  domain.Geometry
	logger    *slog.Logger
}

var _ sharedApplication.CommandHandler[CreateLessonCommand, domain.Booking] = (*CreateLessonHandler)(nil)

// NewCreateLessonHandler creates a new CreateLessonHandler.
func NewCreateLessonHandler(gateway domain.LessonGateway, publisher eventbus.Publisher, geometry domain.Geometry, logger *slog.Logger) *CreateLessonHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	return &CreateLessonHandler{
		gateway:   gateway,
		publisher: publisher,
		geometry:  geometry,
		logger:    logger,
	}
}

// Handle executes the CreateLessonCommand.
func (h *CreateLessonHandler) Handle(ctx context.Context, cmd CreateLessonCommand) (domain.Booking, error) {
	start := time.Now()
	draft := cmd.Draft()
	logger := observability.LogOperation(h.logger, "create_lesson",
		"instructor_id", draft.ResourceID,
		"date", draft.Date.String(),
		"range", draft.Range.String(),
	)

	if err := draft.Validate(h.geometry); err != nil {
		logger.WarnContext(ctx, "lesson draft rejected", "error", err, "error_kind", ErrorKind(err))
		return domain.Booking{}, err
	}

	created, err := h.gateway.Create(ctx, draft)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrLifecycleFailed, err)
		logger.ErrorContext(ctx, "lesson creation failed",
			"error", err,
			"error_kind", ErrorKind(err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return domain.Booking{}, err
	}

	publish(ctx, h.publisher, logger, domain.RoutingKeyLessonCreated, created)
	logger.InfoContext(ctx, "lesson created",
		"lesson_id", created.ID(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return created, nil
}
