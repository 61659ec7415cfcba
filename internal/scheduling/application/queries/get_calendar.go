package queries

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
	sharedApplication "github.com/felixgeelhaar/lessonboard/internal/shared/application"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
)

// GetCalendarQuery contains the parameters for rendering a calendar.
type GetCalendarQuery struct {
	Window projection.Window
	Layout projection.Layout
}

func (GetCalendarQuery) QueryName() string { return "calendar.get" }

// Calendar is what a window loads: the instructors, the lessons grouped into
// a booking set, and the rendered projection.
type Calendar struct {
	Resources []domain.Resource
	Bookings  domain.BookingSet
	View      projection.View
}

// GetCalendarHandler handles the GetCalendarQuery.
type GetCalendarHandler struct {
	source domain.LessonSource
	logger *slog.Logger
}

var _ sharedApplication.QueryHandler[GetCalendarQuery, *Calendar] = (*GetCalendarHandler)(nil)

// NewGetCalendarHandler creates a new GetCalendarHandler.
func NewGetCalendarHandler(source domain.LessonSource, logger *slog.Logger) *GetCalendarHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetCalendarHandler{source: source, logger: logger}
}

// Load fetches the instructors and the lessons dated inside window.
func (h *GetCalendarHandler) Load(ctx context.Context, window projection.Window) ([]domain.Resource, domain.BookingSet, error) {
	if err := window.Validate(); err != nil {
		return nil, domain.BookingSet{}, err
	}
	resources, err := h.source.ListInstructors(ctx)
	if err != nil {
		return nil, domain.BookingSet{}, fmt.Errorf("failed to load instructors: %w", err)
	}
	lessons, err := h.source.ListLessons(ctx, window.Start, window.End, window.VisibleResourceIDs)
	if err != nil {
		return nil, domain.BookingSet{}, fmt.Errorf("failed to load lessons: %w", err)
	}
	return resources, domain.NewBookingSet(lessons...), nil
}

// Handle executes the GetCalendarQuery.
func (h *GetCalendarHandler) Handle(ctx context.Context, query GetCalendarQuery) (*Calendar, error) {
	start := time.Now()
	logger := observability.LogOperation(h.logger, "get_calendar",
		"granularity", query.Window.Granularity,
		"start", query.Window.Start.String(),
		"end", query.Window.End.String(),
	)

	resources, set, err := h.Load(ctx, query.Window)
	if err != nil {
		logger.WarnContext(ctx, "calendar load failed", "error", err)
		return nil, err
	}
	view, err := projection.Build(set, resources, query.Window, query.Layout)
	if err != nil {
		logger.WarnContext(ctx, "calendar render failed", "error", err)
		return nil, err
	}
	for _, r := range view.Rejected() {
		logger.WarnContext(ctx, "lesson not drawn", "lesson_id", r.Booking.ID(), "error", r.Err)
	}
	logger.DebugContext(ctx, "calendar rendered",
		"lessons", set.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Calendar{Resources: resources, Bookings: set, View: view}, nil
}
