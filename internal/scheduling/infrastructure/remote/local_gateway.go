// Package remote holds the back-office gateways: LocalGateway applies lesson
// changes to the local store, HTTPGateway forwards them to a back-office API.
package remote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	sharedApplication "github.com/felixgeelhaar/lessonboard/internal/shared/application"
)

// LocalGateway is the back office of a standalone install. It re-checks the
// stored lesson and refuses overlapping lessons, saving inside one unit of
// work.
type LocalGateway struct {
	repo   domain.LessonRepository
	uow    sharedApplication.UnitOfWork
	logger *slog.Logger
}

var _ domain.LessonGateway = (*LocalGateway)(nil)

// NewLocalGateway creates a gateway over repo.
func NewLocalGateway(repo domain.LessonRepository, uow sharedApplication.UnitOfWork, logger *slog.Logger) *LocalGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalGateway{repo: repo, uow: uow, logger: logger}
}

// Update applies action to the stored lesson b.ID(). For edits the fields of
// b replace the stored ones.
func (g *LocalGateway) Update(ctx context.Context, b domain.Booking, action domain.LifecycleAction) (domain.Booking, error) {
	var saved domain.Booking
	err := sharedApplication.WithUnitOfWork(ctx, g.uow, func(ctx context.Context) error {
		current, err := g.repo.FindLesson(ctx, b.ID())
		if err != nil {
			return err
		}

		target := b
		switch action {
		case domain.ActionCancel, domain.ActionComplete:
			target, err = action.Apply(current)
			if err != nil {
				return err
			}
		case domain.ActionEdit:
			if err := g.checkFree(ctx, target); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
		}

		saved, err = g.repo.SaveLesson(ctx, target)
		return err
	})
	if err != nil {
		return domain.Booking{}, err
	}
	g.logger.DebugContext(ctx, "lesson stored", "lesson_id", saved.ID(), "action", action)
	return saved, nil
}

// Create stores a new scheduled lesson.
func (g *LocalGateway) Create(ctx context.Context, draft domain.LessonDraft) (domain.Booking, error) {
	var created domain.Booking
	err := sharedApplication.WithUnitOfWork(ctx, g.uow, func(ctx context.Context) error {
		if err := g.checkFree(ctx, draft.Booking()); err != nil {
			return err
		}
		var err error
		created, err = g.repo.CreateLesson(ctx, draft)
		return err
	})
	if err != nil {
		return domain.Booking{}, err
	}
	g.logger.DebugContext(ctx, "lesson stored", "lesson_id", created.ID(), "action", "create")
	return created, nil
}

// checkFree rejects b when another lesson of the same instructor overlaps it.
// Cancelled lessons free their slot.
func (g *LocalGateway) checkFree(ctx context.Context, b domain.Booking) error {
	if !b.IsScheduled() {
		return nil
	}
	lessons, err := g.repo.ListLessons(ctx, b.Date(), b.Date(), []domain.ResourceID{b.ResourceID()})
	if err != nil {
		return err
	}
	others := lessons[:0]
	for _, l := range lessons {
		if l.ID() != b.ID() {
			others = append(others, l)
		}
	}
	index := domain.NewOccupancyIndex(domain.NewBookingSet(others...), domain.WithIgnoreCancelled())
	if conflicts := index.Conflicts(b.Date(), b.ResourceID(), b.Range()); len(conflicts) > 0 {
		return fmt.Errorf("%w: lesson %d on %s %s", domain.ErrLessonConflict, conflicts[0].ID(), b.Date(), conflicts[0].Range())
	}
	return nil
}
