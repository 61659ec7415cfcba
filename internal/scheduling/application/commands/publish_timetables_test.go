package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLessonSource struct {
	mock.Mock
}

func (m *mockLessonSource) ListInstructors(ctx context.Context) ([]domain.Resource, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Resource), args.Error(1)
}

func (m *mockLessonSource) ListLessons(ctx context.Context, from, to domain.Date, resources []domain.ResourceID) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to, resources)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type mockTimetablePublisher struct {
	mock.Mock
}

func (m *mockTimetablePublisher) Publish(ctx context.Context, resource domain.Resource, lessons []domain.Booking) (domain.PublishResult, error) {
	args := m.Called(ctx, resource, lessons)
	return args.Get(0).(domain.PublishResult), args.Error(1)
}

func TestPublishTimetablesHandler_Handle(t *testing.T) {
	ctx := context.Background()
	paul := domain.Resource{ID: 1, FirstName: "Paul"}
	ines := domain.Resource{ID: 2, FirstName: "Inès"}
	a := domain.NewBooking(1, 1, monday, tr("09:00", "10:00"))
	b := domain.NewBooking(2, 1, monday.AddDays(1), tr("09:00", "10:00"))
	c := domain.NewBooking(3, 2, monday, tr("09:00", "10:00"))

	t.Run("publishes each instructor with its own lessons", func(t *testing.T) {
		source := new(mockLessonSource)
		publisher := new(mockTimetablePublisher)
		handler := NewPublishTimetablesHandler(source, publisher, nil)

		source.On("ListInstructors", ctx).Return([]domain.Resource{paul, ines}, nil)
		source.On("ListLessons", ctx, monday, monday.AddDays(6), []domain.ResourceID(nil)).
			Return([]domain.Booking{c, b, a}, nil)
		publisher.On("Publish", ctx, paul, []domain.Booking{a, b}).Return(domain.PublishResult{Created: 2}, nil)
		publisher.On("Publish", ctx, ines, []domain.Booking{c}).Return(domain.PublishResult{Updated: 1}, nil)

		result, err := handler.Handle(ctx, PublishTimetablesCommand{From: monday, To: monday.AddDays(6)})

		require.NoError(t, err)
		assert.Equal(t, domain.PublishResult{Created: 2, Updated: 1}, result)
		publisher.AssertExpectations(t)
	})

	t.Run("keeps going after a failing instructor", func(t *testing.T) {
		source := new(mockLessonSource)
		publisher := new(mockTimetablePublisher)
		handler := NewPublishTimetablesHandler(source, publisher, nil)
		boom := errors.New("401 unauthorized")

		source.On("ListInstructors", ctx).Return([]domain.Resource{paul, ines}, nil)
		source.On("ListLessons", ctx, monday, monday, mock.Anything).Return([]domain.Booking{a, c}, nil)
		publisher.On("Publish", ctx, paul, mock.Anything).Return(domain.PublishResult{}, boom)
		publisher.On("Publish", ctx, ines, mock.Anything).Return(domain.PublishResult{Created: 1}, nil)

		result, err := handler.Handle(ctx, PublishTimetablesCommand{From: monday, To: monday})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, result.Created)
		publisher.AssertNumberOfCalls(t, "Publish", 2)
	})

	t.Run("publishes only selected instructors", func(t *testing.T) {
		source := new(mockLessonSource)
		publisher := new(mockTimetablePublisher)
		handler := NewPublishTimetablesHandler(source, publisher, nil)

		source.On("ListInstructors", ctx).Return([]domain.Resource{paul, ines}, nil)
		source.On("ListLessons", ctx, monday, monday, []domain.ResourceID{2}).Return([]domain.Booking{c}, nil)
		publisher.On("Publish", ctx, ines, []domain.Booking{c}).Return(domain.PublishResult{Created: 1}, nil)

		_, err := handler.Handle(ctx, PublishTimetablesCommand{From: monday, To: monday, ResourceIDs: []domain.ResourceID{2}})

		require.NoError(t, err)
		publisher.AssertNotCalled(t, "Publish", ctx, paul, mock.Anything)
	})

	t.Run("rejects an inverted window", func(t *testing.T) {
		handler := NewPublishTimetablesHandler(new(mockLessonSource), new(mockTimetablePublisher), nil)

		_, err := handler.Handle(ctx, PublishTimetablesCommand{From: monday, To: monday.AddDays(-1)})

		assert.ErrorIs(t, err, domain.ErrInvalidRange)
	})
}
