package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/lessonboard/internal/shared/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type txKey struct{}

func TestWithUnitOfWork(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txKey{}, "tx")

	t.Run("commits on success", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)

		err := WithUnitOfWork(ctx, uow, func(got context.Context) error {
			assert.Equal(t, txCtx, got)
			return nil
		})

		require.NoError(t, err)
		uow.AssertExpectations(t)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		boom := errors.New("conflict")

		err := WithUnitOfWork(ctx, uow, func(context.Context) error { return boom })

		assert.Equal(t, boom, err)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("reports rollback failures alongside the cause", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(txCtx, nil)
		rbErr := errors.New("rollback failed")
		uow.On("Rollback", txCtx).Return(rbErr)
		boom := errors.New("conflict")

		err := WithUnitOfWork(ctx, uow, func(context.Context) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, rbErr)
	})

	t.Run("does not run fn when begin fails", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(ctx, errors.New("busy"))

		called := false
		err := WithUnitOfWork(ctx, uow, func(context.Context) error { called = true; return nil })

		assert.EqualError(t, err, "busy")
		assert.False(t, called)
	})
}

type testEvent struct {
	domain.BaseEvent
}

type plainEvent struct {
	domain.BaseEvent
}

func (plainEvent) SetMetadata(domain.EventMetadata) {}

func TestEventMetadata(t *testing.T) {
	t.Run("carries the request correlation id", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "req-7")

		meta := EventMetadataFromContext(ctx)

		assert.Equal(t, "req-7", meta.CorrelationID)
		assert.NotEmpty(t, meta.CausationID)
	})

	t.Run("mints a correlation id when missing", func(t *testing.T) {
		a := EventMetadataFromContext(context.Background())
		b := EventMetadataFromContext(context.Background())

		assert.NotEmpty(t, a.CorrelationID)
		assert.NotEqual(t, a.CorrelationID, b.CorrelationID)
	})

	t.Run("applies to events with a setter", func(t *testing.T) {
		event := &testEvent{BaseEvent: domain.NewBaseEvent("1", "Lesson", "lessons.lesson.created")}
		meta := domain.EventMetadata{CorrelationID: "c", CausationID: "d"}

		ApplyEventMetadata(meta, event, plainEvent{})

		assert.Equal(t, meta, event.Metadata())
	})
}
