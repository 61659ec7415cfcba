package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/persistence"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/remote"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = domain.NewDate(2024, time.March, 18)

func tr(start, end string) domain.TimeRange {
	return domain.TimeRange{Start: domain.MustTimeOfDay(start), End: domain.MustTimeOfDay(end)}
}

func newLocalGateway(t *testing.T) (*remote.LocalGateway, *persistence.LessonRepository, domain.Resource) {
	t.Helper()
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: sqlite.MemoryPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, migrations.Migrate(ctx, conn, "", nil))

	repo := persistence.NewLessonRepository(conn)
	paul, err := repo.SaveInstructor(ctx, domain.Resource{FirstName: "Paul", LastName: "Durand"})
	require.NoError(t, err)
	return remote.NewLocalGateway(repo, database.NewUnitOfWork(conn), nil), repo, paul
}

func TestLocalGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and cancels", func(t *testing.T) {
		gateway, repo, paul := newLocalGateway(t)

		created, err := gateway.Create(ctx, domain.LessonDraft{ResourceID: paul.ID, Date: monday, Range: tr("09:00", "10:00")})
		require.NoError(t, err)

		cancelled, err := gateway.Update(ctx, created, domain.ActionCancel)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, cancelled.Status())

		stored, err := repo.FindLesson(ctx, created.ID())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, stored.Status())
	})

	t.Run("checks the transition against the stored lesson", func(t *testing.T) {
		gateway, _, paul := newLocalGateway(t)
		created, err := gateway.Create(ctx, domain.LessonDraft{ResourceID: paul.ID, Date: monday, Range: tr("09:00", "10:00")})
		require.NoError(t, err)
		_, err = gateway.Update(ctx, created, domain.ActionComplete)
		require.NoError(t, err)

		_, err = gateway.Update(ctx, created, domain.ActionCancel)

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("refuses overlapping lessons", func(t *testing.T) {
		gateway, _, paul := newLocalGateway(t)
		first, err := gateway.Create(ctx, domain.LessonDraft{ResourceID: paul.ID, Date: monday, Range: tr("09:00", "10:00")})
		require.NoError(t, err)
		second, err := gateway.Create(ctx, domain.LessonDraft{ResourceID: paul.ID, Date: monday, Range: tr("10:00", "11:00")})
		require.NoError(t, err)

		_, err = gateway.Create(ctx, domain.LessonDraft{ResourceID: paul.ID, Date: monday, Range: tr("09:30", "10:30")})
		assert.ErrorIs(t, err, domain.ErrLessonConflict)

		_, err = gateway.Update(ctx, second.WithRange(tr("09:45", "10:45")), domain.ActionEdit)
		assert.ErrorIs(t, err, domain.ErrLessonConflict)

		moved, err := gateway.Update(ctx, first.WithRange(tr("08:30", "09:30")), domain.ActionEdit)
		require.NoError(t, err)
		assert.Equal(t, "08:30-09:30", moved.Range().String())
	})

	t.Run("cancelled lessons free their slot", func(t *testing.T) {
		gateway, _, paul := newLocalGateway(t)
		first, err := gateway.Create(ctx, domain.LessonDraft{ResourceID: paul.ID, Date: monday, Range: tr("09:00", "10:00")})
		require.NoError(t, err)
		_, err = gateway.Update(ctx, first, domain.ActionCancel)
		require.NoError(t, err)

		_, err = gateway.Create(ctx, domain.LessonDraft{ResourceID: paul.ID, Date: monday, Range: tr("09:00", "10:00")})

		assert.NoError(t, err)
	})

	t.Run("reports unknown lessons", func(t *testing.T) {
		gateway, _, paul := newLocalGateway(t)

		_, err := gateway.Update(ctx, domain.NewBooking(99, paul.ID, monday, tr("09:00", "10:00")), domain.ActionCancel)

		assert.ErrorIs(t, err, domain.ErrLessonNotFound)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newHTTPGateway(t *testing.T, handler http.HandlerFunc) *remote.HTTPGateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := remote.DefaultHTTPGatewayConfig(server.URL)
	cfg.FailureThreshold = 2
	cfg.OpenTimeout = time.Minute
	gateway, err := remote.NewHTTPGateway(cfg)
	require.NoError(t, err)
	return gateway
}

func TestHTTPGateway(t *testing.T) {
	ctx := context.Background()
	lesson := domain.NewBooking(7, 1, monday, tr("09:00", "10:00"))

	t.Run("sends the action and decodes the stored lesson", func(t *testing.T) {
		var got commands.UpdateLessonRequest
		gateway := newHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPatch, r.Method)
			assert.Equal(t, "/api/v1/lessons/7", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(w, http.StatusOK, queries.ToLessonDTO(lesson.WithStatus(domain.StatusCancelled)))
		})

		b, err := gateway.Update(ctx, lesson.WithStatus(domain.StatusCancelled), domain.ActionCancel)

		require.NoError(t, err)
		assert.Equal(t, "cancel", got.Action)
		assert.Nil(t, got.Start)
		assert.Equal(t, domain.StatusCancelled, b.Status())
	})

	t.Run("lists lessons for a window", func(t *testing.T) {
		gateway := newHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2024-03-18", r.URL.Query().Get("from"))
			assert.Equal(t, []string{"1", "2"}, r.URL.Query()["instructor_id"])
			writeJSON(w, http.StatusOK, []queries.LessonDTO{queries.ToLessonDTO(lesson)})
		})

		lessons, err := gateway.ListLessons(ctx, monday, monday.AddDays(6), []domain.ResourceID{1, 2})

		require.NoError(t, err)
		require.Len(t, lessons, 1)
		assert.True(t, lessons[0].Equal(lesson))
	})

	t.Run("maps error kinds to domain errors", func(t *testing.T) {
		gateway := newHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "overlap", "kind": commands.KindConflict})
		})

		_, err := gateway.Create(ctx, domain.LessonDraft{ResourceID: 1, Date: monday, Range: tr("09:00", "10:00")})

		assert.ErrorIs(t, err, domain.ErrLessonConflict)
	})

	t.Run("client errors do not open the breaker", func(t *testing.T) {
		gateway := newHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "lesson not found", "kind": commands.KindNotFound})
		})

		for i := 0; i < 3; i++ {
			_, err := gateway.FindLesson(ctx, 99)
			assert.ErrorIs(t, err, domain.ErrLessonNotFound)
		}
		assert.Equal(t, "closed", gateway.BreakerState())
	})

	t.Run("server failures open the breaker", func(t *testing.T) {
		var calls atomic.Int32
		gateway := newHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "boom", http.StatusBadGateway)
		})

		for i := 0; i < 2; i++ {
			_, err := gateway.Update(ctx, lesson, domain.ActionComplete)
			assert.ErrorIs(t, err, remote.ErrRemoteRejected)
		}
		_, err := gateway.Update(ctx, lesson, domain.ActionComplete)

		assert.ErrorIs(t, err, domain.ErrBackOfficeUnavailable)
		assert.Equal(t, int32(2), calls.Load())
		assert.Equal(t, "open", gateway.BreakerState())
	})
}
