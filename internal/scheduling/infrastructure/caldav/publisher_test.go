package caldav

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/ics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// objectStore answers the GET and PUT requests of a calendar collection.
type objectStore struct {
	mu      sync.Mutex
	objects map[string]string
	auth    []string
}

func (s *objectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, _, _ := r.BasicAuth()
	s.auth = append(s.auth, user)

	switch r.Method {
	case http.MethodGet:
		body, ok := s.objects[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/calendar")
		_, _ = io.WriteString(w, body)
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		_, existed := s.objects[r.URL.Path]
		s.objects[r.URL.Path] = string(body)
		if existed {
			w.WriteHeader(http.StatusNoContent)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestPublisher_Publish(t *testing.T) {
	store := &objectStore{objects: map[string]string{}}
	server := httptest.NewServer(store)
	defer server.Close()

	monday := domain.NewDate(2024, time.March, 18)
	paul := domain.Resource{ID: 4, FirstName: "Paul"}
	lessons := []domain.Booking{
		domain.NewBooking(1, 4, monday, domain.TimeRange{Start: domain.MustTimeOfDay("09:00"), End: domain.MustTimeOfDay("10:00")}),
		domain.NewBooking(2, 4, monday, domain.TimeRange{Start: domain.MustTimeOfDay("11:00"), End: domain.MustTimeOfDay("12:00")}),
		domain.NewBooking(3, 5, monday, domain.TimeRange{Start: domain.MustTimeOfDay("11:00"), End: domain.MustTimeOfDay("12:00")}),
	}
	publisher := NewPublisher(server.URL, "school", "secret", nil).
		WithCalendarPath("/calendars/school/instructor-" + InstructorPlaceholder)
	ctx := context.Background()

	result, err := publisher.Publish(ctx, paul, lessons)
	require.NoError(t, err)
	assert.Equal(t, domain.PublishResult{Created: 2}, result)

	path := "/calendars/school/instructor-4/" + ics.UID(1) + ".ics"
	require.Contains(t, store.objects, path)
	assert.True(t, strings.Contains(store.objects[path], "DTSTART:20240318T090000"))
	assert.Contains(t, store.auth, "school")

	result, err = publisher.Publish(ctx, paul, lessons)
	require.NoError(t, err)
	assert.Equal(t, domain.PublishResult{Updated: 2}, result)
	assert.Len(t, store.objects, 2)
}
