package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lessonEvent struct {
	domain.BaseEvent
	LessonID int64 `json:"lesson_id"`
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now().UTC()
	event := domain.NewBaseEvent("17", "Lesson", "lessons.lesson.cancelled")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.Equal(t, "17", event.AggregateID())
	assert.Equal(t, "Lesson", event.AggregateType())
	assert.Equal(t, "lessons.lesson.cancelled", event.RoutingKey())
	assert.False(t, event.OccurredAt().Before(before))
	assert.Empty(t, event.Metadata().CorrelationID)
}

func TestBaseEvent_SetMetadata(t *testing.T) {
	event := &lessonEvent{BaseEvent: domain.NewBaseEvent("17", "Lesson", "lessons.lesson.created"), LessonID: 17}
	event.SetMetadata(domain.EventMetadata{CorrelationID: "req-1", CausationID: "cmd-1"})

	var _ domain.DomainEvent = event
	assert.Equal(t, "req-1", event.Metadata().CorrelationID)

	body, err := json.Marshal(event)
	require.NoError(t, err)
	assert.JSONEq(t, `{"lesson_id":17}`, string(body))
}
