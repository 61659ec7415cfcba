// Package cache provides a Redis read-through cache in front of a lesson
// source.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/eventbus"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a cached window may be served.
const DefaultTTL = 5 * time.Minute

const keyPrefix = "lessonboard:"

// RedisLessonSource caches instructor and lesson lists. Keys embed a
// generation counter; bumping it invalidates every cached window at once.
// Redis failures fall back to the wrapped source.
type RedisLessonSource struct {
	client *redis.Client
	next   domain.LessonSource
	ttl    time.Duration
	logger *slog.Logger
}

var (
	_ domain.LessonSource    = (*RedisLessonSource)(nil)
	_ eventbus.EventConsumer = (*RedisLessonSource)(nil)
)

// NewRedisLessonSource wraps next. A zero ttl uses DefaultTTL.
func NewRedisLessonSource(client *redis.Client, next domain.LessonSource, ttl time.Duration, logger *slog.Logger) *RedisLessonSource {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLessonSource{client: client, next: next, ttl: ttl, logger: logger}
}

func generationKey() string { return keyPrefix + "generation" }

func (s *RedisLessonSource) generation(ctx context.Context) (int64, error) {
	gen, err := s.client.Get(ctx, generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Invalidate drops every cached list.
func (s *RedisLessonSource) Invalidate(ctx context.Context) error {
	if err := s.client.Incr(ctx, generationKey()).Err(); err != nil {
		return fmt.Errorf("failed to invalidate lesson cache: %w", err)
	}
	return nil
}

// ListInstructors implements domain.LessonSource.
func (s *RedisLessonSource) ListInstructors(ctx context.Context) ([]domain.Resource, error) {
	var cached []queries.InstructorDTO
	key, hit := s.lookup(ctx, "instructors", &cached)
	if hit {
		out := make([]domain.Resource, len(cached))
		for i, dto := range cached {
			out[i] = dto.ToResource()
		}
		return out, nil
	}

	resources, err := s.next.ListInstructors(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]queries.InstructorDTO, len(resources))
	for i, r := range resources {
		dtos[i] = queries.InstructorDTO{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Phone: r.Phone, Email: r.Email}
	}
	s.store(ctx, key, dtos)
	return resources, nil
}

// ListLessons implements domain.LessonSource.
func (s *RedisLessonSource) ListLessons(ctx context.Context, from, to domain.Date, resources []domain.ResourceID) ([]domain.Booking, error) {
	var cached []queries.LessonDTO
	key, hit := s.lookup(ctx, lessonsKey(from, to, resources), &cached)
	if hit {
		out := make([]domain.Booking, 0, len(cached))
		for _, dto := range cached {
			b, err := dto.Booking()
			if err != nil {
				hit = false
				break
			}
			out = append(out, b)
		}
		if hit {
			return out, nil
		}
	}

	lessons, err := s.next.ListLessons(ctx, from, to, resources)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, queries.ToLessonDTOs(lessons))
	return lessons, nil
}

func lessonsKey(from, to domain.Date, resources []domain.ResourceID) string {
	ids := make([]string, len(resources))
	for i, id := range resources {
		ids[i] = strconv.FormatInt(int64(id), 10)
	}
	return "lessons:" + from.String() + ":" + to.String() + ":" + strings.Join(ids, ",")
}

// lookup returns the versioned key of name and whether a cached value was
// decoded into out. An empty key means the cache is unusable.
func (s *RedisLessonSource) lookup(ctx context.Context, name string, out any) (string, bool) {
	gen, err := s.generation(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "lesson cache unavailable", "error", err)
		return "", false
	}
	key := fmt.Sprintf("%sg%d:%s", keyPrefix, gen, name)
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "lesson cache read failed", "key", key, "error", err)
		}
		return key, false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		s.logger.WarnContext(ctx, "lesson cache entry unreadable", "key", key, "error", err)
		return key, false
	}
	return key, true
}

func (s *RedisLessonSource) store(ctx context.Context, key string, v any) {
	if key == "" {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "lesson cache write failed", "key", key, "error", err)
	}
}

// EventTypes subscribes to every lesson event.
func (s *RedisLessonSource) EventTypes() []string {
	return []string{"lessons.#"}
}

// Handle invalidates the cache after any lesson change.
func (s *RedisLessonSource) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	s.logger.DebugContext(ctx, "invalidating lesson cache", "routing_key", event.RoutingKey)
	return s.Invalidate(ctx)
}
