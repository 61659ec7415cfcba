package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// ConsumerRegistry matches routing keys against consumer patterns and
// dispatches events to every match.
type ConsumerRegistry struct {
	mu       sync.RWMutex
	patterns []string
	byKey    map[string][]EventConsumer
	logger   *slog.Logger
}

// NewConsumerRegistry creates a new consumer registry.
func NewConsumerRegistry(logger *slog.Logger) *ConsumerRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsumerRegistry{
		byKey:  make(map[string][]EventConsumer),
		logger: logger,
	}
}

// Register adds a consumer for its declared patterns.
func (r *ConsumerRegistry) Register(consumer EventConsumer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, pattern := range consumer.EventTypes() {
		if _, ok := r.byKey[pattern]; !ok {
			r.patterns = append(r.patterns, pattern)
		}
		r.byKey[pattern] = append(r.byKey[pattern], consumer)
		r.logger.Debug("registered consumer", "pattern", pattern)
	}
}

// Patterns returns the registered patterns in registration order.
func (r *ConsumerRegistry) Patterns() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.patterns...)
}

// Match returns the consumers whose patterns match routingKey. A consumer
// registered under several matching patterns is returned once.
func (r *ConsumerRegistry) Match(routingKey string) []EventConsumer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []EventConsumer
	seen := make(map[EventConsumer]bool)
	for _, pattern := range r.patterns {
		if !MatchRoutingKey(pattern, routingKey) {
			continue
		}
		for _, c := range r.byKey[pattern] {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// Dispatch hands the event to every matching consumer. All consumers run
// even when one fails; their errors are joined.
func (r *ConsumerRegistry) Dispatch(ctx context.Context, event *ConsumedEvent) error {
	consumers := r.Match(event.RoutingKey)
	if len(consumers) == 0 {
		r.logger.Debug("no consumers for routing key", "routing_key", event.RoutingKey)
		return nil
	}

	var errs []error
	for _, consumer := range consumers {
		if err := consumer.Handle(ctx, event); err != nil {
			r.logger.Error("consumer failed to handle event",
				"routing_key", event.RoutingKey,
				"event_id", event.EventID,
				"error", err,
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MatchRoutingKey reports whether key matches an AMQP topic pattern, where
// "*" stands for exactly one word and "#" for zero or more words.
func MatchRoutingKey(pattern, key string) bool {
	return matchWords(strings.Split(pattern, "."), strings.Split(key, "."))
}

func matchWords(pattern, key []string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case "#":
			for i := 0; i <= len(key); i++ {
				if matchWords(pattern[1:], key[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(key) == 0 {
				return false
			}
		default:
			if len(key) == 0 || key[0] != pattern[0] {
				return false
			}
		}
		pattern, key = pattern[1:], key[1:]
	}
	return len(key) == 0
}
