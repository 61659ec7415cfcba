package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/lessonboard/internal/shared/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// Envelope wraps a domain event in the bus envelope. The correlation id of
// ctx is used when the event carries none.
func Envelope(ctx context.Context, event domain.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", event.RoutingKey(), err)
	}
	meta := event.Metadata()
	if meta.CorrelationID == "" {
		meta.CorrelationID = observability.CorrelationIDFromContext(ctx)
	}
	return json.Marshal(ConsumedEvent{
		EventID:       event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		RoutingKey:    event.RoutingKey(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
		Metadata: EventMetadata{
			CorrelationID: meta.CorrelationID,
			CausationID:   meta.CausationID,
		},
	})
}

// PublishEvent wraps event in its envelope and publishes it under its routing key.
func PublishEvent(ctx context.Context, publisher Publisher, event domain.DomainEvent) error {
	body, err := Envelope(ctx, event)
	if err != nil {
		return err
	}
	return publisher.Publish(ctx, event.RoutingKey(), body)
}

// Fanout publishes every message to each of its publishers in order.
type Fanout []Publisher

// Publish sends the message to every publisher and joins their errors.
func (f Fanout) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every publisher.
func (f Fanout) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
