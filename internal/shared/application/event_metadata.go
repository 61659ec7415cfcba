package application

import (
	"context"

	"github.com/felixgeelhaar/lessonboard/internal/shared/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/google/uuid"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// EventMetadataFromContext ties events raised by one command to the
// request's correlation id. A fresh id is minted when ctx carries none.
func EventMetadataFromContext(ctx context.Context) domain.EventMetadata {
	correlationID := observability.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.NewString(),
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(metadata domain.EventMetadata, events ...domain.DomainEvent) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
