package queries

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
)

// InstructorDTO is an instructor with its board color.
type InstructorDTO struct {
	ID        domain.ResourceID `json:"id"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Phone     string            `json:"phone,omitempty"`
	Email     string            `json:"email,omitempty"`
	Name      string            `json:"name"`
	Color     domain.ColorToken `json:"color"`
}

// ListInstructorsQuery lists every instructor.
type ListInstructorsQuery struct{}

func (ListInstructorsQuery) QueryName() string { return "instructors.list" }

// ListInstructorsHandler handles the ListInstructorsQuery.
type ListInstructorsHandler struct {
	source  domain.LessonSource
	palette domain.ResourcePalette
}

// NewListInstructorsHandler creates a new ListInstructorsHandler.
func NewListInstructorsHandler(source domain.LessonSource, palette domain.ResourcePalette) *ListInstructorsHandler {
	return &ListInstructorsHandler{source: source, palette: palette}
}

// Handle executes the ListInstructorsQuery.
func (h *ListInstructorsHandler) Handle(ctx context.Context, _ ListInstructorsQuery) ([]InstructorDTO, error) {
	resources, err := h.source.ListInstructors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructors: %w", err)
	}
	out := make([]InstructorDTO, len(resources))
	for i, r := range resources {
		out[i] = InstructorDTO{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Phone:     r.Phone,
			Email:     r.Email,
			Name:      r.DisplayName(),
			Color:     h.palette.ColorFor(r.ID),
		}
	}
	return out, nil
}
