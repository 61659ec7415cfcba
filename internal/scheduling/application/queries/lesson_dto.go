package queries

import (
	"fmt"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
)

// StudentDTO is the learner attached to a lesson.
type StudentDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Category  string `json:"category,omitempty"`
}

// LessonDTO is the wire form of a lesson shared by the back-office API and
// its HTTP client.
type LessonDTO struct {
	ID           domain.BookingID  `json:"id"`
	InstructorID domain.ResourceID `json:"instructor_id"`
	Date         string            `json:"date"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Type         string            `json:"type"`
	Status       string            `json:"status"`
	Comment      string            `json:"comment,omitempty"`
	Student      *StudentDTO       `json:"student,omitempty"`
}

// ToLessonDTO converts a booking.
func ToLessonDTO(b domain.Booking) LessonDTO {
	dto := LessonDTO{
		ID:           b.ID(),
		InstructorID: b.ResourceID(),
		Date:         b.Date().String(),
		Start:        b.Start().String(),
		End:          b.End().String(),
		Type:         string(b.Type()),
		Status:       string(b.Status()),
		Comment:      b.Comment(),
	}
	if s, ok := b.Student(); ok {
		dto.Student = &StudentDTO{
			ID:        s.ID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Phone:     s.Phone,
			Category:  s.Category,
		}
	}
	return dto
}

// ToLessonDTOs converts a list of bookings.
func ToLessonDTOs(bookings []domain.Booking) []LessonDTO {
	out := make([]LessonDTO, len(bookings))
	for i, b := range bookings {
		out[i] = ToLessonDTO(b)
	}
	return out
}

// Booking parses the DTO back into a booking. Ranges are not validated so
// that bad data reaches the projections, which report it.
func (d LessonDTO) Booking() (domain.Booking, error) {
	date, err := domain.ParseDate(d.Date)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("lesson %d: %w", d.ID, err)
	}
	start, err := domain.ParseTimeOfDay(d.Start)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("lesson %d: %w", d.ID, err)
	}
	end, err := domain.ParseTimeOfDay(d.End)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("lesson %d: %w", d.ID, err)
	}
	b := domain.NewBooking(d.ID, d.InstructorID, date, domain.TimeRange{Start: start, End: end}).
		WithComment(d.Comment)
	if d.Type != "" {
		b = b.WithType(domain.LessonType(d.Type))
	}
	if d.Status != "" {
		status, err := domain.ParseStatus(d.Status)
		if err != nil {
			return domain.Booking{}, fmt.Errorf("lesson %d: %w", d.ID, err)
		}
		b = b.WithStatus(status)
	}
	if d.Student != nil {
		b = b.WithStudent(domain.Student{
			ID:        d.Student.ID,
			FirstName: d.Student.FirstName,
			LastName:  d.Student.LastName,
			Phone:     d.Student.Phone,
			Category:  d.Student.Category,
		})
	}
	return b, nil
}

// ToResource converts the DTO back into an instructor.
func (d InstructorDTO) ToResource() domain.Resource {
	return domain.Resource{
		ID:        d.ID,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Phone:     d.Phone,
		Email:     d.Email,
	}
}
