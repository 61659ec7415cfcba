package commands

import (
	"fmt"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
)

// CreateLessonRequest is the wire form of a lesson creation.
type CreateLessonRequest struct {
	InstructorID int64  `json:"instructor_id" validate:"required,gt=0"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Start        string `json:"start" validate:"required"`
	End          string `json:"end" validate:"required"`
	Type         string `json:"type,omitempty" validate:"max=64"`
	StudentID    *int64 `json:"student_id,omitempty" validate:"omitempty,gt=0"`
	Comment      string `json:"comment,omitempty" validate:"max=500"`
}

// NewCreateLessonRequest converts a command back to its wire form.
func NewCreateLessonRequest(draft domain.LessonDraft) CreateLessonRequest {
	return CreateLessonRequest{
		InstructorID: int64(draft.ResourceID),
		Date:         draft.Date.String(),
		Start:        draft.Range.Start.String(),
		End:          draft.Range.End.String(),
		Type:         string(draft.Type),
		StudentID:    draft.StudentID,
		Comment:      draft.Comment,
	}
}

// Command parses the request.
func (r CreateLessonRequest) Command() (CreateLessonCommand, error) {
	date, err := domain.ParseDate(r.Date)
	if err != nil {
		return CreateLessonCommand{}, err
	}
	start, err := domain.ParseTimeOfDay(r.Start)
	if err != nil {
		return CreateLessonCommand{}, err
	}
	end, err := domain.ParseTimeOfDay(r.End)
	if err != nil {
		return CreateLessonCommand{}, err
	}
	return CreateLessonCommand{
		Selection: domain.Selection{
			ResourceID: domain.ResourceID(r.InstructorID),
			Date:       date,
			Start:      start,
			End:        end,
		},
		Type:      domain.LessonType(r.Type),
		StudentID: r.StudentID,
		Comment:   r.Comment,
	}, nil
}

// UpdateLessonRequest is the wire form of a lifecycle action. Field changes
// are only accepted with the edit action; a zero student id detaches the
// student.
type UpdateLessonRequest struct {
	Action       string  `json:"action" validate:"required,oneof=cancel complete edit"`
	InstructorID *int64  `json:"instructor_id,omitempty" validate:"omitempty,gt=0"`
	Date         *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Start        *string `json:"start,omitempty"`
	End          *string `json:"end,omitempty"`
	Type         *string `json:"type,omitempty" validate:"omitempty,max=64"`
	Comment      *string `json:"comment,omitempty" validate:"omitempty,max=500"`
	StudentID    *int64  `json:"student_id,omitempty" validate:"omitempty,gte=0"`
}

// NewUpdateLessonRequest describes target, the lesson as it should be stored
// after action. Only edits carry fields.
func NewUpdateLessonRequest(target domain.Booking, action domain.LifecycleAction) UpdateLessonRequest {
	req := UpdateLessonRequest{Action: string(action)}
	if action != domain.ActionEdit {
		return req
	}
	instructor := int64(target.ResourceID())
	date := target.Date().String()
	start := target.Start().String()
	end := target.End().String()
	lessonType := string(target.Type())
	comment := target.Comment()
	var student int64
	if s, ok := target.Student(); ok {
		student = s.ID
	}
	req.InstructorID = &instructor
	req.Date = &date
	req.Start = &start
	req.End = &end
	req.Type = &lessonType
	req.Comment = &comment
	req.StudentID = &student
	return req
}

// Command parses the request against the stored lesson. A missing start or
// end keeps the stored one.
func (r UpdateLessonRequest) Command(current domain.Booking) (UpdateLessonCommand, error) {
	action, err := domain.ParseAction(r.Action)
	if err != nil {
		return UpdateLessonCommand{}, err
	}
	cmd := UpdateLessonCommand{Lesson: current, Action: action}

	if r.InstructorID != nil {
		id := domain.ResourceID(*r.InstructorID)
		cmd.Edit.ResourceID = &id
	}
	if r.Date != nil {
		date, err := domain.ParseDate(*r.Date)
		if err != nil {
			return UpdateLessonCommand{}, err
		}
		cmd.Edit.Date = &date
	}
	if r.Start != nil || r.End != nil {
		rng := current.Range()
		if r.Start != nil {
			if rng.Start, err = domain.ParseTimeOfDay(*r.Start); err != nil {
				return UpdateLessonCommand{}, fmt.Errorf("start: %w", err)
			}
		}
		if r.End != nil {
			if rng.End, err = domain.ParseTimeOfDay(*r.End); err != nil {
				return UpdateLessonCommand{}, fmt.Errorf("end: %w", err)
			}
		}
		cmd.Edit.Range = &rng
	}
	if r.Type != nil {
		t := domain.LessonType(*r.Type)
		cmd.Edit.Type = &t
	}
	cmd.Edit.Comment = r.Comment
	cmd.Edit.StudentID = r.StudentID
	return cmd, nil
}
