package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
)

// ErrAlreadySeeded is returned when the store already holds instructors.
var ErrAlreadySeeded = errors.New("lesson store already has instructors")

// SeedResult counts the demo rows inserted by Seed.
type SeedResult struct {
	Instructors int
	Students    int
	Lessons     int
}

type seedLesson struct {
	instructor int
	day        int
	start, end string
	lessonType string
	student    int
	status     domain.Status
}

var (
	seedInstructors = []domain.Resource{
		{FirstName: "Paul", LastName: "Durand", Phone: "06 12 34 56 78"},
		{FirstName: "Claire", LastName: "Martin", Email: "claire.martin@example.com"},
		{FirstName: "Karim", LastName: "Benali"},
	}
	seedStudents = []domain.Student{
		{FirstName: "Léa", LastName: "Moreau", Category: "B"},
		{FirstName: "Hugo", LastName: "Petit", Category: "B"},
		{FirstName: "Inès", LastName: "Roux", Category: "A2"},
	}
	// Days count from the first day of the seeded week.
	seedLessons = []seedLesson{
		{instructor: 0, day: 0, start: "09:00", end: "10:00", lessonType: "conduite", student: 1},
		{instructor: 0, day: 0, start: "10:00", end: "11:30", lessonType: "conduite", student: 2},
		{instructor: 0, day: 0, start: "14:00", end: "15:00", lessonType: "conduite", student: 3, status: domain.StatusCancelled},
		{instructor: 1, day: 0, start: "08:00", end: "12:00", lessonType: "formation"},
		{instructor: 1, day: 1, start: "09:30", end: "10:30", lessonType: "examen conduite", student: 1},
		{instructor: 2, day: 1, start: "13:00", end: "14:00", lessonType: "conduite", student: 2, status: domain.StatusCompleted},
		{instructor: 2, day: 2, start: "08:00", end: "20:00", lessonType: "congé"},
		{instructor: 0, day: 3, start: "16:00", end: "18:00", lessonType: "disponible"},
		{instructor: 1, day: 4, start: "11:00", end: "12:00", lessonType: "examen plateau", student: 3},
	}
)

// Seed inserts demo instructors, students and a week of lessons starting on
// weekStart into an empty store.
func Seed(ctx context.Context, repo domain.LessonRepository, weekStart domain.Date) (SeedResult, error) {
	existing, err := repo.ListInstructors(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	if len(existing) > 0 {
		return SeedResult{}, fmt.Errorf("%w: %d found", ErrAlreadySeeded, len(existing))
	}

	var result SeedResult
	instructors := make([]domain.Resource, len(seedInstructors))
	for i, r := range seedInstructors {
		saved, err := repo.SaveInstructor(ctx, r)
		if err != nil {
			return result, fmt.Errorf("failed to seed instructor %s: %w", r.DisplayName(), err)
		}
		instructors[i] = saved
		result.Instructors++
	}
	students := make([]int64, len(seedStudents))
	for i, s := range seedStudents {
		saved, err := repo.SaveStudent(ctx, s)
		if err != nil {
			return result, fmt.Errorf("failed to seed student %s: %w", s.DisplayName(), err)
		}
		students[i] = saved.ID
		result.Students++
	}

	for _, l := range seedLessons {
		draft := domain.LessonDraft{
			ResourceID: instructors[l.instructor].ID,
			Date:       weekStart.AddDays(l.day),
			Range: domain.TimeRange{
				Start: domain.MustTimeOfDay(l.start),
				End:   domain.MustTimeOfDay(l.end),
			},
			Type: domain.LessonType(l.lessonType),
		}
		if l.student > 0 {
			id := students[l.student-1]
			draft.StudentID = &id
		}
		lesson, err := repo.CreateLesson(ctx, draft)
		if err != nil {
			return result, fmt.Errorf("failed to seed lesson: %w", err)
		}
		if l.status != "" {
			if _, err := repo.SaveLesson(ctx, lesson.WithStatus(l.status)); err != nil {
				return result, fmt.Errorf("failed to seed lesson status: %w", err)
			}
		}
		result.Lessons++
	}
	return result, nil
}

// CurrentWeekStart returns the first day of the week containing now.
func CurrentWeekStart(now time.Time, weekStart time.Weekday) domain.Date {
	today := domain.DateOf(now)
	offset := (int(today.Weekday()) - int(weekStart) + 7) % 7
	return today.AddDays(-offset)
}
