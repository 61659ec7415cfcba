package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/database"
)

// LessonRepository stores instructors, students and lessons in SQLite or
// PostgreSQL. Queries are written with "?" and rebound per driver.
type LessonRepository struct {
	conn database.Connection
}

var _ domain.LessonRepository = (*LessonRepository)(nil)

// NewLessonRepository creates a repository over conn.
func NewLessonRepository(conn database.Connection) *LessonRepository {
	return &LessonRepository{conn: conn}
}

func (r *LessonRepository) executor(ctx context.Context) database.Executor {
	return database.ExecutorFromContext(ctx, r.conn)
}

func (r *LessonRepository) rebind(query string) string {
	return r.conn.Driver().Rebind(query)
}

const lessonColumns = `
	l.id, l.instructor_id, l.lesson_date, l.start_minute, l.end_minute,
	l.lesson_type, l.status, l.comment, l.student_id,
	s.first_name, s.last_name, s.phone, s.category`

const lessonFrom = ` FROM lessons l LEFT JOIN students s ON s.id = l.student_id`

// ListInstructors returns every instructor ordered by id.
func (r *LessonRepository) ListInstructors(ctx context.Context) ([]domain.Resource, error) {
	rows, err := r.executor(ctx).Query(ctx,
		`SELECT id, first_name, last_name, phone, email FROM instructors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list instructors: %w", err)
	}
	defer rows.Close()

	var out []domain.Resource
	for rows.Next() {
		var (
			res domain.Resource
			id  int64
		)
		if err := rows.Scan(&id, &res.FirstName, &res.LastName, &res.Phone, &res.Email); err != nil {
			return nil, fmt.Errorf("failed to scan instructor: %w", err)
		}
		res.ID = domain.ResourceID(id)
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListLessons returns the lessons dated within [from, to], optionally
// restricted to some instructors.
func (r *LessonRepository) ListLessons(ctx context.Context, from, to domain.Date, resources []domain.ResourceID) ([]domain.Booking, error) {
	query := `SELECT` + lessonColumns + lessonFrom + ` WHERE l.lesson_date >= ? AND l.lesson_date <= ?`
	args := []any{from.String(), to.String()}
	if len(resources) > 0 {
		query += ` AND l.instructor_id IN (?` + strings.Repeat(`, ?`, len(resources)-1) + `)`
		for _, id := range resources {
			args = append(args, int64(id))
		}
	}
	query += ` ORDER BY l.lesson_date, l.instructor_id, l.start_minute, l.id`

	rows, err := r.executor(ctx).Query(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// FindLesson loads one lesson.
func (r *LessonRepository) FindLesson(ctx context.Context, id domain.BookingID) (domain.Booking, error) {
	row := r.executor(ctx).QueryRow(ctx, r.rebind(`SELECT`+lessonColumns+lessonFrom+` WHERE l.id = ?`), int64(id))
	b, err := scanLesson(row)
	if database.IsNoRows(err) {
		return domain.Booking{}, fmt.Errorf("%w: %d", domain.ErrLessonNotFound, id)
	}
	return b, err
}

// CreateLesson inserts a scheduled lesson from draft.
func (r *LessonRepository) CreateLesson(ctx context.Context, draft domain.LessonDraft) (domain.Booking, error) {
	b := draft.Booking()
	var id int64
	err := r.executor(ctx).QueryRow(ctx, r.rebind(`
		INSERT INTO lessons (instructor_id, lesson_date, start_minute, end_minute, lesson_type, status, student_id, comment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		int64(b.ResourceID()), b.Date().String(), b.Start().Minutes(), b.End().Minutes(),
		string(b.Type()), string(b.Status()), studentID(b), b.Comment(),
	).Scan(&id)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("failed to create lesson: %w", err)
	}
	return r.FindLesson(ctx, domain.BookingID(id))
}

// SaveLesson overwrites the stored lesson with b.
func (r *LessonRepository) SaveLesson(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	res, err := r.executor(ctx).Exec(ctx, r.rebind(`
		UPDATE lessons
		SET instructor_id = ?, lesson_date = ?, start_minute = ?, end_minute = ?,
		    lesson_type = ?, status = ?, student_id = ?, comment = ?
		WHERE id = ?`),
		int64(b.ResourceID()), b.Date().String(), b.Start().Minutes(), b.End().Minutes(),
		string(b.Type()), string(b.Status()), studentID(b), b.Comment(), int64(b.ID()),
	)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("failed to save lesson %d: %w", b.ID(), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Booking{}, fmt.Errorf("%w: %d", domain.ErrLessonNotFound, b.ID())
	}
	return r.FindLesson(ctx, b.ID())
}

// SaveInstructor inserts the instructor when its id is zero, otherwise
// updates it.
func (r *LessonRepository) SaveInstructor(ctx context.Context, res domain.Resource) (domain.Resource, error) {
	exec := r.executor(ctx)
	if res.ID == 0 {
		var id int64
		err := exec.QueryRow(ctx, r.rebind(`
			INSERT INTO instructors (first_name, last_name, phone, email) VALUES (?, ?, ?, ?) RETURNING id`),
			res.FirstName, res.LastName, res.Phone, res.Email,
		).Scan(&id)
		if err != nil {
			return domain.Resource{}, fmt.Errorf("failed to create instructor: %w", err)
		}
		res.ID = domain.ResourceID(id)
		return res, nil
	}
	result, err := exec.Exec(ctx, r.rebind(`
		UPDATE instructors SET first_name = ?, last_name = ?, phone = ?, email = ? WHERE id = ?`),
		res.FirstName, res.LastName, res.Phone, res.Email, int64(res.ID),
	)
	if err != nil {
		return domain.Resource{}, fmt.Errorf("failed to save instructor %d: %w", res.ID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.Resource{}, fmt.Errorf("%w: %d", domain.ErrInstructorNotFound, res.ID)
	}
	return res, nil
}

// SaveStudent inserts the student when its id is zero, otherwise updates it.
func (r *LessonRepository) SaveStudent(ctx context.Context, s domain.Student) (domain.Student, error) {
	exec := r.executor(ctx)
	if s.ID == 0 {
		err := exec.QueryRow(ctx, r.rebind(`
			INSERT INTO students (first_name, last_name, phone, category) VALUES (?, ?, ?, ?) RETURNING id`),
			s.FirstName, s.LastName, s.Phone, s.Category,
		).Scan(&s.ID)
		if err != nil {
			return domain.Student{}, fmt.Errorf("failed to create student: %w", err)
		}
		return s, nil
	}
	result, err := exec.Exec(ctx, r.rebind(`
		UPDATE students SET first_name = ?, last_name = ?, phone = ?, category = ? WHERE id = ?`),
		s.FirstName, s.LastName, s.Phone, s.Category, s.ID,
	)
	if err != nil {
		return domain.Student{}, fmt.Errorf("failed to save student %d: %w", s.ID, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.Student{}, fmt.Errorf("%w: %d", domain.ErrStudentNotFound, s.ID)
	}
	return s, nil
}

func studentID(b domain.Booking) any {
	if s, ok := b.Student(); ok && s.ID != 0 {
		return s.ID
	}
	return nil
}

func scanLesson(row database.Row) (domain.Booking, error) {
	var (
		id, instructorID int64
		date, lessonType string
		status, comment  string
		startMin, endMin int
		studentRef       sql.NullInt64
		first, last      sql.NullString
		phone, category  sql.NullString
	)
	err := row.Scan(&id, &instructorID, &date, &startMin, &endMin,
		&lessonType, &status, &comment, &studentRef,
		&first, &last, &phone, &category)
	if err != nil {
		return domain.Booking{}, err
	}

	d, err := domain.ParseDate(date)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("lesson %d: %w", id, err)
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("lesson %d: %w", id, err)
	}
	b := domain.NewBooking(domain.BookingID(id), domain.ResourceID(instructorID), d, domain.TimeRange{
		Start: domain.TimeOfDayFromMinutes(startMin),
		End:   domain.TimeOfDayFromMinutes(endMin),
	}).
		WithType(domain.LessonType(lessonType)).
		WithStatus(st).
		WithComment(comment)
	if studentRef.Valid {
		b = b.WithStudent(domain.Student{
			ID:        studentRef.Int64,
			FirstName: first.String,
			LastName:  last.String,
			Phone:     phone.String,
			Category:  category.String,
		})
	}
	return b, nil
}
