package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/ics"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/go-chi/chi/v5"
)

// listInstructors handles GET /api/v1/instructors.
func (s *Server) listInstructors(w http.ResponseWriter, r *http.Request) {
	dtos, err := s.deps.Instructors.Handle(r.Context(), queries.ListInstructorsQuery{})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if dtos == nil {
		dtos = []queries.InstructorDTO{}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// listLessons handles GET /api/v1/lessons?from=&to=&instructor_id=.
func (s *Server) listLessons(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	ids, err := resourceIDs(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	lessons, err := s.deps.Source.ListLessons(r.Context(), from, to, ids)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, queries.ToLessonDTOs(lessons))
}

// getLesson handles GET /api/v1/lessons/{lessonID}.
func (s *Server) getLesson(w http.ResponseWriter, r *http.Request) {
	id, err := lessonID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	lesson, err := s.deps.Finder.FindLesson(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, queries.ToLessonDTO(lesson))
}

// createLesson handles POST /api/v1/lessons.
func (s *Server) createLesson(w http.ResponseWriter, r *http.Request) {
	var req commands.CreateLessonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}
	cmd, err := req.Command()
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	lesson, err := s.deps.CreateLesson.Handle(r.Context(), cmd)
	if err != nil {
		s.deps.Metrics.Counter(observability.MetricLifecycleErrors, 1, observability.T("kind", commands.ErrorKind(err)))
		writeError(w, r, s.logger, err)
		return
	}
	s.deps.Metrics.Counter(observability.MetricLessonsCreated, 1)
	writeJSON(w, http.StatusCreated, queries.ToLessonDTO(lesson))
}

// updateLesson handles PATCH /api/v1/lessons/{lessonID}. The body names
// the action and, for edits, the changed fields.
func (s *Server) updateLesson(w http.ResponseWriter, r *http.Request) {
	id, err := lessonID(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	var req commands.UpdateLessonRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}
	current, err := s.deps.Finder.FindLesson(r.Context(), id)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	cmd, err := req.Command(current)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	lesson, err := s.deps.UpdateLesson.Handle(r.Context(), cmd)
	if err != nil {
		s.deps.Metrics.Counter(observability.MetricLifecycleErrors, 1, observability.T("kind", commands.ErrorKind(err)))
		writeError(w, r, s.logger, err)
		return
	}
	s.deps.Metrics.Counter(observability.MetricLessonsUpdated, 1, observability.T("action", req.Action))
	writeJSON(w, http.StatusOK, queries.ToLessonDTO(lesson))
}

// exportInstructorICS handles GET /api/v1/instructors/{instructorID}/lessons.ics.
func (s *Server) exportInstructorICS(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "instructorID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, r, s.logger, fmt.Errorf("%w: instructor id %q", domain.ErrInstructorNotFound, raw))
		return
	}
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	instructors, err := s.deps.Source.ListInstructors(r.Context())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	resource, ok := findResource(instructors, domain.ResourceID(id))
	if !ok {
		writeError(w, r, s.logger, fmt.Errorf("%w: %d", domain.ErrInstructorNotFound, id))
		return
	}
	lessons, err := s.deps.Source.ListLessons(r.Context(), from, to, []domain.ResourceID{resource.ID})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	var buf bytes.Buffer
	err = ics.Encode(&buf, resource, lessons, ics.Options{Resolver: s.deps.Layout.Resolver})
	if errors.Is(err, ics.ErrEmptyTimetable) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: commands.KindNotFound})
		return
	}
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="instructor-%d.ics"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func findResource(resources []domain.Resource, id domain.ResourceID) (domain.Resource, bool) {
	for _, r := range resources {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Resource{}, false
}

func lessonID(r *http.Request) (domain.BookingID, error) {
	raw := chi.URLParam(r, "lessonID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: lesson id %q", domain.ErrLessonNotFound, raw)
	}
	return domain.BookingID(id), nil
}

// dateRange reads the required from and to query parameters.
func dateRange(r *http.Request) (domain.Date, domain.Date, error) {
	from, err := domain.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return domain.Date{}, domain.Date{}, fmt.Errorf("from: %w", err)
	}
	to, err := domain.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return domain.Date{}, domain.Date{}, fmt.Errorf("to: %w", err)
	}
	if to.Before(from) {
		return domain.Date{}, domain.Date{}, fmt.Errorf("%w: %s before %s", domain.ErrInvalidRange, to, from)
	}
	return from, to, nil
}

// resourceIDs reads the repeatable instructor_id query parameter.
func resourceIDs(r *http.Request) ([]domain.ResourceID, error) {
	values := r.URL.Query()["instructor_id"]
	if len(values) == 0 {
		return nil, nil
	}
	ids := make([]domain.ResourceID, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: instructor id %q", domain.ErrMissingInstructor, v)
		}
		ids = append(ids, domain.ResourceID(id))
	}
	return ids, nil
}
