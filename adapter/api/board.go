package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/services"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ErrBoardNotFound is returned for an unknown or expired board id.
var ErrBoardNotFound = errors.New("board not found")

type boardSession struct {
	board    *services.Board
	lastUsed time.Time
}

// boardStore keeps the server-side boards of thin clients.
type boardStore struct {
	mu      sync.Mutex
	boards  map[string]*boardSession
	idle    time.Duration
	nowFunc func() time.Time
}

func newBoardStore(idle time.Duration) *boardStore {
	return &boardStore{boards: make(map[string]*boardSession), idle: idle, nowFunc: time.Now}
}

func (s *boardStore) add(board *services.Board) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFunc()
	for id, session := range s.boards {
		if now.Sub(session.lastUsed) > s.idle {
			delete(s.boards, id)
		}
	}
	id := uuid.NewString()
	s.boards[id] = &boardSession{board: board, lastUsed: now}
	return id
}

func (s *boardStore) get(id string) (*services.Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.boards[id]
	now := s.nowFunc()
	if !ok || now.Sub(session.lastUsed) > s.idle {
		delete(s.boards, id)
		return nil, fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	session.lastUsed = now
	return session.board, nil
}

func (s *boardStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.boards[id]
	delete(s.boards, id)
	return ok
}

// openBoardRequest opens a board on a window.
type openBoardRequest struct {
	windowRequest
	CreationMode    bool `json:"creation_mode"`
	IgnoreCancelled bool `json:"ignore_cancelled"`
}

type boardResponse struct {
	ID           string            `json:"id"`
	State        string            `json:"state"`
	CreationMode bool              `json:"creation_mode"`
	Selection    *domain.Selection `json:"selection,omitempty"`
	View         viewResponse      `json:"view"`
}

// cellRequest addresses one grid cell.
type cellRequest struct {
	InstructorID int64  `json:"instructor_id" validate:"required,gt=0"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required"`
	// Cancelled is only read by release; true reports an aborted drag.
	Cancelled bool `json:"cancelled"`
}

func (req cellRequest) cell() (domain.Cell, error) {
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return domain.Cell{}, err
	}
	t, err := domain.ParseTimeOfDay(req.Time)
	if err != nil {
		return domain.Cell{}, err
	}
	return domain.Cell{ResourceID: domain.ResourceID(req.InstructorID), Date: date, Time: t}, nil
}

// activateRequest opens a lesson by id or a month badge by day and instructor.
type activateRequest struct {
	LessonID     int64  `json:"lesson_id" validate:"omitempty,gt=0"`
	Date         string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	InstructorID int64  `json:"instructor_id" validate:"omitempty,gt=0"`
}

var errActivateTarget = errors.New("lesson_id or date and instructor_id are required")

type gestureResponse struct {
	Accepted  bool              `json:"accepted"`
	State     string            `json:"state"`
	Selection *domain.Selection `json:"selection,omitempty"`
}

// openBoard handles POST /api/v1/boards.
func (s *Server) openBoard(w http.ResponseWriter, r *http.Request) {
	var req openBoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}
	window, err := req.window(s.deps.Layout, domain.DateOf(time.Now()))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	resources, set, err := s.deps.Calendar.Load(r.Context(), window)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	board, err := services.NewBoard(resources, set, services.BoardConfig{
		Window:          window,
		Layout:          s.deps.Layout,
		CreationMode:    req.CreationMode,
		IgnoreCancelled: req.IgnoreCancelled,
	}, s.logger)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	id := s.boards.add(board)
	s.logger.InfoContext(r.Context(), "board opened", "board_id", id, "granularity", window.Granularity)
	s.writeBoard(w, r, http.StatusCreated, id, board)
}

// renderBoard handles GET /api/v1/boards/{boardID}.
func (s *Server) renderBoard(w http.ResponseWriter, r *http.Request) {
	id, board, ok := s.board(w, r)
	if !ok {
		return
	}
	s.writeBoard(w, r, http.StatusOK, id, board)
}

// closeBoard handles DELETE /api/v1/boards/{boardID}.
func (s *Server) closeBoard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "boardID")
	if !s.boards.remove(id) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: ErrBoardNotFound.Error(), Kind: commands.KindNotFound})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// refreshBoard handles POST /api/v1/boards/{boardID}/refresh. It reloads
// the lessons of the board window and cancels any gesture in progress.
func (s *Server) refreshBoard(w http.ResponseWriter, r *http.Request) {
	id, board, ok := s.board(w, r)
	if !ok {
		return
	}
	resources, set, err := s.deps.Calendar.Load(r.Context(), board.Window())
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	board.SetResources(resources)
	board.Replace(set)
	s.writeBoard(w, r, http.StatusOK, id, board)
}

// pressBoard handles POST /api/v1/boards/{boardID}/press.
func (s *Server) pressBoard(w http.ResponseWriter, r *http.Request) {
	s.gesture(w, r, func(board *services.Board, req cellRequest, cell domain.Cell) gestureResponse {
		return gestureResponse{Accepted: board.Press(cell)}
	})
}

// moveBoard handles POST /api/v1/boards/{boardID}/move.
func (s *Server) moveBoard(w http.ResponseWriter, r *http.Request) {
	s.gesture(w, r, func(board *services.Board, req cellRequest, cell domain.Cell) gestureResponse {
		return gestureResponse{Accepted: board.Move(cell)}
	})
}

// releaseBoard handles POST /api/v1/boards/{boardID}/release. A completed
// selection is returned for the client to post as a lesson.
func (s *Server) releaseBoard(w http.ResponseWriter, r *http.Request) {
	s.gesture(w, r, func(board *services.Board, req cellRequest, cell domain.Cell) gestureResponse {
		sel, ok := board.Release(cell, !req.Cancelled)
		resp := gestureResponse{Accepted: ok}
		if ok {
			resp.Selection = &sel
		}
		return resp
	})
}

// cancelBoard handles POST /api/v1/boards/{boardID}/cancel.
func (s *Server) cancelBoard(w http.ResponseWriter, r *http.Request) {
	_, board, ok := s.board(w, r)
	if !ok {
		return
	}
	board.Cancel()
	writeJSON(w, http.StatusOK, gestureResponse{Accepted: true, State: string(board.State())})
}

// activateBoard handles POST /api/v1/boards/{boardID}/activate.
func (s *Server) activateBoard(w http.ResponseWriter, r *http.Request) {
	_, board, ok := s.board(w, r)
	if !ok {
		return
	}
	var req activateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}

	if req.LessonID == 0 && (req.Date == "" || req.InstructorID == 0) {
		writeInvalid(w, errActivateTarget)
		return
	}

	var (
		lesson domain.Booking
		err    error
	)
	if req.LessonID > 0 {
		lesson, err = board.ActivateBooking(domain.BookingID(req.LessonID))
	} else {
		var date domain.Date
		if date, err = domain.ParseDate(req.Date); err == nil {
			lesson, err = board.ActivateBadge(date, domain.ResourceID(req.InstructorID))
		}
	}
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, queries.ToLessonDTO(lesson))
}

func (s *Server) gesture(w http.ResponseWriter, r *http.Request, fn func(*services.Board, cellRequest, domain.Cell) gestureResponse) {
	_, board, ok := s.board(w, r)
	if !ok {
		return
	}
	var req cellRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeInvalid(w, err)
		return
	}
	cell, err := req.cell()
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	resp := fn(board, req, cell)
	resp.State = string(board.State())
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) board(w http.ResponseWriter, r *http.Request) (string, *services.Board, bool) {
	id := chi.URLParam(r, "boardID")
	board, err := s.boards.get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Kind: commands.KindNotFound})
		return "", nil, false
	}
	return id, board, true
}

func (s *Server) writeBoard(w http.ResponseWriter, r *http.Request, status int, id string, board *services.Board) {
	view, err := board.Render()
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	resp := boardResponse{
		ID:           id,
		State:        string(board.State()),
		CreationMode: board.CreationMode(),
		View:         toViewResponse(view, true),
	}
	if sel, ok := board.Current(); ok {
		resp.Selection = &sel
	}
	writeJSON(w, status, resp)
}
