// Package api is the back-office HTTP surface: lesson reads and lifecycle
// changes, rendered calendars, iCalendar exports and server-side boards for
// thin clients.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// LessonFinder looks up one stored lesson.
type LessonFinder interface {
	FindLesson(ctx context.Context, id domain.BookingID) (domain.Booking, error)
}

// Dependencies are the application handlers served by the API.
type Dependencies struct {
	Source       domain.LessonSource
	Finder       LessonFinder
	Calendar     *queries.GetCalendarHandler
	Instructors  *queries.ListInstructorsHandler
	CreateLesson *commands.CreateLessonHandler
	UpdateLesson *commands.UpdateLessonHandler
	Layout       projection.Layout
	Health       *observability.HealthRegistry
	Metrics      observability.Metrics
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// BoardIdleTimeout drops server-side boards nobody touched for that long.
	BoardIdleTimeout time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:             "127.0.0.1:8080",
		ReadTimeout:      15 * time.Second,
		WriteTimeout:     15 * time.Second,
		IdleTimeout:      60 * time.Second,
		BoardIdleTimeout: 30 * time.Minute,
	}
}

// Server is the back-office HTTP API server.
type Server struct {
	router    chi.Router
	server    *http.Server
	deps      Dependencies
	validator *requestValidator
	boards    *boardStore
	logger    *slog.Logger
}

// NewServer creates the API server and registers its routes.
func NewServer(cfg ServerConfig, deps Dependencies, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = observability.NoopMetrics{}
	}
	if deps.Layout.SlotGranularity == 0 {
		deps.Layout = projection.DefaultLayout()
	}
	if cfg.BoardIdleTimeout <= 0 {
		cfg.BoardIdleTimeout = DefaultServerConfig().BoardIdleTimeout
	}

	s := &Server{
		router:    chi.NewRouter(),
		deps:      deps,
		validator: newRequestValidator(),
		boards:    newBoardStore(cfg.BoardIdleTimeout),
		logger:    logger,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// registerRoutes sets up the middleware chain and the API routes.
func (s *Server) registerRoutes() {
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(correlation)
	r.Use(requestLogger(s.logger, s.deps.Metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/instructors", s.listInstructors)
		r.Get("/instructors/{instructorID}/lessons.ics", s.exportInstructorICS)

		r.Get("/lessons", s.listLessons)
		r.Post("/lessons", s.createLesson)
		r.Get("/lessons/{lessonID}", s.getLesson)
		r.Patch("/lessons/{lessonID}", s.updateLesson)

		r.Get("/calendar", s.getCalendar)

		r.Post("/boards", s.openBoard)
		r.Route("/boards/{boardID}", func(r chi.Router) {
			r.Get("/", s.renderBoard)
			r.Delete("/", s.closeBoard)
			r.Post("/refresh", s.refreshBoard)
			r.Post("/press", s.pressBoard)
			r.Post("/move", s.moveBoard)
			r.Post("/release", s.releaseBoard)
			r.Post("/cancel", s.cancelBoard)
			r.Post("/activate", s.activateBoard)
		})
	})
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		s.deps.Health.Handler().ServeHTTP(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": string(observability.HealthStatusHealthy),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type snapshotter interface {
	Snapshot() map[string]float64
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m, ok := s.deps.Metrics.(snapshotter)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]float64{})
		return
	}
	writeJSON(w, http.StatusOK, m.Snapshot())
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting lessonboard API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down lessonboard API server")
	return s.server.Shutdown(ctx)
}
