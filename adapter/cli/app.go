package cli

import (
	"time"

	internalApp "github.com/felixgeelhaar/lessonboard/internal/app"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
)

// App holds the CLI application dependencies.
type App struct {
	// Lesson Command Handlers
	CreateLessonHandler *commands.CreateLessonHandler
	UpdateLessonHandler *commands.UpdateLessonHandler

	// Lesson Query Handlers
	GetCalendarHandler     *queries.GetCalendarHandler
	ListInstructorsHandler *queries.ListInstructorsHandler

	// Timetable publication; nil without CalDAV.
	PublishTimetablesHandler *commands.PublishTimetablesHandler

	// Read side and lookups
	Source domain.LessonSource
	Finder internalApp.LessonFinder
	Layout internalApp.BoardLayout

	// Container backs the admin commands (migrate, seed, serve).
	Container *internalApp.Container

	now func() time.Time
}

// NewApp creates a CLI application from a wired container.
func NewApp(c *internalApp.Container) *App {
	return &App{
		CreateLessonHandler:      c.CreateLessonHandler,
		UpdateLessonHandler:      c.UpdateLessonHandler,
		GetCalendarHandler:       c.GetCalendarHandler,
		ListInstructorsHandler:   c.ListInstructorsHandler,
		PublishTimetablesHandler: c.PublishTimetablesHandler,
		Source:                   c.Source,
		Finder:                   c.Finder,
		Layout:                   c.Layout,
		Container:                c,
		now:                      time.Now,
	}
}

// UseLayoutFile loads a board layout file and rebuilds the handlers that
// depend on it.
func (a *App) UseLayoutFile(path string) error {
	if a.Container == nil {
		return nil
	}
	layout, err := internalApp.LoadBoardLayout(path)
	if err != nil {
		return err
	}
	a.Container.UseLayout(layout)
	c := a.Container
	a.CreateLessonHandler = c.CreateLessonHandler
	a.UpdateLessonHandler = c.UpdateLessonHandler
	a.GetCalendarHandler = c.GetCalendarHandler
	a.ListInstructorsHandler = c.ListInstructorsHandler
	a.PublishTimetablesHandler = c.PublishTimetablesHandler
	a.Layout = c.Layout
	return nil
}

// SetClock replaces the clock used for "today".
func (a *App) SetClock(now func() time.Time) {
	a.now = now
}

// Today returns the current date.
func (a *App) Today() domain.Date {
	if a.now == nil {
		return domain.DateOf(time.Now())
	}
	return domain.DateOf(a.now())
}

// ParseDate parses a YYYY-MM-DD flag value. An empty value is today.
func (a *App) ParseDate(s string) (domain.Date, error) {
	if s == "" {
		return a.Today(), nil
	}
	return domain.ParseDate(s)
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}
