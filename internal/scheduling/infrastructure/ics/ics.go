// Package ics encodes instructor timetables as iCalendar data. Lesson times
// are wall-clock values and are written as floating local times.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/google/uuid"
)

const (
	ProductID = "-//lessonboard//Instructor Timetable//FR"

	// PropXLessonboard marks events published by lessonboard.
	PropXLessonboard = "X-LESSONBOARD"
	// PropXLessonID carries the back-office lesson id.
	PropXLessonID = "X-LESSONBOARD-LESSON-ID"

	floatingLayout = "20060102T150405"
)

// ErrEmptyTimetable is returned when an instructor has no lesson to export.
var ErrEmptyTimetable = errors.New("no lessons to export")

// lessonNamespace derives stable event uids from lesson ids.
var lessonNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://lessonboard/lessons"))

// UID returns the stable iCalendar uid of a lesson.
func UID(id domain.BookingID) string {
	return uuid.NewSHA1(lessonNamespace, []byte(strconv.FormatInt(int64(id), 10))).String()
}

// Options tune the encoded events.
type Options struct {
	Resolver *domain.CategoryResolver
	// Now stamps DTSTAMP; zero uses time.Now.
	Now time.Time
}

func (o Options) resolver() *domain.CategoryResolver {
	if o.Resolver == nil {
		return domain.NewCategoryResolver(domain.DefaultTypeCatalog())
	}
	return o.Resolver
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now().UTC()
	}
	return o.Now.UTC()
}

// Calendar builds a VCALENDAR holding one VEVENT per lesson of resource.
func Calendar(resource domain.Resource, lessons []domain.Booking, opts Options) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, ProductID)
	cal.Props.SetText("X-WR-CALNAME", resource.DisplayName())

	for _, b := range lessons {
		if b.ResourceID() != resource.ID {
			continue
		}
		cal.Children = append(cal.Children, Event(resource, b, opts).Component)
	}
	return cal
}

// Event converts one lesson.
func Event(resource domain.Resource, b domain.Booking, opts Options) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, UID(b.ID()))
	event.Props.SetDateTime(ical.PropDateTimeStamp, opts.now())
	setFloating(event, ical.PropDateTimeStart, b.Start().On(b.Date(), time.UTC))
	setFloating(event, ical.PropDateTimeEnd, b.End().On(b.Date(), time.UTC))
	event.Props.SetText(ical.PropSummary, summary(b))
	event.Props.SetText(ical.PropDescription, description(resource, b))
	event.Props.SetText(ical.PropCategories, string(opts.resolver().ResolveBooking(b)))
	event.Props.SetText(ical.PropStatus, eventStatus(b.Status()))

	marker := ical.NewProp(PropXLessonboard)
	marker.Value = "1"
	event.Props.Set(marker)
	lessonID := ical.NewProp(PropXLessonID)
	lessonID.Value = strconv.FormatInt(int64(b.ID()), 10)
	event.Props.Set(lessonID)
	return event
}

func setFloating(event *ical.Event, name string, t time.Time) {
	prop := ical.NewProp(name)
	prop.Value = t.Format(floatingLayout)
	event.Props.Set(prop)
}

func summary(b domain.Booking) string {
	if s, ok := b.Student(); ok && s.DisplayName() != "" {
		return fmt.Sprintf("%s - %s", b.Type(), s.DisplayName())
	}
	return string(b.Type())
}

func description(resource domain.Resource, b domain.Booking) string {
	lines := []string{
		"Moniteur: " + resource.DisplayName(),
		"Type: " + string(b.Type()),
		"Statut: " + string(b.Status()),
	}
	if s, ok := b.Student(); ok {
		line := "Élève: " + s.DisplayName()
		if s.Phone != "" {
			line += " (" + s.Phone + ")"
		}
		lines = append(lines, line)
	}
	if b.Comment() != "" {
		lines = append(lines, "", b.Comment())
	}
	return strings.Join(lines, "\n")
}

func eventStatus(s domain.Status) string {
	if s == domain.StatusCancelled {
		return "CANCELLED"
	}
	return "CONFIRMED"
}

// IsLessonboardEvent reports whether a VEVENT carries the lessonboard marker.
func IsLessonboardEvent(c *ical.Component) bool {
	if c == nil || c.Name != ical.CompEvent {
		return false
	}
	prop := c.Props.Get(PropXLessonboard)
	return prop != nil && prop.Value == "1"
}

// Encode writes the timetable of resource to w.
func Encode(w io.Writer, resource domain.Resource, lessons []domain.Booking, opts Options) error {
	cal := Calendar(resource, lessons, opts)
	if len(cal.Children) == 0 {
		return fmt.Errorf("instructor %d: %w", resource.ID, ErrEmptyTimetable)
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode timetable of instructor %d: %w", resource.ID, err)
	}
	return nil
}
