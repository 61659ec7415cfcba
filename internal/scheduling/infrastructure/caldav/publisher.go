// Package caldav publishes instructor timetables to CalDAV calendars
// (Nextcloud, Fastmail, iCloud, Radicale, ...).
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/infrastructure/ics"
)

// InstructorPlaceholder is replaced by the instructor id in calendar paths.
const InstructorPlaceholder = "{instructor_id}"

// Publisher writes one calendar object per lesson.
type Publisher struct {
	baseURL       string
	username      string
	password      string
	calendarPath  string
	httpClient    *http.Client
	resolver      *domain.CategoryResolver
	logger        *slog.Logger
	deleteMissing bool
}

var _ domain.TimetablePublisher = (*Publisher)(nil)

// NewPublisher creates a CalDAV publisher.
func NewPublisher(baseURL, username, password string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// WithCalendarPath sets the calendar collection. The path may contain
// InstructorPlaceholder to give each instructor a calendar. An empty path
// uses the first calendar of the account.
func (p *Publisher) WithCalendarPath(path string) *Publisher {
	p.calendarPath = path
	return p
}

// WithDeleteMissing removes lessonboard events that are no longer published.
func (p *Publisher) WithDeleteMissing(enabled bool) *Publisher {
	p.deleteMissing = enabled
	return p
}

// WithResolver sets the category resolver used for event categories.
func (p *Publisher) WithResolver(r *domain.CategoryResolver) *Publisher {
	p.resolver = r
	return p
}

// WithHTTPClient replaces the HTTP client.
func (p *Publisher) WithHTTPClient(c *http.Client) *Publisher {
	p.httpClient = c
	return p
}

// Publish upserts the lessons of resource into its calendar.
func (p *Publisher) Publish(ctx context.Context, resource domain.Resource, lessons []domain.Booking) (domain.PublishResult, error) {
	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(p.httpClient, p.username, p.password), p.baseURL)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("failed to create caldav client: %w", err)
	}
	calPath, err := p.findCalendarPath(ctx, client, resource)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("failed to find calendar: %w", err)
	}

	var result domain.PublishResult
	keep := make(map[string]struct{}, len(lessons))
	opts := ics.Options{Resolver: p.resolver}
	for _, b := range lessons {
		if b.ResourceID() != resource.ID {
			continue
		}
		objectPath := calPath + ics.UID(b.ID()) + ".ics"
		keep[objectPath] = struct{}{}

		cal := ical.NewCalendar()
		cal.Props.SetText(ical.PropVersion, "2.0")
		cal.Props.SetText(ical.PropProductID, ics.ProductID)
		cal.Children = append(cal.Children, ics.Event(resource, b, opts).Component)

		_, getErr := client.GetCalendarObject(ctx, objectPath)
		if _, err := client.PutCalendarObject(ctx, objectPath, cal); err != nil {
			p.logger.WarnContext(ctx, "caldav publish failed", "object_path", objectPath, "error", err)
			result.Failed++
			continue
		}
		if getErr == nil {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if p.deleteMissing {
		deleted, err := p.deleteMissingEvents(ctx, client, calPath, keep)
		if err != nil {
			p.logger.WarnContext(ctx, "caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	p.logger.InfoContext(ctx, "timetable published",
		"instructor_id", resource.ID,
		"calendar", calPath,
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
	return result, nil
}

func (p *Publisher) findCalendarPath(ctx context.Context, client *caldav.Client, resource domain.Resource) (string, error) {
	if p.calendarPath != "" {
		path := strings.ReplaceAll(p.calendarPath, InstructorPlaceholder, strconv.FormatInt(int64(resource.ID), 10))
		if !strings.HasSuffix(path, "/") {
			path += "/"
		}
		return path, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}
	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}
	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}
	return cals[0].Path, nil
}

func (p *Publisher) deleteMissingEvents(ctx context.Context, client *caldav.Client, calPath string, keep map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{{
				Name:  "VEVENT",
				Props: []string{"UID", ics.PropXLessonboard},
			}},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT"}},
		},
	}
	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if !isLessonboardObject(&obj) {
			continue
		}
		if _, ok := keep[obj.Path]; ok {
			continue
		}
		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			p.logger.WarnContext(ctx, "failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}
	return deleted, nil
}

func isLessonboardObject(obj *caldav.CalendarObject) bool {
	if obj == nil || obj.Data == nil {
		return false
	}
	for _, child := range obj.Data.Children {
		if ics.IsLessonboardEvent(child) {
			return true
		}
	}
	return false
}
