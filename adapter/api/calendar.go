package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/queries"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
)

type hourMarkDTO struct {
	Hour   int     `json:"hour"`
	Label  string  `json:"label"`
	Offset float64 `json:"offset"`
}

type headerDTO struct {
	InstructorID int64             `json:"instructor_id"`
	Name         string            `json:"name"`
	Color        domain.ColorToken `json:"color"`
}

type itemDTO struct {
	Lesson        queries.LessonDTO    `json:"lesson"`
	Category      domain.Category      `json:"category"`
	Style         domain.CategoryStyle `json:"style"`
	Color         domain.ColorToken    `json:"color"`
	Offset        float64              `json:"offset"`
	Length        float64              `json:"length"`
	ClippedTop    bool                 `json:"clipped_top,omitempty"`
	ClippedBottom bool                 `json:"clipped_bottom,omitempty"`
}

type cellDTO struct {
	Time     domain.TimeOfDay `json:"time"`
	Occupied bool             `json:"occupied"`
}

type columnDTO struct {
	InstructorID int64     `json:"instructor_id"`
	Items        []itemDTO `json:"items"`
	Cells        []cellDTO `json:"cells,omitempty"`
}

type dayDTO struct {
	Date           domain.Date `json:"date"`
	SubColumnWidth float64     `json:"sub_column_width,omitempty"`
	Columns        []columnDTO `json:"columns"`
}

type badgeDTO struct {
	InstructorID int64             `json:"instructor_id"`
	Color        domain.ColorToken `json:"color"`
	Count        int               `json:"count"`
	ShowCount    bool              `json:"show_count"`
	Lesson       itemDTO           `json:"lesson"`
}

type monthDayDTO struct {
	Date        domain.Date `json:"date"`
	InRange     bool        `json:"in_range"`
	Muted       bool        `json:"muted"`
	Interactive bool        `json:"interactive"`
	Badges      []badgeDTO  `json:"badges"`
}

type rejectionDTO struct {
	LessonID int64  `json:"lesson_id"`
	Error    string `json:"error"`
}

// viewResponse is the JSON form of a rendered projection. Day and week
// views fill Days; month views fill Weekdays and Weeks.
type viewResponse struct {
	Granularity projection.Granularity `json:"granularity"`
	Start       domain.Date            `json:"start"`
	End         domain.Date            `json:"end"`
	Height      float64                `json:"height,omitempty"`
	Ruler       []hourMarkDTO          `json:"ruler,omitempty"`
	Instructors []headerDTO            `json:"instructors"`
	Days        []dayDTO               `json:"days,omitempty"`
	Weekdays    []string               `json:"weekdays,omitempty"`
	Weeks       [][]monthDayDTO        `json:"weeks,omitempty"`
	Rejected    []rejectionDTO         `json:"rejected,omitempty"`
}

func toViewResponse(view projection.View, withCells bool) viewResponse {
	out := viewResponse{
		Granularity: view.Granularity,
		Start:       view.Window.Start,
		End:         view.Window.End,
	}
	for _, r := range view.Rejected() {
		out.Rejected = append(out.Rejected, rejectionDTO{LessonID: int64(r.Booking.ID()), Error: r.Err.Error()})
	}

	switch {
	case view.Day != nil:
		out.Height = view.Day.Height
		out.Ruler = toRuler(view.Day.Ruler)
		out.Instructors = toHeaders(view.Day.Resources)
		out.Days = []dayDTO{{Date: view.Day.Date, Columns: toColumns(view.Day.Columns, withCells)}}
	case view.Week != nil:
		out.Height = view.Week.Height
		out.Ruler = toRuler(view.Week.Ruler)
		out.Instructors = toHeaders(view.Week.Resources)
		for _, d := range view.Week.Days {
			out.Days = append(out.Days, dayDTO{
				Date:           d.Date,
				SubColumnWidth: d.SubColumnWidth,
				Columns:        toColumns(d.SubColumns, withCells),
			})
		}
	case view.Month != nil:
		out.Instructors = toHeaders(view.Month.Resources)
		for _, wd := range view.Month.Weekdays {
			out.Weekdays = append(out.Weekdays, wd.String())
		}
		for _, week := range view.Month.Weeks {
			row := make([]monthDayDTO, 0, len(week.Days))
			for _, d := range week.Days {
				day := monthDayDTO{
					Date:        d.Date,
					InRange:     d.InRange,
					Muted:       d.Muted,
					Interactive: d.Interactive,
					Badges:      []badgeDTO{},
				}
				for _, b := range d.Badges {
					day.Badges = append(day.Badges, badgeDTO{
						InstructorID: int64(b.Header.Resource.ID),
						Color:        b.Header.Color,
						Count:        b.Count,
						ShowCount:    b.ShowCount,
						Lesson:       toItem(b.Representative),
					})
				}
				row = append(row, day)
			}
			out.Weeks = append(out.Weeks, row)
		}
	}
	if out.Instructors == nil {
		out.Instructors = []headerDTO{}
	}
	return out
}

func toRuler(marks []domain.HourMark) []hourMarkDTO {
	out := make([]hourMarkDTO, len(marks))
	for i, m := range marks {
		out[i] = hourMarkDTO{Hour: m.Hour, Label: m.Label, Offset: m.Offset}
	}
	return out
}

func toHeaders(headers []projection.ResourceHeader) []headerDTO {
	out := make([]headerDTO, len(headers))
	for i, h := range headers {
		out[i] = headerDTO{
			InstructorID: int64(h.Resource.ID),
			Name:         h.Resource.DisplayName(),
			Color:        h.Color,
		}
	}
	return out
}

func toColumns(cols []projection.ResourceColumn, withCells bool) []columnDTO {
	out := make([]columnDTO, len(cols))
	for i, col := range cols {
		dto := columnDTO{InstructorID: int64(col.Header.Resource.ID), Items: []itemDTO{}}
		for _, item := range col.Items {
			dto.Items = append(dto.Items, toItem(item))
		}
		if withCells {
			for _, c := range col.Cells {
				dto.Cells = append(dto.Cells, cellDTO{Time: c.Time, Occupied: c.Occupied})
			}
		}
		out[i] = dto
	}
	return out
}

func toItem(item projection.Item) itemDTO {
	return itemDTO{
		Lesson:        queries.ToLessonDTO(item.Booking),
		Category:      item.Category,
		Style:         item.Style,
		Color:         item.Color,
		Offset:        item.Placement.Offset,
		Length:        item.Placement.Length,
		ClippedTop:    item.Placement.ClippedTop,
		ClippedBottom: item.Placement.ClippedBottom,
	}
}

// windowRequest is the query or body form of a visible window.
type windowRequest struct {
	Granularity   string  `json:"granularity" validate:"omitempty,oneof=day week month"`
	Date          string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	InstructorIDs []int64 `json:"instructor_ids" validate:"omitempty,dive,gt=0"`
	IncludeSunday bool    `json:"include_sunday"`
}

// window resolves the request against layout. The anchor defaults to today
// and the granularity to a week.
func (req windowRequest) window(layout projection.Layout, today domain.Date) (projection.Window, error) {
	g := projection.GranularityWeek
	if req.Granularity != "" {
		parsed, err := projection.ParseGranularity(req.Granularity)
		if err != nil {
			return projection.Window{}, err
		}
		g = parsed
	}
	anchor := today
	if req.Date != "" {
		parsed, err := domain.ParseDate(req.Date)
		if err != nil {
			return projection.Window{}, err
		}
		anchor = parsed
	}
	w := projection.WindowFor(g, anchor, layout.WeekStart)
	w.IncludeSunday = req.IncludeSunday
	for _, id := range req.InstructorIDs {
		w.VisibleResourceIDs = append(w.VisibleResourceIDs, domain.ResourceID(id))
	}
	return w, nil
}

func windowRequestFromQuery(r *http.Request) (windowRequest, error) {
	q := r.URL.Query()
	req := windowRequest{
		Granularity: q.Get("granularity"),
		Date:        q.Get("date"),
	}
	if raw := q.Get("include_sunday"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return windowRequest{}, fmt.Errorf("%w: include_sunday %q", projection.ErrInvalidWindow, raw)
		}
		req.IncludeSunday = b
	}
	ids, err := resourceIDs(r)
	if err != nil {
		return windowRequest{}, err
	}
	for _, id := range ids {
		req.InstructorIDs = append(req.InstructorIDs, int64(id))
	}
	return req, nil
}

// getCalendar handles GET /api/v1/calendar?granularity=&date=&instructor_id=.
func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	req, err := windowRequestFromQuery(r)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	window, err := req.window(s.deps.Layout, domain.DateOf(time.Now()))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	calendar, err := s.deps.Calendar.Handle(r.Context(), queries.GetCalendarQuery{Window: window, Layout: s.deps.Layout})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toViewResponse(calendar.View, r.URL.Query().Get("cells") == "true"))
}
