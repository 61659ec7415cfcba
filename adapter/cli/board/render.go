package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
)

// Options tunes the text rendering.
type Options struct {
	// Cells draws the occupancy strip of each day column.
	Cells bool
}

const monthCellWidth = 16

// Render writes the view selected by its granularity.
func Render(w io.Writer, view projection.View, opts Options) error {
	var err error
	switch {
	case view.Day != nil:
		err = renderDay(w, view.Day, opts)
	case view.Week != nil:
		err = renderWeek(w, view.Week)
	case view.Month != nil:
		err = renderMonth(w, view.Month)
	default:
		return fmt.Errorf("%w: %q", projection.ErrUnknownGranularity, view.Granularity)
	}
	if err != nil {
		return err
	}
	return renderRejected(w, view.Rejected())
}

func renderDay(w io.Writer, v *projection.DayView, opts Options) error {
	p := &printer{w: w}
	p.printf("Board for %s\n", v.Date.Time().Format("Monday, January 2, 2006"))
	p.println(strings.Repeat("=", 60))
	if len(v.Columns) == 0 {
		p.println("\n  No instructors to show.")
		return p.err
	}
	for _, col := range v.Columns {
		p.printf("\n%s (%s)\n", col.Header.Resource.DisplayName(), col.Header.Color)
		if len(col.Items) == 0 {
			p.println("  No lessons.")
		}
		for _, it := range col.Items {
			p.println("  " + itemLine(it))
		}
		if opts.Cells {
			p.println("  " + cellStrip(col.Cells))
		}
	}
	return p.err
}

func renderWeek(w io.Writer, v *projection.WeekView) error {
	p := &printer{w: w}
	p.printf("Week of %s to %s\n", v.Start.Time().Format("January 2"), v.End.Time().Format("January 2, 2006"))
	p.println(strings.Repeat("=", 60))
	for _, day := range v.Days {
		p.printf("\n%s\n", day.Date.Time().Format("Mon 02 Jan"))
		empty := true
		for _, col := range day.SubColumns {
			if len(col.Items) == 0 {
				continue
			}
			empty = false
			p.printf("  %s\n", col.Header.Resource.DisplayName())
			for _, it := range col.Items {
				p.println("    " + itemLine(it))
			}
		}
		if empty {
			p.println("  No lessons.")
		}
	}
	return p.err
}

func renderMonth(w io.Writer, v *projection.MonthView) error {
	p := &printer{w: w}
	p.printf("%s\n", v.Start.Time().Format("January 2006"))
	p.println(strings.Repeat("=", 60))

	var header strings.Builder
	for _, wd := range v.Weekdays {
		fmt.Fprintf(&header, "%-*s", monthCellWidth, wd.String()[:3])
	}
	p.println(strings.TrimRight(header.String(), " "))
	for _, week := range v.Weeks {
		var line strings.Builder
		for _, day := range week.Days {
			fmt.Fprintf(&line, "%-*s", monthCellWidth, monthCell(day))
		}
		p.println(strings.TrimRight(line.String(), " "))
	}

	if len(v.Resources) > 0 {
		p.println("")
		for _, h := range v.Resources {
			p.printf("  %-4s %s (%s)\n", initials(h.Resource), h.Resource.DisplayName(), h.Color)
		}
	}
	return p.err
}

func renderRejected(w io.Writer, rejected []projection.Rejection) error {
	if len(rejected) == 0 {
		return nil
	}
	p := &printer{w: w}
	p.printf("\n%d lessons could not be drawn:\n", len(rejected))
	for _, r := range rejected {
		p.printf("  ! lesson %d on %s: %v\n", r.Booking.ID(), r.Booking.Date(), r.Err)
	}
	return p.err
}

// itemLine is "09:00-10:00  conduite  Léa Moreau  [normal]".
func itemLine(it projection.Item) string {
	b := it.Booking
	parts := []string{b.Range().String(), fmt.Sprintf("%-16s", string(b.Type()))}
	if s, ok := b.Student(); ok {
		name := s.DisplayName()
		if name == "" {
			name = fmt.Sprintf("#%d", s.ID)
		}
		parts = append(parts, fmt.Sprintf("%-16s", name))
	} else {
		parts = append(parts, strings.Repeat(" ", 16))
	}
	marker := "[" + string(it.Category) + "]"
	if it.Placement.ClippedTop {
		marker += " ^"
	}
	if it.Placement.ClippedBottom {
		marker += " v"
	}
	parts = append(parts, marker)
	return fmt.Sprintf("#%-4d %s", b.ID(), strings.Join(parts, "  "))
}

// cellStrip draws one character per cell, '#' occupied and '.' free, with a
// bar at every full hour.
func cellStrip(cells []domain.CellState) string {
	var sb strings.Builder
	for _, c := range cells {
		if c.Time.Minute == 0 {
			sb.WriteByte('|')
		}
		if c.Occupied {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
	}
	sb.WriteByte('|')
	return sb.String()
}

// monthCell is the day number followed by instructor badges. Padding days
// are bracketed and carry no badges.
func monthCell(day projection.MonthDay) string {
	if !day.InRange {
		return fmt.Sprintf("(%d)", day.Date.Day)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%2d", day.Date.Day)
	for _, b := range day.Badges {
		sb.WriteByte(' ')
		sb.WriteString(initials(b.Header.Resource))
		if b.ShowCount {
			fmt.Fprintf(&sb, "%d", b.Count)
		}
	}
	return sb.String()
}

func initials(r domain.Resource) string {
	var out []rune
	for _, name := range []string{r.FirstName, r.LastName} {
		for _, c := range strings.TrimSpace(name) {
			out = append(out, c)
			break
		}
	}
	if len(out) == 0 {
		return fmt.Sprintf("#%d", r.ID)
	}
	return strings.ToUpper(string(out))
}

// printer remembers the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) println(s string) {
	p.printf("%s\n", s)
}
