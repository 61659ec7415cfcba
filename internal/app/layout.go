package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
	"github.com/felixgeelhaar/lessonboard/pkg/config"
)

// ErrInvalidLayout is returned for layout files naming unknown days or categories.
var ErrInvalidLayout = errors.New("invalid board layout")

// BoardLayout is the resolved board layout plus the window defaults read
// from the layout file.
type BoardLayout struct {
	projection.Layout
	IncludeSunday bool
}

// LayoutFromFile converts a normalized layout file. An empty palette or type
// list keeps the built-in one.
func LayoutFromFile(f config.LayoutFile) (BoardLayout, error) {
	layout := projection.DefaultLayout()

	layout.Geometry = domain.Geometry{
		DayStartHour:    f.DayStartHour,
		DayEndHour:      f.DayEndHour,
		PixelsPerMinute: f.PixelsPerHour / 60,
	}
	layout.SlotGranularity = time.Duration(f.SlotMinutes) * time.Minute

	weekStart, err := parseWeekday(f.WeekStart)
	if err != nil {
		return BoardLayout{}, err
	}
	layout.WeekStart = weekStart

	if len(f.Palette) > 0 {
		tokens := make([]domain.ColorToken, len(f.Palette))
		for i, p := range f.Palette {
			tokens[i] = domain.ColorToken(p)
		}
		palette, err := domain.NewResourcePalette(tokens...)
		if err != nil {
			return BoardLayout{}, err
		}
		layout.Palette = palette
	}

	if len(f.Types.Unavailability)+len(f.Types.Exams)+len(f.Types.Available) > 0 {
		layout.Resolver = domain.NewCategoryResolver(domain.TypeCatalog{
			Unavailability: f.Types.Unavailability,
			Exams:          f.Types.Exams,
			Available:      f.Types.Available,
		})
	}

	if len(f.Styles) > 0 {
		overrides := make(domain.StyleSheet, len(f.Styles))
		for name, o := range f.Styles {
			c := domain.Category(name)
			if !knownCategory(c) {
				return BoardLayout{}, fmt.Errorf("%w: unknown category %q in styles", ErrInvalidLayout, name)
			}
			overrides[c] = mergeStyle(layout.Styles.Style(c), o)
		}
		layout.Styles = layout.Styles.Merge(overrides)
	}

	if err := layout.Validate(); err != nil {
		return BoardLayout{}, err
	}
	return BoardLayout{Layout: layout, IncludeSunday: f.IncludeSunday}, nil
}

// LoadBoardLayout reads and converts the layout file at path.
func LoadBoardLayout(path string) (BoardLayout, error) {
	f, err := config.LoadLayout(path)
	if err != nil {
		return BoardLayout{}, err
	}
	return LayoutFromFile(*f)
}

func mergeStyle(base domain.CategoryStyle, o config.StyleOverride) domain.CategoryStyle {
	if o.Background != "" {
		base.Background = domain.ColorToken(o.Background)
	}
	if o.Border != "" {
		base.Border = domain.ColorToken(o.Border)
	}
	if o.BorderStyle != "" {
		base.BorderStyle = domain.BorderStyle(strings.ToLower(o.BorderStyle))
	}
	if o.Text != "" {
		base.Text = domain.ColorToken(o.Text)
	}
	if o.Muted {
		base.Muted = true
	}
	return base
}

func knownCategory(c domain.Category) bool {
	for _, known := range domain.Categories() {
		if c == known {
			return true
		}
	}
	return false
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: week start %q", ErrInvalidLayout, name)
}
