package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/lessonboard/internal/shared/infrastructure/security"
)

// LayoutFile is the YAML board layout. Every field is optional; missing
// values fall back to DefaultLayoutFile.
type LayoutFile struct {
	DayStartHour  int     `yaml:"day_start_hour"`
	DayEndHour    int     `yaml:"day_end_hour"`
	PixelsPerHour float64 `yaml:"pixels_per_hour"`
	SlotMinutes   int     `yaml:"slot_minutes"`
	WeekStart     string  `yaml:"week_start"`
	IncludeSunday bool    `yaml:"include_sunday"`

	// Palette lists the instructor color tokens, indexed by id modulo length.
	Palette []string `yaml:"palette"`

	// Types maps lesson type names onto categories.
	Types TypeTags `yaml:"types"`

	// Styles overrides the style of individual categories.
	Styles map[string]StyleOverride `yaml:"styles"`
}

// TypeTags lists the lesson types of each special category.
type TypeTags struct {
	Unavailability []string `yaml:"unavailability"`
	Exams          []string `yaml:"exams"`
	Available      []string `yaml:"available"`
}

// StyleOverride replaces the non-empty parts of a category style.
type StyleOverride struct {
	Background  string `yaml:"background"`
	Border      string `yaml:"border"`
	BorderStyle string `yaml:"border_style"`
	Text        string `yaml:"text"`
	Muted       bool   `yaml:"muted"`
}

// DefaultLayoutFile shows 08:00 to 20:00 in quarter hours, Monday first.
func DefaultLayoutFile() LayoutFile {
	return LayoutFile{
		DayStartHour:  8,
		DayEndHour:    20,
		PixelsPerHour: 50,
		SlotMinutes:   15,
		WeekStart:     "monday",
	}
}

// Normalize fills zero values with defaults and folds names to lower case.
func (l *LayoutFile) Normalize() {
	def := DefaultLayoutFile()
	if l.DayStartHour == 0 && l.DayEndHour == 0 {
		l.DayStartHour = def.DayStartHour
		l.DayEndHour = def.DayEndHour
	}
	if l.PixelsPerHour <= 0 {
		l.PixelsPerHour = def.PixelsPerHour
	}
	if l.SlotMinutes <= 0 {
		l.SlotMinutes = def.SlotMinutes
	}
	l.WeekStart = strings.ToLower(strings.TrimSpace(l.WeekStart))
	if l.WeekStart == "" {
		l.WeekStart = def.WeekStart
	}
	if len(l.Styles) > 0 {
		folded := make(map[string]StyleOverride, len(l.Styles))
		for name, style := range l.Styles {
			folded[strings.ToLower(strings.TrimSpace(name))] = style
		}
		l.Styles = folded
	}
}

// LoadLayout reads a YAML layout file. An empty path returns the defaults.
func LoadLayout(path string) (*LayoutFile, error) {
	layout := DefaultLayoutFile()
	if path == "" {
		return &layout, nil
	}
	data, err := security.SafeReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	layout = LayoutFile{}
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout file: %w", err)
	}
	layout.Normalize()
	return &layout, nil
}
