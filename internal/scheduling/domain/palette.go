package domain

import (
	"errors"
	"fmt"
)

var ErrPaletteTooSmall = errors.New("resource palette needs at least 10 colors")

// MinPaletteSize keeps color collisions rare for a realistic staff roster.
const MinPaletteSize = 10

// ColorToken is a CSS color value.
type ColorToken string

// BorderStyle is the outline drawn around a lesson.
type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

// CategoryStyle is how a lesson of one category is drawn.
type CategoryStyle struct {
	Background  ColorToken  `yaml:"background" json:"background"`
	Border      ColorToken  `yaml:"border" json:"border"`
	BorderStyle BorderStyle `yaml:"border_style" json:"border_style"`
	Text        ColorToken  `yaml:"text" json:"text"`
	Muted       bool        `yaml:"muted" json:"muted"`
}

// StyleSheet maps categories to styles.
type StyleSheet map[Category]CategoryStyle

// DefaultStyleSheet is the canonical palette shared by every view.
func DefaultStyleSheet() StyleSheet {
	return StyleSheet{
		CategoryNormal:      {Background: "#e3f2fd", Border: "#1e88e5", BorderStyle: BorderSolid, Text: "#0d47a1"},
		CategoryCancelled:   {Background: "#f5f5f5", Border: "#9e9e9e", BorderStyle: BorderDashed, Text: "#757575", Muted: true},
		CategoryCompleted:   {Background: "#e8f5e9", Border: "#43a047", BorderStyle: BorderSolid, Text: "#1b5e20"},
		CategoryUnavailable: {Background: "#fbe9e7", Border: "#e64a19", BorderStyle: BorderDotted, Text: "#bf360c"},
		CategoryExam:        {Background: "#fff8e1", Border: "#ffb300", BorderStyle: BorderSolid, Text: "#e65100"},
		CategoryAvailable:   {Background: "#f1f8e9", Border: "#7cb342", BorderStyle: BorderDashed, Text: "#33691e"},
	}
}

// Style returns the style for c, falling back to the normal style.
func (s StyleSheet) Style(c Category) CategoryStyle {
	if style, ok := s[c]; ok {
		return style
	}
	if style, ok := s[CategoryNormal]; ok {
		return style
	}
	return DefaultStyleSheet()[CategoryNormal]
}

// Merge returns a copy of s with the entries of overrides applied.
func (s StyleSheet) Merge(overrides StyleSheet) StyleSheet {
	out := make(StyleSheet, len(s)+len(overrides))
	for c, style := range s {
		out[c] = style
	}
	for c, style := range overrides {
		out[c] = style
	}
	return out
}

// ResourcePalette assigns instructor colors by id modulo a fixed palette,
// so adding or removing another instructor never changes a color.
type ResourcePalette struct {
	tokens []ColorToken
}

// NewResourcePalette validates and copies the tokens.
func NewResourcePalette(tokens ...ColorToken) (ResourcePalette, error) {
	if len(tokens) < MinPaletteSize {
		return ResourcePalette{}, fmt.Errorf("%w: got %d", ErrPaletteTooSmall, len(tokens))
	}
	out := make([]ColorToken, len(tokens))
	copy(out, tokens)
	return ResourcePalette{tokens: out}, nil
}

// DefaultResourcePalette returns the twelve-color instructor palette.
func DefaultResourcePalette() ResourcePalette {
	return ResourcePalette{tokens: []ColorToken{
		"#1e88e5", "#e53935", "#43a047", "#fb8c00",
		"#8e24aa", "#00acc1", "#6d4c41", "#d81b60",
		"#3949ab", "#7cb342", "#f4511e", "#546e7a",
	}}
}

// Len returns the number of tokens.
func (p ResourcePalette) Len() int {
	return len(p.tokens)
}

// Tokens returns a copy of the palette.
func (p ResourcePalette) Tokens() []ColorToken {
	out := make([]ColorToken, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// ColorFor returns palette[id mod len]. Negative ids stay in range.
func (p ResourcePalette) ColorFor(id ResourceID) ColorToken {
	if len(p.tokens) == 0 {
		p = DefaultResourcePalette()
	}
	n := int64(len(p.tokens))
	i := int64(id) % n
	if i < 0 {
		i += n
	}
	return p.tokens[i]
}

var defaultPalette = DefaultResourcePalette()

// ColorFor uses the default palette.
func ColorFor(id ResourceID) ColorToken {
	return defaultPalette.ColorFor(id)
}
