package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is the resolved display class of a lesson.
type Category string

const (
	CategoryNormal      Category = "normal"
	CategoryCancelled   Category = "cancelled"
	CategoryCompleted   Category = "completed"
	CategoryUnavailable Category = "unavailable"
	CategoryExam        Category = "exam"
	CategoryAvailable   Category = "available"
)

// Categories lists every category in display order.
func Categories() []Category {
	return []Category{
		CategoryNormal,
		CategoryCancelled,
		CategoryCompleted,
		CategoryUnavailable,
		CategoryExam,
		CategoryAvailable,
	}
}

// TypeCatalog holds the closed lists of lesson types with a dedicated category.
type TypeCatalog struct {
	Unavailability []string `yaml:"unavailability"`
	Exams          []string `yaml:"exams"`
	Available      []string `yaml:"available"`
}

// DefaultTypeCatalog returns the school's French names and their English equivalents.
func DefaultTypeCatalog() TypeCatalog {
	return TypeCatalog{
		Unavailability: []string{
			"congé", "leave",
			"maladie", "illness",
			"formation", "training",
			"réunion", "meeting",
			"autre", "other",
		},
		Exams: []string{
			"examen code", "written-test",
			"examen conduite", "driving-test",
			"examen plateau", "maneuver-test",
		},
		Available: []string{"disponible", "available"},
	}
}

// CategoryResolver maps (type, status) to a Category. Status wins over type
// and unknown types resolve to CategoryNormal.
type CategoryResolver struct {
	types map[string]Category
}

// NewCategoryResolver builds a resolver from a catalog.
func NewCategoryResolver(catalog TypeCatalog) *CategoryResolver {
	r := &CategoryResolver{types: make(map[string]Category)}
	add := func(names []string, c Category) {
		for _, name := range names {
			if key := foldTag(name); key != "" {
				r.types[key] = c
			}
		}
	}
	add(catalog.Unavailability, CategoryUnavailable)
	add(catalog.Exams, CategoryExam)
	add(catalog.Available, CategoryAvailable)
	return r
}

var defaultResolver = NewCategoryResolver(DefaultTypeCatalog())

// Resolve returns the category for a lesson type and status.
func (r *CategoryResolver) Resolve(lessonType LessonType, status Status) Category {
	switch status {
	case StatusCancelled:
		return CategoryCancelled
	case StatusCompleted:
		return CategoryCompleted
	}
	if c, ok := r.types[foldTag(string(lessonType))]; ok {
		return c
	}
	return CategoryNormal
}

// ResolveBooking is a shorthand for Resolve(b.Type(), b.Status()).
func (r *CategoryResolver) ResolveBooking(b Booking) Category {
	return r.Resolve(b.Type(), b.Status())
}

// ResolveCategory resolves with the default catalog.
func ResolveCategory(lessonType LessonType, status Status) Category {
	return defaultResolver.Resolve(lessonType, status)
}

// foldTag lowercases, strips accents and collapses whitespace.
func foldTag(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
