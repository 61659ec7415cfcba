package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidRange     = errors.New("end time must be after start time")
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time component.
// It is comparable and can be used as a map key.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate creates a Date, normalising overflowing days and months.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Weekday returns the day of the week.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) IsZero() bool           { return d == Date{} }

// DaysUntil returns the number of days from d to other.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

func (d Date) String() string {
	return d.Time().Format(dateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TimeOfDay is a wall-clock time with minute precision.
// 24:00 is accepted as the end-of-day marker.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// NewTimeOfDay validates and creates a TimeOfDay.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return t, nil
}

// MustTimeOfDay is like ParseTimeOfDay but panics on malformed input.
// Intended for constants and tests.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTimeOfDay parses "HH:MM" (also "H:MM" and "HH:MM:SS" with zero seconds).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	hour, ok := clockField(parts[0])
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	minute, ok := clockField(parts[1])
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	if len(parts) == 3 && parts[2] != "00" {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return NewTimeOfDay(hour, minute)
}

// clockField parses one or two ASCII digits. Signs and spaces are refused.
func clockField(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// TimeOfDayFromMinutes converts minutes since midnight into a TimeOfDay.
func TimeOfDayFromMinutes(minutes int) TimeOfDay {
	return TimeOfDay{Hour: minutes / 60, Minute: minutes % 60}
}

// Valid reports whether the time lies within 00:00..24:00.
func (t TimeOfDay) Valid() bool {
	if t.Hour == 24 {
		return t.Minute == 0
	}
	return t.Hour >= 0 && t.Hour < 24 && t.Minute >= 0 && t.Minute < 60
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t.Minutes() < other.Minutes() }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t.Minutes() > other.Minutes() }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeOfDay(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// On combines the time with a date into a wall-clock time.Time in loc.
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc).Add(time.Duration(t.Minutes()) * time.Minute)
}

// TimeRange is a half-open wall-clock interval [Start, End).
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NewTimeRange creates a range, rejecting end <= start.
func NewTimeRange(start, end TimeOfDay) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// Validate checks both bounds are valid clock times and end is after start.
func (r TimeRange) Validate() error {
	if !r.Start.Valid() {
		return fmt.Errorf("%w: start %s", ErrInvalidTimeOfDay, r.Start)
	}
	if !r.End.Valid() {
		return fmt.Errorf("%w: end %s", ErrInvalidTimeOfDay, r.End)
	}
	if r.End.Minutes() <= r.Start.Minutes() {
		return fmt.Errorf("%w: %s-%s", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Duration returns the length of the range.
func (r TimeRange) Duration() time.Duration {
	return time.Duration(r.End.Minutes()-r.Start.Minutes()) * time.Minute
}

// Overlaps uses half-open semantics: touching ranges do not overlap.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Minutes() < other.End.Minutes() && r.End.Minutes() > other.Start.Minutes()
}

// Contains reports whether t lies in [Start, End).
func (r TimeRange) Contains(t TimeOfDay) bool {
	m := t.Minutes()
	return m >= r.Start.Minutes() && m < r.End.Minutes()
}

func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
