package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownStatus  = errors.New("unknown lesson status")
	ErrLessonNotFound = errors.New("lesson not found")
)

// ResourceID identifies an instructor.
type ResourceID int64

// BookingID identifies a lesson.
type BookingID int64

// Resource is an instructor owning a timeline of lessons.
type Resource struct {
	ID        ResourceID
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// DisplayName returns "First Last", falling back to the numeric id.
func (r Resource) DisplayName() string {
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	if name == "" {
		return fmt.Sprintf("#%d", r.ID)
	}
	return name
}

// Student is the optional learner attached to a lesson.
type Student struct {
	ID        int64
	FirstName string
	LastName  string
	Phone     string
	Category  string
}

// DisplayName returns "First Last".
func (s Student) DisplayName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Status is the lifecycle state of a lesson.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var statusAliases = map[string]Status{
	"scheduled": StatusScheduled,
	"planned":   StatusScheduled,
	"planifiee": StatusScheduled,
	"completed": StatusCompleted,
	"done":      StatusCompleted,
	"realisee":  StatusCompleted,
	"cancelled": StatusCancelled,
	"canceled":  StatusCancelled,
	"annulee":   StatusCancelled,
}

// ParseStatus accepts the canonical values and the back-office aliases
// (planifiée, réalisée, annulée, ...), ignoring case and accents.
func ParseStatus(s string) (Status, error) {
	if status, ok := statusAliases[foldTag(s)]; ok {
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// LessonType is the free-text category of a lesson.
type LessonType string

const LessonTypeDriving LessonType = "conduite"

// Booking is a lesson placed on an instructor's timeline. It is a value:
// the With* methods return modified copies and never touch the receiver.
type Booking struct {
	id         BookingID
	resourceID ResourceID
	date       Date
	timeRange  TimeRange
	lessonType LessonType
	status     Status
	student    *Student
	comment    string
}

// NewBooking creates a scheduled lesson. The range is not validated here so
// that persisted data with bad ranges can still be loaded and reported.
func NewBooking(id BookingID, resource ResourceID, date Date, r TimeRange) Booking {
	return Booking{
		id:         id,
		resourceID: resource,
		date:       date,
		timeRange:  r,
		lessonType: LessonTypeDriving,
		status:     StatusScheduled,
	}
}

func (b Booking) ID() BookingID          { return b.id }
func (b Booking) ResourceID() ResourceID { return b.resourceID }
func (b Booking) Date() Date             { return b.date }
func (b Booking) Range() TimeRange       { return b.timeRange }
func (b Booking) Start() TimeOfDay       { return b.timeRange.Start }
func (b Booking) End() TimeOfDay         { return b.timeRange.End }
func (b Booking) Type() LessonType       { return b.lessonType }
func (b Booking) Status() Status         { return b.status }
func (b Booking) Comment() string        { return b.comment }

// Student returns the attached student, if any.
func (b Booking) Student() (Student, bool) {
	if b.student == nil {
		return Student{}, false
	}
	return *b.student, true
}

func (b Booking) WithID(id BookingID) Booking {
	b.id = id
	return b
}

func (b Booking) WithResource(id ResourceID) Booking {
	b.resourceID = id
	return b
}

func (b Booking) WithDate(d Date) Booking {
	b.date = d
	return b
}

func (b Booking) WithRange(r TimeRange) Booking {
	b.timeRange = r
	return b
}

func (b Booking) WithType(t LessonType) Booking {
	b.lessonType = t
	return b
}

func (b Booking) WithStatus(s Status) Booking {
	b.status = s
	return b
}

func (b Booking) WithComment(c string) Booking {
	b.comment = c
	return b
}

func (b Booking) WithStudent(s Student) Booking {
	b.student = &s
	return b
}

func (b Booking) WithoutStudent() Booking {
	b.student = nil
	return b
}

// IsScheduled reports whether the lesson can still be cancelled or completed.
func (b Booking) IsScheduled() bool {
	return b.status == StatusScheduled
}

// Validate rejects empty or negative ranges and ranges longer than the
// visible window. Ranges partly outside the window are valid and get clipped.
func (b Booking) Validate(g Geometry) error {
	if err := b.timeRange.Validate(); err != nil {
		return fmt.Errorf("lesson %d: %w", b.id, err)
	}
	if int(b.timeRange.Duration().Minutes()) > g.WindowMinutes() {
		return fmt.Errorf("lesson %d: %w", b.id, ErrRangeOutsideWindow)
	}
	return nil
}

// Equal compares two bookings field by field.
func (b Booking) Equal(other Booking) bool {
	if (b.student == nil) != (other.student == nil) {
		return false
	}
	if b.student != nil && *b.student != *other.student {
		return false
	}
	return b.id == other.id &&
		b.resourceID == other.resourceID &&
		b.date == other.date &&
		b.timeRange == other.timeRange &&
		b.lessonType == other.lessonType &&
		b.status == other.status &&
		b.comment == other.comment
}

// BookingSet groups lessons by date then instructor, each list ordered by
// start time. It is read-only: accessors return copies.
type BookingSet struct {
	days map[Date]map[ResourceID][]Booking
	size int
}

// NewBookingSet groups the given bookings.
func NewBookingSet(bookings ...Booking) BookingSet {
	set := BookingSet{days: make(map[Date]map[ResourceID][]Booking)}
	for _, b := range bookings {
		byResource, ok := set.days[b.date]
		if !ok {
			byResource = make(map[ResourceID][]Booking)
			set.days[b.date] = byResource
		}
		byResource[b.resourceID] = append(byResource[b.resourceID], b)
		set.size++
	}
	for _, byResource := range set.days {
		for _, list := range byResource {
			sortByStart(list)
		}
	}
	return set
}

func sortByStart(list []Booking) {
	sort.SliceStable(list, func(i, j int) bool {
		si, sj := list[i].Start().Minutes(), list[j].Start().Minutes()
		if si != sj {
			return si < sj
		}
		return list[i].id < list[j].id
	})
}

// For returns the lessons of one instructor on one day, ordered by start.
func (s BookingSet) For(date Date, resource ResourceID) []Booking {
	list := s.days[date][resource]
	if len(list) == 0 {
		return nil
	}
	out := make([]Booking, len(list))
	copy(out, list)
	return out
}

// Len returns the number of lessons in the set.
func (s BookingSet) Len() int {
	return s.size
}

// Dates returns the days holding at least one lesson, in ascending order.
func (s BookingSet) Dates() []Date {
	dates := make([]Date, 0, len(s.days))
	for d := range s.days {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// All returns every lesson ordered by date, instructor and start time.
func (s BookingSet) All() []Booking {
	out := make([]Booking, 0, s.size)
	for _, d := range s.Dates() {
		byResource := s.days[d]
		ids := make([]ResourceID, 0, len(byResource))
		for id := range byResource {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			out = append(out, byResource[id]...)
		}
	}
	return out
}

// Find looks a lesson up by id.
func (s BookingSet) Find(id BookingID) (Booking, bool) {
	for _, byResource := range s.days {
		for _, list := range byResource {
			for _, b := range list {
				if b.id == id {
					return b, true
				}
			}
		}
	}
	return Booking{}, false
}
