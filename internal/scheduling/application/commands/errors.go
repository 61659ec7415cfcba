package commands

import (
	"errors"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/services"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/projection"
)

var (
	// ErrLifecycleFailed wraps every failure reported by the back office.
	ErrLifecycleFailed = errors.New("back office rejected the lesson change")
	ErrUnexpectedEdit  = errors.New("field changes require the edit action")
)

// Error kinds used as the error_kind log attribute and by the HTTP surface.
const (
	KindValidation  = "validation"
	KindNotFound    = "not_found"
	KindConflict    = "conflict"
	KindTransition  = "transition"
	KindUnavailable = "unavailable"
	KindRemote      = "remote"
	KindUnexpected  = "unexpected"
)

// ErrorKind maps sentinel errors to a stable label. Causes wrapped inside
// ErrLifecycleFailed win over the generic remote label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, domain.ErrBackOfficeUnavailable):
		return KindUnavailable
	case errors.Is(err, domain.ErrLessonConflict):
		return KindConflict
	case errors.Is(err, domain.ErrInvalidTransition):
		return KindTransition
	case errors.Is(err, domain.ErrLessonNotFound),
		errors.Is(err, domain.ErrInstructorNotFound),
		errors.Is(err, domain.ErrStudentNotFound),
		errors.Is(err, services.ErrBookingNotFound),
		errors.Is(err, services.ErrBadgeNotFound):
		return KindNotFound
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidTimeOfDay),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrRangeOutsideWindow),
		errors.Is(err, domain.ErrInvalidGeometry),
		errors.Is(err, domain.ErrInvalidGranularity),
		errors.Is(err, domain.ErrUnknownAction),
		errors.Is(err, domain.ErrUnknownStatus),
		errors.Is(err, domain.ErrMissingInstructor),
		errors.Is(err, domain.ErrPaletteTooSmall),
		errors.Is(err, projection.ErrInvalidWindow),
		errors.Is(err, projection.ErrUnknownGranularity),
		errors.Is(err, ErrUnexpectedEdit):
		return KindValidation
	case errors.Is(err, ErrLifecycleFailed):
		return KindRemote
	}
	return KindUnexpected
}
