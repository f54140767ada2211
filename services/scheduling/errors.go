package scheduling

import (
	"errors"
	"fmt"
)

// ErrorKind classifies scheduling failures. Callers map kinds to transport status codes.
type ErrorKind string

const (
	InvalidInterval         ErrorKind = "InvalidInterval"
	PractitionerUnavailable ErrorKind = "PractitionerUnavailable"
	SchedulingConflict      ErrorKind = "SchedulingConflict"
	IllegalTransition       ErrorKind = "IllegalTransition"
)

// Error is a typed scheduling failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrSchedulingConflict) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidInterval         = &Error{Kind: InvalidInterval}
	ErrPractitionerUnavailable = &Error{Kind: PractitionerUnavailable}
	ErrSchedulingConflict      = &Error{Kind: SchedulingConflict}
	ErrIllegalTransition       = &Error{Kind: IllegalTransition}
)

// NewError builds a scheduling error of the given kind.
func NewError(kind ErrorKind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the kind of a scheduling error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}
