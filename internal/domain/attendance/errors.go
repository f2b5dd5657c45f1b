package attendance

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

type Code string

const (
	CodeInvalidInput               Code = "INVALID_INPUT"
	CodeMissingLocation            Code = "MISSING_LOCATION"
	CodeConfigError                Code = "CONFIG_ERROR"
	CodeNotWorkingDay              Code = "NOT_WORKING_DAY"
	CodeTooEarly                   Code = "TOO_EARLY"
	CodeTooLate                    Code = "TOO_LATE"
	CodeWithinForbiddenCloseWindow Code = "WITHIN_FORBIDDEN_CLOSE_WINDOW"
	CodeWithinForbiddenOpenWindow  Code = "WITHIN_FORBIDDEN_OPEN_WINDOW"
	CodeOutOfRange                 Code = "OUT_OF_RANGE"
	CodeAlreadyRegistered          Code = "ALREADY_REGISTERED"
	CodeNoOpenCheckIn              Code = "NO_OPEN_CHECK_IN"
	CodePersistence                Code = "PERSISTENCE_ERROR"
)

// Error is a refused check-in or check-out. Details carries the threshold and
// the actual value so the client can explain the refusal.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	var inner *Error
	if e.Err != nil && !errors.As(e.Err, &inner) {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// ErrDuplicateDay is returned by storage when the (user, date) row already exists.
var ErrDuplicateDay = errors.New("attendance already exists for user and date")

// Sentinels for errors.Is. Do not return these directly; use the constructors.
var (
	ErrInvalidInput               = &Error{Code: CodeInvalidInput, Message: "invalid input"}
	ErrMissingLocation            = &Error{Code: CodeMissingLocation, Message: "user not found or missing location"}
	ErrConfig                     = &Error{Code: CodeConfigError, Message: "location is not configured correctly"}
	ErrNotWorkingDay              = &Error{Code: CodeNotWorkingDay, Message: "not a working day"}
	ErrTooEarly                   = &Error{Code: CodeTooEarly, Message: "too early"}
	ErrTooLate                    = &Error{Code: CodeTooLate, Message: "too late"}
	ErrWithinForbiddenCloseWindow = &Error{Code: CodeWithinForbiddenCloseWindow, Message: "check-in not allowed near work end time"}
	ErrWithinForbiddenOpenWindow  = &Error{Code: CodeWithinForbiddenOpenWindow, Message: "check-out not allowed right after work start time"}
	ErrOutOfRange                 = &Error{Code: CodeOutOfRange, Message: "distance from location is greater than tolerance"}
	ErrAlreadyRegistered          = &Error{Code: CodeAlreadyRegistered, Message: "attendance already registered for today"}
	ErrNoOpenCheckIn              = &Error{Code: CodeNoOpenCheckIn, Message: "check-in not found for today, you must check-in first"}
	ErrPersistence                = &Error{Code: CodePersistence, Message: "failed to persist attendance"}
)

func NewInvalidInput(errs validator.ValidationErrors) *Error {
	return &Error{Code: CodeInvalidInput, Message: "invalid input", Details: errs.ToMap(), Err: errs}
}

func NewMissingLocation(cause error) *Error {
	return &Error{Code: CodeMissingLocation, Message: "user not found or missing location", Err: cause}
}

func NewConfigError(locationID string, cause error) *Error {
	return &Error{
		Code:    CodeConfigError,
		Message: "location is not configured correctly",
		Details: map[string]string{"location_id": locationID},
		Err:     cause,
	}
}

func NewNotWorkingDay(date string, weekday int, holiday bool) *Error {
	reason := "weekday"
	if holiday {
		reason = "holiday"
	}
	return &Error{
		Code:    CodeNotWorkingDay,
		Message: "not a working day",
		Details: map[string]string{"date": date, "iso_weekday": fmt.Sprint(weekday), "reason": reason},
	}
}

func NewTooEarly(operation, now, earliest string) *Error {
	return &Error{
		Code:    CodeTooEarly,
		Message: fmt.Sprintf("too early to %s: %s < %s", operation, now, earliest),
		Details: map[string]string{"now": now, "earliest": earliest},
	}
}

func NewTooLate(operation, now, latest string) *Error {
	return &Error{
		Code:    CodeTooLate,
		Message: fmt.Sprintf("too late to %s: %s > %s", operation, now, latest),
		Details: map[string]string{"now": now, "latest": latest},
	}
}

func NewWithinForbiddenCloseWindow(now, from, until string, marginMinutes int) *Error {
	return &Error{
		Code:    CodeWithinForbiddenCloseWindow,
		Message: fmt.Sprintf("check-in not allowed %d minutes before work end time", marginMinutes),
		Details: map[string]string{"now": now, "from": from, "until": until},
	}
}

func NewWithinForbiddenOpenWindow(now, from, until string, marginMinutes int) *Error {
	return &Error{
		Code:    CodeWithinForbiddenOpenWindow,
		Message: fmt.Sprintf("check-out not allowed within %d minutes after work start time", marginMinutes),
		Details: map[string]string{"now": now, "from": from, "until": until},
	}
}

// NewOutOfRange reports the display distance together with the meter values
// the comparison used.
func NewOutOfRange(display, meters, toleranceMeters string) *Error {
	return &Error{
		Code:    CodeOutOfRange,
		Message: "distance from location is greater than tolerance, distance: " + display,
		Details: map[string]string{
			"distance":         display,
			"distance_meters":  meters,
			"tolerance_meters": toleranceMeters,
		},
	}
}

func NewAlreadyRegistered(date string, state State) *Error {
	e := &Error{
		Code:    CodeAlreadyRegistered,
		Message: "attendance already registered for today",
		Details: map[string]string{"date": date, "state": state.String()},
	}
	if state == StateCheckedOut {
		// A closed day has no open check-in either.
		e.Message = "check-out already registered for today"
		e.Err = ErrNoOpenCheckIn
	}
	return e
}

func NewNoOpenCheckIn(date string) *Error {
	return &Error{
		Code:    CodeNoOpenCheckIn,
		Message: "check-in not found for today, you must check-in first",
		Details: map[string]string{"date": date},
	}
}

func NewPersistenceError(operation string, cause error) *Error {
	return &Error{
		Code:    CodePersistence,
		Message: "failed to " + operation,
		Err:     cause,
	}
}
