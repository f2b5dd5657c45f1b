package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Attendance domain errors carry their own code and details
	var domainErr *attendance.Error
	if errors.As(err, &domainErr) {
		DomainError(w, attendanceStatus(domainErr.Code), domainErr)
		return
	}

	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	InternalServerError(w, "An unexpected error occurred")
}

func attendanceStatus(code attendance.Code) int {
	switch code {
	case attendance.CodeInvalidInput, attendance.CodeMissingLocation:
		return http.StatusUnprocessableEntity
	case attendance.CodeNotWorkingDay,
		attendance.CodeTooEarly,
		attendance.CodeTooLate,
		attendance.CodeWithinForbiddenCloseWindow,
		attendance.CodeWithinForbiddenOpenWindow,
		attendance.CodeOutOfRange:
		return http.StatusForbidden
	case attendance.CodeAlreadyRegistered, attendance.CodeNoOpenCheckIn:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// DomainError writes an attendance refusal. Causes of server-side failures
// are never exposed.
func DomainError(w http.ResponseWriter, status int, err *attendance.Error) {
	detail := &ErrorDetail{
		Code:    string(err.Code),
		Message: err.Message,
		Details: err.Details,
	}
	if status >= http.StatusInternalServerError {
		detail.Message = "An unexpected error occurred"
		if err.Code == attendance.CodeConfigError {
			detail.Message = "Location is not configured correctly, contact your administrator"
		}
	}

	writeJSON(w, status, Response{
		Success: false,
		Message: detail.Message,
		Error:   detail,
	})
}
