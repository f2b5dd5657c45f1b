package location

import "errors"

var (
	ErrLocationNotFound          = errors.New("location not found")
	ErrLocationInactive          = errors.New("location is not active")
	ErrWorkingDaysNotConfigured  = errors.New("working days not configured")
	ErrInvalidWorkingDays        = errors.New("working days must be ISO weekdays between 1 and 7")
	ErrWorkingHoursNotConfigured = errors.New("working hours not configured")
	ErrInvalidWorkingHours       = errors.New("working start time must be before working end time")
	ErrInvalidCoordinates        = errors.New("location coordinates are incomplete or out of range")
	ErrCoordinatesNotConfigured  = errors.New("location has no coordinates to evaluate the geofence")
	ErrInvalidTimezone           = errors.New("location timezone is not a valid IANA name")
)
