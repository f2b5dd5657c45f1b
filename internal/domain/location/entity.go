package location

import (
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/geo"
)

// DefaultTimezone applies when a location has no timezone configured.
const DefaultTimezone = "UTC"

// Location is a work site. It is maintained by the admin panel and only read here.
type Location struct {
	ID               string
	Name             string
	Latitude         *float64
	Longitude        *float64
	Timezone         *string
	WorkingDays      WorkingDays
	WorkingStartTime *clock.TimeOfDay
	WorkingEndTime   *clock.TimeOfDay
	ExcludeHolidays  bool
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TimezoneName returns the configured IANA zone or UTC.
func (l Location) TimezoneName() string {
	if l.Timezone == nil || *l.Timezone == "" {
		return DefaultTimezone
	}
	return *l.Timezone
}

// HasCoordinates reports whether geofencing can be evaluated for the location.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Validate checks the invariants the admin panel is expected to enforce on
// save: a non-empty start < end schedule and in-range coordinates.
func (l Location) Validate() error {
	if l.WorkingStartTime == nil || l.WorkingEndTime == nil {
		return ErrWorkingHoursNotConfigured
	}
	if !l.WorkingStartTime.Valid() || !l.WorkingEndTime.Valid() || !l.WorkingStartTime.Before(*l.WorkingEndTime) {
		return ErrInvalidWorkingHours
	}
	if (l.Latitude == nil) != (l.Longitude == nil) {
		return ErrInvalidCoordinates
	}
	if l.HasCoordinates() && (!geo.ValidLatitude(*l.Latitude) || !geo.ValidLongitude(*l.Longitude)) {
		return ErrInvalidCoordinates
	}
	return nil
}

// WorkingDays holds ISO weekdays, 1 = Monday through 7 = Sunday. A nil or
// empty set means the schedule has not been configured.
type WorkingDays []int

// DefaultWorkingDays is Monday to Friday.
var DefaultWorkingDays = WorkingDays{1, 2, 3, 4, 5}

// ISOWeekday converts time.Weekday (Sunday = 0) to ISO numbering (Sunday = 7).
func ISOWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

func (w WorkingDays) Configured() bool {
	return len(w) > 0
}

func (w WorkingDays) Valid() bool {
	for _, d := range w {
		if d < 1 || d > 7 {
			return false
		}
	}
	return true
}

// Includes reports whether the weekday of t, in t's own location, is a working day.
func (w WorkingDays) Includes(t time.Time) bool {
	today := ISOWeekday(t.Weekday())
	for _, d := range w {
		if d == today {
			return true
		}
	}
	return false
}
