package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
)

// ZoneResolver maps an IANA zone name to a *time.Location.
type ZoneResolver func(name string) (*time.Location, error)

// Day is an instant placed on a Location's calendar.
type Day struct {
	Local   time.Time
	Date    time.Time
	Weekday int
	Working bool
	Holiday bool
}

// WorkCalendar decides whether a moment falls on a working day of a Location.
type WorkCalendar struct {
	holidays    location.HolidayRepository
	resolveZone ZoneResolver
}

// NewWorkCalendar uses time.LoadLocation when resolve is nil.
func NewWorkCalendar(holidays location.HolidayRepository, resolve ZoneResolver) *WorkCalendar {
	if resolve == nil {
		resolve = time.LoadLocation
	}
	return &WorkCalendar{holidays: holidays, resolveZone: resolve}
}

// Zone returns the Location's time zone, UTC when none is set.
func (c *WorkCalendar) Zone(loc location.Location) (*time.Location, error) {
	name := loc.TimezoneName()
	tz, err := c.resolveZone(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", location.ErrInvalidTimezone, name, err)
	}
	return tz, nil
}

// Resolve converts instant to the Location's zone and classifies the local day.
func (c *WorkCalendar) Resolve(ctx context.Context, loc location.Location, instant time.Time) (Day, error) {
	if !loc.WorkingDays.Configured() {
		return Day{}, location.ErrWorkingDaysNotConfigured
	}
	if !loc.WorkingDays.Valid() {
		return Day{}, location.ErrInvalidWorkingDays
	}

	tz, err := c.Zone(loc)
	if err != nil {
		return Day{}, err
	}

	local := instant.In(tz)
	day := Day{
		Local:   local,
		Date:    clock.Date(local),
		Weekday: location.ISOWeekday(local.Weekday()),
	}

	if !loc.WorkingDays.Includes(local) {
		return day, nil
	}

	if loc.ExcludeHolidays {
		holiday, err := c.holidays.IsHoliday(ctx, loc.ID, day.Date)
		if err != nil {
			return Day{}, fmt.Errorf("failed to look up holiday: %w", err)
		}
		if holiday {
			day.Holiday = true
			return day, nil
		}
	}

	day.Working = true
	return day, nil
}

func (c *WorkCalendar) IsWorkingMoment(ctx context.Context, loc location.Location, instant time.Time) (bool, error) {
	day, err := c.Resolve(ctx, loc, instant)
	if err != nil {
		return false, err
	}
	return day.Working, nil
}
