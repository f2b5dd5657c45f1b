package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/location"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHolidayRepo struct{ err error }

func (r failingHolidayRepo) IsHoliday(ctx context.Context, locationID string, date time.Time) (bool, error) {
	return false, r.err
}

func TestWorkCalendar_IsWorkingMoment(t *testing.T) {
	ctx := context.Background()
	cal := NewWorkCalendar(fakeHolidayRepo{romeID: {"2025-04-25"}}, nil)
	loc := romeLocation()

	cases := []struct {
		name    string
		instant time.Time
		want    bool
	}{
		{"monday", time.Date(2025, 4, 28, 8, 0, 0, 0, time.UTC), true},
		{"holiday friday", time.Date(2025, 4, 25, 8, 0, 0, 0, time.UTC), false},
		{"saturday", time.Date(2025, 4, 26, 8, 0, 0, 0, time.UTC), false},
		// Sunday in UTC, Monday in Rome.
		{"sunday night utc", time.Date(2025, 4, 27, 23, 30, 0, 0, time.UTC), true},
		// Friday in UTC, Saturday in Rome.
		{"friday night utc", time.Date(2025, 5, 2, 22, 30, 0, 0, time.UTC), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := cal.IsWorkingMoment(ctx, loc, c.instant)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestWorkCalendar_Resolve(t *testing.T) {
	cal := NewWorkCalendar(fakeHolidayRepo{romeID: {"2025-04-25"}}, nil)

	day, err := cal.Resolve(context.Background(), romeLocation(), time.Date(2025, 4, 25, 7, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.False(t, day.Working)
	assert.True(t, day.Holiday)
	assert.Equal(t, 5, day.Weekday)
	assert.Equal(t, time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC), day.Date)
	assert.Equal(t, 9, day.Local.Hour())
}

func TestWorkCalendar_HolidaysIgnoredWhenNotExcluded(t *testing.T) {
	cal := NewWorkCalendar(failingHolidayRepo{err: errors.New("must not be called")}, nil)
	loc := romeLocation()
	loc.ExcludeHolidays = false

	ok, err := cal.IsWorkingMoment(context.Background(), loc, time.Date(2025, 4, 25, 8, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWorkCalendar_ConfigErrors(t *testing.T) {
	ctx := context.Background()
	cal := NewWorkCalendar(fakeHolidayRepo{}, nil)
	instant := time.Date(2025, 4, 28, 8, 0, 0, 0, time.UTC)

	loc := romeLocation()
	loc.WorkingDays = location.WorkingDays{}
	_, err := cal.IsWorkingMoment(ctx, loc, instant)
	assert.ErrorIs(t, err, location.ErrWorkingDaysNotConfigured)

	loc = romeLocation()
	loc.WorkingDays = location.WorkingDays{0, 1}
	_, err = cal.IsWorkingMoment(ctx, loc, instant)
	assert.ErrorIs(t, err, location.ErrInvalidWorkingDays)

	loc = romeLocation()
	loc.Timezone = ptr("Not/AZone")
	_, err = cal.IsWorkingMoment(ctx, loc, instant)
	assert.ErrorIs(t, err, location.ErrInvalidTimezone)
}

func TestWorkCalendar_HolidayLookupFailure(t *testing.T) {
	cause := errors.New("timeout")
	cal := NewWorkCalendar(failingHolidayRepo{err: cause}, nil)

	_, err := cal.IsWorkingMoment(context.Background(), romeLocation(), time.Date(2025, 4, 28, 8, 0, 0, 0, time.UTC))

	assert.ErrorIs(t, err, cause)
	assert.False(t, isLocationConfigError(err))
}

func TestWorkCalendar_InjectedZoneResolver(t *testing.T) {
	var asked []string
	fixed := time.FixedZone("UTC+14", 14*3600)
	cal := NewWorkCalendar(fakeHolidayRepo{}, func(name string) (*time.Location, error) {
		asked = append(asked, name)
		return fixed, nil
	})

	loc := romeLocation()
	loc.Timezone = nil

	// Sunday 12:00 UTC is Monday 02:00 at UTC+14.
	ok, err := cal.IsWorkingMoment(context.Background(), loc, time.Date(2025, 4, 27, 12, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"UTC"}, asked)
}
