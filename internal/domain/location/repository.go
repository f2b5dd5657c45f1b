package location

import (
	"context"
	"time"
)

type LocationRepository interface {
	// GetByID returns ErrLocationNotFound for missing or soft-deleted rows.
	GetByID(ctx context.Context, id string) (Location, error)
}

type HolidayRepository interface {
	// IsHoliday reports whether date (a calendar day) is a holiday at the location.
	IsHoliday(ctx context.Context, locationID string, date time.Time) (bool, error)
}
