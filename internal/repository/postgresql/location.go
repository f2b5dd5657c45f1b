package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type locationRepository struct {
	db *database.DB
}

// GetByID implements location.LocationRepository.
func (r *locationRepository) GetByID(ctx context.Context, id string) (location.Location, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, latitude, longitude, timezone,
			   working_start_time, working_end_time, working_days,
			   exclude_holidays, active, created_at, updated_at
		FROM locations
		WHERE id = $1
		  AND deleted_at IS NULL
	`

	var (
		loc         location.Location
		start, end  pgtype.Time
		workingDays []int16
	)
	err := q.QueryRow(ctx, query, id).Scan(
		&loc.ID, &loc.Name, &loc.Latitude, &loc.Longitude, &loc.Timezone,
		&start, &end, &workingDays,
		&loc.ExcludeHolidays, &loc.Active, &loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return location.Location{}, location.ErrLocationNotFound
		}
		return location.Location{}, fmt.Errorf("failed to get location by id: %w", err)
	}

	loc.WorkingStartTime = timeOfDayPtr(start)
	loc.WorkingEndTime = timeOfDayPtr(end)
	if len(workingDays) > 0 {
		loc.WorkingDays = make(location.WorkingDays, len(workingDays))
		for i, d := range workingDays {
			loc.WorkingDays[i] = int(d)
		}
	}

	return loc, nil
}

func NewLocationRepository(db *database.DB) location.LocationRepository {
	return &locationRepository{db: db}
}

type holidayRepository struct {
	db *database.DB
}

// IsHoliday implements location.HolidayRepository.
func (r *holidayRepository) IsHoliday(ctx context.Context, locationID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM holidays
			WHERE location_id = $1
			  AND holiday_date = $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, locationID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}
	return exists, nil
}

func NewHolidayRepository(db *database.DB) location.HolidayRepository {
	return &holidayRepository{db: db}
}
