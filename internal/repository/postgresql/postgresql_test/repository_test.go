package postgresql_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/location"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/repository/postgresql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocationRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewLocationRepository(setup.DB)

	id := setup.CreateLocation(t, ctx)

	loc, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Rome HQ", loc.Name)
	assert.Equal(t, "Europe/Rome", loc.TimezoneName())
	assert.Equal(t, location.DefaultWorkingDays, loc.WorkingDays)
	require.NotNil(t, loc.WorkingStartTime)
	assert.Equal(t, "09:00:00", loc.WorkingStartTime.String())
	assert.Equal(t, "18:00:00", loc.WorkingEndTime.String())
	require.True(t, loc.HasCoordinates())
	assert.InDelta(t, 41.9028, *loc.Latitude, 1e-9)
	assert.True(t, loc.ExcludeHolidays)
	assert.NoError(t, loc.Validate())

	_, err = setup.DB.Exec(ctx, `UPDATE locations SET deleted_at = NOW() WHERE id = $1`, id)
	require.NoError(t, err)
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, location.ErrLocationNotFound)
}

func TestLocationRepository_RejectsInvertedHours(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)

	_, err := setup.DB.Exec(ctx, `
		INSERT INTO locations (name, working_start_time, working_end_time)
		VALUES ('Backwards', '18:00', '09:00')
	`)
	assert.Error(t, err)
}

func TestHolidayRepository_IsHoliday(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewHolidayRepository(setup.DB)

	locID := setup.CreateLocation(t, ctx)
	_, err := setup.DB.Exec(ctx, `
		INSERT INTO holidays (location_id, holiday_date, description) VALUES ($1, '2025-04-25', 'Liberation Day')
	`, locID)
	require.NoError(t, err)

	ok, err := repo.IsHoliday(ctx, locID, time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsHoliday(ctx, locID, time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewUserRepository(setup.DB)

	locID := setup.CreateLocation(t, ctx)
	id := setup.CreateUser(t, ctx, &locID, "EXTERNAL")

	u, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u.LocationID)
	assert.Equal(t, locID, *u.LocationID)
	assert.True(t, u.IsExternal())
	assert.True(t, u.Active)

	orphan := setup.CreateUser(t, ctx, nil, "FULL_TIME")
	u, err = repo.GetByID(ctx, orphan)
	require.NoError(t, err)
	assert.Nil(t, u.LocationID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestDeviceRepository_ResolveIsFirstOrCreate(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewDeviceRepository(setup.DB)

	locID := setup.CreateLocation(t, ctx)
	userID := setup.CreateUser(t, ctx, &locID, "FULL_TIME")
	name := "Pixel 8"

	first, err := repo.Resolve(ctx, userID, "0123456789abcdef", &name)
	require.NoError(t, err)
	second, err := repo.Resolve(ctx, userID, "0123456789abcdef", nil)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.DeviceName)
	assert.Equal(t, "Pixel 8", *second.DeviceName)
}

func TestAttendanceRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	devices := postgresql.NewDeviceRepository(setup.DB)

	locID := setup.CreateLocation(t, ctx)
	userID := setup.CreateUser(t, ctx, &locID, "FULL_TIME")
	dev, err := devices.Resolve(ctx, userID, "0123456789abcdef", nil)
	require.NoError(t, err)

	date := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)

	none, err := repo.GetByUserAndDate(ctx, userID, date)
	require.NoError(t, err)
	assert.Nil(t, none)

	lat, lon := 41.90285, 12.4964
	created, err := repo.Create(ctx, attendance.Attendance{
		ID:               uuid.Must(uuid.NewV7()).String(),
		UserID:           userID,
		DeviceID:         dev.ID,
		Date:             date,
		CheckIn:          clock.TimeOfDay{Hour: 9, Minute: 5},
		CheckInLatitude:  &lat,
		CheckInLongitude: &lon,
	})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.Create(ctx, attendance.Attendance{
		ID:       uuid.Must(uuid.NewV7()).String(),
		UserID:   userID,
		DeviceID: dev.ID,
		Date:     date,
		CheckIn:  clock.TimeOfDay{Hour: 9, Minute: 6},
	})
	assert.ErrorIs(t, err, attendance.ErrDuplicateDay)

	found, err := repo.GetByUserAndDate(ctx, userID, date)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "09:05:00", found.CheckIn.String())
	assert.Nil(t, found.CheckOut)
	assert.Equal(t, date, found.Date.UTC())

	out := clock.TimeOfDay{Hour: 17, Minute: 30}
	found.CheckOut = &out
	found.CheckOutLatitude = &lat
	found.CheckOutLongitude = &lon
	_, err = repo.RegisterCheckOut(ctx, *found)
	require.NoError(t, err)

	// A second check-out finds no open row.
	_, err = repo.RegisterCheckOut(ctx, *found)
	assert.Error(t, err)

	closed, err := repo.GetByUserAndDate(ctx, userID, date)
	require.NoError(t, err)
	require.NotNil(t, closed.CheckOut)
	assert.Equal(t, "17:30:00", closed.CheckOut.String())
}

func TestAttendanceRepository_LockUserDaySerializes(t *testing.T) {
	ctx := context.Background()
	setup := NewTestDatabase(t)
	repo := postgresql.NewAttendanceRepository(setup.DB)
	devices := postgresql.NewDeviceRepository(setup.DB)
	tx := postgresql.NewTxManager(setup.DB)

	locID := setup.CreateLocation(t, ctx)
	userID := setup.CreateUser(t, ctx, &locID, "FULL_TIME")
	date := time.Date(2025, 4, 28, 0, 0, 0, 0, time.UTC)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
				if err := repo.LockUserDay(ctx, userID, date); err != nil {
					return err
				}
				current, err := repo.GetByUserAndDate(ctx, userID, date)
				if err != nil {
					return err
				}
				if current != nil {
					return errors.New("already registered")
				}
				dev, err := devices.Resolve(ctx, userID, "0123456789abcdef", nil)
				if err != nil {
					return err
				}
				_, err = repo.Create(ctx, attendance.Attendance{
					ID:       uuid.Must(uuid.NewV7()).String(),
					UserID:   userID,
					DeviceID: dev.ID,
					Date:     date,
					CheckIn:  clock.TimeOfDay{Hour: 9},
				})
				return err
			})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
