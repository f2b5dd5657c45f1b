package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const uniqueViolation = "23505"

type attendanceRepository struct {
	db *database.DB
}

// LockUserDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockUserDay(ctx context.Context, userID string, date time.Time) error {
	q := GetQuerier(ctx, a.db)

	// Released on commit or rollback.
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		"attendance:"+userID+":"+date.Format(time.DateOnly))
	if err != nil {
		return fmt.Errorf("failed to lock attendance day: %w", err)
	}
	return nil
}

// GetByUserAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT id, user_id, device_id, date, check_in, check_out,
			   check_in_latitude, check_in_longitude,
			   check_out_latitude, check_out_longitude,
			   notes, created_at, updated_at
		FROM attendances
		WHERE user_id = $1
		  AND date = $2
		  AND deleted_at IS NULL
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by user and date: %w", err)
	}

	return &att, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			id, user_id, device_id, date, check_in,
			check_in_latitude, check_in_longitude, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.ID,
		newAttendance.UserID,
		newAttendance.DeviceID,
		newAttendance.Date,
		timeOfDayParam(newAttendance.CheckIn),
		newAttendance.CheckInLatitude,
		newAttendance.CheckInLongitude,
		newAttendance.Notes,
	).Scan(&newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return attendance.Attendance{}, fmt.Errorf("%w: %s", attendance.ErrDuplicateDay, pgErr.ConstraintName)
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// RegisterCheckOut implements attendance.AttendanceRepository.
func (a *attendanceRepository) RegisterCheckOut(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	if att.CheckOut == nil {
		return attendance.Attendance{}, errors.New("check-out time is required")
	}

	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_out = $1,
			check_out_latitude = $2,
			check_out_longitude = $3,
			updated_at = NOW()
		WHERE id = $4
		  AND check_out IS NULL
		  AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := q.QueryRow(ctx, query,
		timeOfDayParam(*att.CheckOut),
		att.CheckOutLatitude,
		att.CheckOutLongitude,
		att.ID,
	).Scan(&att.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, fmt.Errorf("no open attendance %s: %w", att.ID, err)
		}
		return attendance.Attendance{}, fmt.Errorf("failed to register check-out: %w", err)
	}

	return att, nil
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var (
		att      attendance.Attendance
		checkIn  pgtype.Time
		checkOut pgtype.Time
	)

	err := row.Scan(
		&att.ID, &att.UserID, &att.DeviceID, &att.Date, &checkIn, &checkOut,
		&att.CheckInLatitude, &att.CheckInLongitude,
		&att.CheckOutLatitude, &att.CheckOutLongitude,
		&att.Notes, &att.CreatedAt, &att.UpdatedAt,
	)
	if err != nil {
		return attendance.Attendance{}, err
	}

	att.CheckIn = clock.FromMicroseconds(checkIn.Microseconds)
	att.CheckOut = timeOfDayPtr(checkOut)
	return att, nil
}

func timeOfDayParam(t clock.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: t.Microseconds(), Valid: true}
}

func timeOfDayPtr(t pgtype.Time) *clock.TimeOfDay {
	if !t.Valid {
		return nil
	}
	tod := clock.FromMicroseconds(t.Microseconds)
	return &tod
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}
