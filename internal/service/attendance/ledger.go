package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/google/uuid"
)

// DefaultTransactionTimeout bounds one ledger transition.
const DefaultTransactionTimeout = 5 * time.Second

// Ledger owns the per-user, per-day state machine. Every transition runs in
// one transaction holding the (user, date) lock.
type Ledger struct {
	tx          database.Transactor
	attendances attendance.AttendanceRepository
	devices     device.DeviceRepository
	timeout     time.Duration
	newID       func() (string, error)
}

func NewLedger(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	deviceRepo device.DeviceRepository,
	timeout time.Duration,
) *Ledger {
	if timeout <= 0 {
		timeout = DefaultTransactionTimeout
	}
	return &Ledger{
		tx:          tx,
		attendances: attendanceRepo,
		devices:     deviceRepo,
		timeout:     timeout,
		newID:       newAttendanceID,
	}
}

func newAttendanceID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// CheckIn opens the day for entry.UserID.
func (l *Ledger) CheckIn(ctx context.Context, entry attendance.Entry) (attendance.Attendance, error) {
	var created attendance.Attendance

	err := l.transition(ctx, "register check-in", entry, func(ctx context.Context, current *attendance.Attendance) error {
		id, err := l.newID()
		if err != nil {
			return err
		}

		next, err := nextCheckIn(current, entry, id)
		if err != nil {
			return err
		}

		dev, err := l.devices.Resolve(ctx, entry.UserID, entry.DeviceUUID, entry.DeviceName)
		if err != nil {
			return err
		}
		next.DeviceID = dev.ID

		created, err = l.attendances.Create(ctx, next)
		return err
	})

	return created, err
}

// CheckOut closes the open day for entry.UserID. The device is bound to the
// user but the record keeps the check-in device.
func (l *Ledger) CheckOut(ctx context.Context, entry attendance.Entry) (attendance.Attendance, error) {
	var updated attendance.Attendance

	err := l.transition(ctx, "register check-out", entry, func(ctx context.Context, current *attendance.Attendance) error {
		next, err := nextCheckOut(current, entry)
		if err != nil {
			return err
		}

		if _, err := l.devices.Resolve(ctx, entry.UserID, entry.DeviceUUID, entry.DeviceName); err != nil {
			return err
		}

		updated, err = l.attendances.RegisterCheckOut(ctx, next)
		return err
	})

	return updated, err
}

// Find returns the record for (userID, date), or nil.
func (l *Ledger) Find(ctx context.Context, userID string, date time.Time) (*attendance.Attendance, error) {
	current, err := l.attendances.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, attendance.NewPersistenceError("load attendance", err)
	}
	return current, nil
}

// transition locks the day and loads its record before calling apply.
// Failures that are not already domain errors come back as persistence errors.
func (l *Ledger) transition(
	ctx context.Context,
	operation string,
	entry attendance.Entry,
	apply func(ctx context.Context, current *attendance.Attendance) error,
) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := l.attendances.LockUserDay(ctx, entry.UserID, entry.Date); err != nil {
			return err
		}

		current, err := l.attendances.GetByUserAndDate(ctx, entry.UserID, entry.Date)
		if err != nil {
			return err
		}

		return apply(ctx, current)
	})
	if err == nil {
		return nil
	}

	var domainErr *attendance.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return attendance.NewPersistenceError(operation, err)
}

// nextCheckIn is the only NoAttendance -> CheckedIn transition.
func nextCheckIn(current *attendance.Attendance, entry attendance.Entry, id string) (attendance.Attendance, error) {
	if state := attendance.StateOf(current); state != attendance.StateNoAttendance {
		return attendance.Attendance{}, attendance.NewAlreadyRegistered(entry.Date.Format(time.DateOnly), state)
	}

	lat, lon := entry.Latitude, entry.Longitude
	return attendance.Attendance{
		ID:               id,
		UserID:           entry.UserID,
		Date:             entry.Date,
		CheckIn:          entry.At,
		CheckInLatitude:  &lat,
		CheckInLongitude: &lon,
	}, nil
}

// nextCheckOut is the only CheckedIn -> CheckedOut transition.
func nextCheckOut(current *attendance.Attendance, entry attendance.Entry) (attendance.Attendance, error) {
	date := entry.Date.Format(time.DateOnly)

	switch attendance.StateOf(current) {
	case attendance.StateNoAttendance:
		return attendance.Attendance{}, attendance.NewNoOpenCheckIn(date)
	case attendance.StateCheckedOut:
		return attendance.Attendance{}, attendance.NewAlreadyRegistered(date, attendance.StateCheckedOut)
	}

	if !current.CheckIn.Before(entry.At) {
		earliest := clock.FormatMinute(current.CheckIn.MinuteOfDay() + 1)
		return attendance.Attendance{}, attendance.NewTooEarly("check-out", clock.FormatMinute(entry.At.MinuteOfDay()), earliest)
	}

	next := *current
	at := entry.At
	lat, lon := entry.Latitude, entry.Longitude
	next.CheckOut = &at
	next.CheckOutLatitude = &lat
	next.CheckOutLongitude = &lon
	return next, nil
}
