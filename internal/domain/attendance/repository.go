package attendance

import (
	"context"
	"time"
)

// AttendanceRepository is the storage behind the ledger. Callers run the
// methods inside one transaction, taking LockUserDay first.
type AttendanceRepository interface {
	// LockUserDay serializes ledger transitions for one user and day until the
	// surrounding transaction ends.
	LockUserDay(ctx context.Context, userID string, date time.Time) error

	// GetByUserAndDate returns the day's record, or nil if there is none.
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*Attendance, error)

	// Create inserts a checked-in record.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// RegisterCheckOut sets check_out and its coordinates on an open record.
	RegisterCheckOut(ctx context.Context, attendance Attendance) (Attendance, error)
}
