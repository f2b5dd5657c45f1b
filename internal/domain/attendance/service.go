package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn validates time, place and ledger state, then opens today's record
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut validates time, place and ledger state, then closes today's record
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// Today reports the ledger state for the user's Location-local day
	Today(ctx context.Context, userID string) (TodayResponse, error)
}
