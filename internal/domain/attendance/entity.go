package attendance

import (
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/clock"
)

// Attendance is one user's record for one Location-local calendar day.
type Attendance struct {
	ID                string
	UserID            string
	DeviceID          string
	Date              time.Time
	CheckIn           clock.TimeOfDay
	CheckOut          *clock.TimeOfDay
	CheckInLatitude   *float64
	CheckInLongitude  *float64
	CheckOutLatitude  *float64
	CheckOutLongitude *float64
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// State is the position of a (user, day) pair in the ledger.
type State int

const (
	StateNoAttendance State = iota
	StateCheckedIn
	StateCheckedOut
)

func (s State) String() string {
	switch s {
	case StateCheckedIn:
		return "CHECKED_IN"
	case StateCheckedOut:
		return "CHECKED_OUT"
	default:
		return "NO_ATTENDANCE"
	}
}

// StateOf derives the ledger state from the day's record, which may be nil.
func StateOf(a *Attendance) State {
	switch {
	case a == nil:
		return StateNoAttendance
	case a.CheckOut == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

// Entry is a validated check-in or check-out attempt, already placed on the
// Location's calendar.
type Entry struct {
	UserID     string
	DeviceUUID string
	DeviceName *string
	Date       time.Time
	At         clock.TimeOfDay
	Latitude   float64
	Longitude  float64
}
