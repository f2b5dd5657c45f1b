package device

import "time"

// Device binds a client-reported identifier to a user.
type Device struct {
	ID         string
	UserID     string
	DeviceUUID string
	DeviceName *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
