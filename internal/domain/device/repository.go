package device

import "context"

type DeviceRepository interface {
	// Resolve returns the device row for (userID, deviceUUID), creating it on
	// first use.
	Resolve(ctx context.Context, userID string, deviceUUID string, deviceName *string) (Device, error)
}
