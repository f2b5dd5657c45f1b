package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/device"
	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
)

type deviceRepository struct {
	db *database.DB
}

// Resolve implements device.DeviceRepository. An existing row keeps its name.
func (r *deviceRepository) Resolve(ctx context.Context, userID string, deviceUUID string, deviceName *string) (device.Device, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO devices (user_id, device_uuid, device_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, device_uuid)
		DO UPDATE SET device_uuid = EXCLUDED.device_uuid
		RETURNING id, user_id, device_uuid, device_name, created_at, updated_at
	`

	var d device.Device
	err := q.QueryRow(ctx, query, userID, deviceUUID, deviceName).Scan(
		&d.ID, &d.UserID, &d.DeviceUUID, &d.DeviceName, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return device.Device{}, fmt.Errorf("failed to resolve device: %w", err)
	}

	return d, nil
}

func NewDeviceRepository(db *database.DB) device.DeviceRepository {
	return &deviceRepository{db: db}
}
