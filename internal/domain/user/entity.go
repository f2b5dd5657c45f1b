package user

import "time"

type ContractType string

const (
	ContractFullTime ContractType = "FULL_TIME"
	ContractPartTime ContractType = "PART_TIME"
	ContractExternal ContractType = "EXTERNAL" // Exempt from geofencing
)

type User struct {
	ID           string
	LocationID   *string
	Name         string
	ContractType *ContractType
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsExternal checks if the user may check in from anywhere
func (u User) IsExternal() bool {
	return u.ContractType != nil && *u.ContractType == ContractExternal
}
