package user

import (
	"context"
)

type UserRepository interface {
	// GetByID returns ErrUserNotFound for missing or soft-deleted users.
	GetByID(ctx context.Context, id string) (User, error)
}
