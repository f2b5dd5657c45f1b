package postgresql

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
)

//go:embed schema.sql
var schemaSQL string

// Migrate creates the tables the service reads and writes. It is idempotent.
func Migrate(ctx context.Context, db *database.DB) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
