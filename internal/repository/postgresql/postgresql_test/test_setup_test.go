package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/presence-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/presence-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSetup wraps the integration database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// Tests are skipped when the variable is unset.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, postgresql.Migrate(ctx, db))

	setup := &TestDatabaseSetup{DB: db}
	require.NoError(t, setup.TruncateAllTables(ctx))
	return setup
}

// TruncateAllTables removes all rows, children first.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"attendances",
		"devices",
		"holidays",
		"users",
		"locations",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// CreateLocation inserts a Mon-Fri 09:00-18:00 Rome site and returns its id.
func (s *TestDatabaseSetup) CreateLocation(t *testing.T, ctx context.Context) string {
	t.Helper()
	var id string
	err := s.DB.QueryRow(ctx, `
		INSERT INTO locations (name, latitude, longitude, timezone, working_start_time, working_end_time, exclude_holidays)
		VALUES ('Rome HQ', 41.9028, 12.4964, 'Europe/Rome', '09:00', '18:00', TRUE)
		RETURNING id
	`).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateUser inserts a user bound to locationID and returns its id.
func (s *TestDatabaseSetup) CreateUser(t *testing.T, ctx context.Context, locationID *string, contract string) string {
	t.Helper()
	var id string
	err := s.DB.QueryRow(ctx, `
		INSERT INTO users (location_id, name, contract_type)
		VALUES ($1, 'Test User', $2)
		RETURNING id
	`, locationID, contract).Scan(&id)
	require.NoError(t, err)
	return id
}
