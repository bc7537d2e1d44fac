package testdb

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/phrazzld/taskflow-api/internal/config"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/platform/postgres"
	"github.com/phrazzld/taskflow-api/internal/store"
	"github.com/stretchr/testify/require"
)

// TestTimeout bounds every setup step against the test database.
const TestTimeout = 5 * time.Second

// DatabaseURL returns the test database URL. TASKFLOW_TEST_DATABASE_URL
// wins over DATABASE_URL so a developer can keep both set.
func DatabaseURL() string {
	if u := os.Getenv("TASKFLOW_TEST_DATABASE_URL"); u != "" {
		return u
	}
	return os.Getenv("DATABASE_URL")
}

// Connect opens the test database, applies migrations and returns a
// connected state wrapping the handle. It skips the test when no URL is set.
func Connect(t *testing.T) (*store.ConnectionState, *sql.DB) {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		t.Skip("no test database configured; set TASKFLOW_TEST_DATABASE_URL or DATABASE_URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	db, err := postgres.Open(config.DatabaseConfig{
		URL:             url,
		ConnectTimeout:  TestTimeout,
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	})(ctx)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() { _ = db.Close() })

	log, _ := logger.NewTestLogger(t)
	require.NoError(t, postgres.Migrate(ctx, db, log), "failed to migrate test database")

	state := store.NewConnectionState()
	state.MarkConnected(db)
	return state, db
}

// Reset removes every row the application owns.
func Reset(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()
	_, err := db.ExecContext(ctx, `TRUNCATE tasks, users`)
	require.NoError(t, err, "failed to reset test database")
}
