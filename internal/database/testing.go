package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/value-lab/internal/config"
)

// TestConfigEnv names the config file used for database-backed tests
const TestConfigEnv = "VALUE_LAB_TEST_CONFIG"

// SetupTestDB connects to the test database and ensures the ledger schema.
// The test is skipped when no test config is provided.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestConfigEnv)
	if path == "" {
		t.Skipf("%s not set, skipping database test", TestConfigEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := Initialize(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if _, err := db.Exec(ctx, "TRUNCATE ledger_rows RESTART IDENTITY"); err != nil {
		db.Close()
		t.Fatalf("failed to reset ledger table: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	db.Close()
}
