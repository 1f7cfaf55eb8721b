// Package testing provides testing utilities and helpers for the backtester project.
package testing

import (
	"path/filepath"
	"testing"

	"github.com/aristath/backtester/internal/clientdata"
	"github.com/aristath/backtester/internal/database"
)

// NewTestDB creates a file-backed SQLite database in a per-test temporary directory
// and applies the schema registered for name. The connection is closed on test cleanup.
//
// Supported schema names:
//   - "client_data" - applies client_data_schema.sql
//   - Unknown names - creates empty database (no schema applied)
func NewTestDB(t *testing.T, name string) *database.DB {
	t.Helper()

	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: database.ProfileCache,
		Name:    name,
	})
	if err != nil {
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
	})

	if err := db.Migrate(); err != nil {
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	return db
}

// NewTestDBWithSchema creates a test database and executes schema on it directly.
func NewTestDBWithSchema(t *testing.T, name string, schema string) *database.DB {
	t.Helper()

	db := NewTestDB(t, name)
	if schema != "" {
		if _, err := db.Conn().Exec(schema); err != nil {
			t.Fatalf("Failed to execute custom schema for test database %s: %v", name, err)
		}
	}
	return db
}

// NewClientDataRepository returns a cache repository over a migrated client_data database.
func NewClientDataRepository(t *testing.T) *clientdata.Repository {
	t.Helper()
	return clientdata.NewRepository(NewTestDB(t, "client_data").Conn())
}
