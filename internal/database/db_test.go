package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client_data.db")

	db, err := New(Config{Path: path, Profile: ProfileCache, Name: "client_data"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.Equal(t, ProfileCache, db.Profile())
	assert.Equal(t, "client_data", db.Name())

	require.NoError(t, db.Migrate())
	// idempotent
	require.NoError(t, db.Migrate())

	for _, table := range []string{
		"price_series",
		"alphavantage_insider",
		"alphavantage_income_statement",
		"alphavantage_balance_sheet",
		"alphavantage_cash_flow",
	} {
		var name string
		err := db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_UnknownNameIsNoop(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "other.db"), Name: "other"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ProfileStandard, db.Profile())
	assert.NoError(t, db.Migrate())
}

func TestBuildConnectionString(t *testing.T) {
	conn := buildConnectionString("/tmp/x.db", ProfileCache)
	assert.Contains(t, conn, "/tmp/x.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, conn, "synchronous(OFF)")

	conn = buildConnectionString("file:test?mode=memory", ProfileStandard)
	assert.Contains(t, conn, "file:test?mode=memory&_pragma=journal_mode(WAL)")
	assert.Contains(t, conn, "synchronous(NORMAL)")
}
