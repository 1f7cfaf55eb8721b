package clientdata

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCleanupJob(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	assert.NotNil(t, job)
	assert.Equal(t, "client_data_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	now := time.Now()
	expiredAt := now.Add(-time.Hour).Unix()
	freshAt := now.Add(time.Hour).Unix()

	insertExpiredAndFresh(t, db, "price_series", "cache_key", expiredAt, freshAt)
	insertExpiredAndFresh(t, db, "alphavantage_insider", "symbol", expiredAt, freshAt)
	insertExpiredAndFresh(t, db, "alphavantage_cash_flow", "symbol", expiredAt, freshAt)

	assert.Equal(t, 6, totalRows(t, db))

	require.NoError(t, job.Run())

	assert.Equal(t, 3, totalRows(t, db))
}

func TestCleanupJobPurgeSplitsPriceSeriesFromFundamentals(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	now := time.Now()
	insertExpiredAndFresh(t, db, "price_series", "cache_key", now.Add(-time.Hour).Unix(), now.Add(time.Hour).Unix())
	insertExpiredAndFresh(t, db, "alphavantage_insider", "symbol", now.Add(-time.Hour).Unix(), now.Add(time.Hour).Unix())
	insertExpiredAndFresh(t, db, "alphavantage_cash_flow", "symbol", now.Add(-time.Hour).Unix(), now.Add(time.Hour).Unix())

	summary, err := job.Purge()
	require.NoError(t, err)

	assert.Equal(t, int64(1), summary.PriceSeries)
	assert.Equal(t, map[string]int64{
		TableInsider:  1,
		TableCashFlow: 1,
	}, summary.Fundamentals)
	assert.NotContains(t, summary.Fundamentals, TablePriceSeries)
	assert.Equal(t, int64(3), summary.Total())
}

func TestCleanupJobPurgeUsesRepositoryClock(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }
	require.NoError(t, repo.Store(TablePriceSeries, "AAPL|2024-01-01|2024-02-01", []byte("x"), time.Hour))
	require.NoError(t, repo.Store(TableIncomeStatement, "IBM", []byte("x"), 24*time.Hour))

	job := NewCleanupJob(repo, zerolog.Nop())

	summary, err := job.Purge()
	require.NoError(t, err)
	assert.Zero(t, summary.Total())

	repo.now = func() time.Time { return fixed.Add(2 * time.Hour) }
	summary, err = job.Purge()
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.PriceSeries)
	assert.Empty(t, summary.Fundamentals)

	count, err := repo.Count(TableIncomeStatement)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCleanupJobRunEmptyTables(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	require.NoError(t, job.Run())
}

func TestCleanupJobRunMissingTable(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	assert.Error(t, job.Run())
}

func insertExpiredAndFresh(t *testing.T, db *sql.DB, table, keyCol string, expiredAt, freshAt int64) {
	t.Helper()

	query := "INSERT INTO " + table + " (" + keyCol + ", data, expires_at) VALUES (?, ?, ?)"
	_, err := db.Exec(query, "expired_key", []byte("{}"), expiredAt)
	require.NoError(t, err)
	_, err = db.Exec(query, "fresh_key", []byte("{}"), freshAt)
	require.NoError(t, err)
}

func totalRows(t *testing.T, db *sql.DB) int {
	t.Helper()

	var total int
	err := db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM price_series) +
		(SELECT COUNT(*) FROM alphavantage_insider) +
		(SELECT COUNT(*) FROM alphavantage_cash_flow)`).Scan(&total)
	require.NoError(t, err)
	return total
}
