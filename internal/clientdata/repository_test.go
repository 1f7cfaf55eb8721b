package clientdata

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSchema creates all tables needed for testing
const testSchema = `
CREATE TABLE price_series (cache_key TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE alphavantage_insider (symbol TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE alphavantage_income_statement (symbol TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE alphavantage_balance_sheet (symbol TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);
CREATE TABLE alphavantage_cash_flow (symbol TEXT PRIMARY KEY, data BLOB NOT NULL, expires_at INTEGER NOT NULL);

CREATE INDEX idx_price_series_expires ON price_series(expires_at);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection to :memory: is a separate database
	db.SetMaxOpenConns(1)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func TestNewRepository(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	assert.NotNil(t, repo)
}

func TestStore(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store(TableInsider, "AAPL", []byte(`[{"insider":"Jane Doe","shares":1000}]`), TTLInsider)
	require.NoError(t, err)

	var storedData []byte
	var expiresAt int64
	err = db.QueryRow("SELECT data, expires_at FROM alphavantage_insider WHERE symbol = ?", "AAPL").Scan(&storedData, &expiresAt)
	require.NoError(t, err)

	assert.Equal(t, `[{"insider":"Jane Doe","shares":1000}]`, string(storedData))

	expectedExpiry := time.Now().Add(TTLInsider).Unix()
	assert.InDelta(t, expectedExpiry, expiresAt, 5)
}

func TestStoreUsesCacheKeyForPriceSeries(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store(TablePriceSeries, "AAPL|2024-01-01|2024-02-01", []byte{0x01, 0x02}, TTLHistoricalSeries)
	require.NoError(t, err)

	var data []byte
	err = db.QueryRow("SELECT data FROM price_series WHERE cache_key = ?", "AAPL|2024-01-01|2024-02-01").Scan(&data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)
}

func TestStoreUpsert(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	require.NoError(t, repo.Store(TableCashFlow, "MSFT", []byte("v1"), time.Hour))
	require.NoError(t, repo.Store(TableCashFlow, "MSFT", []byte("v2"), time.Hour))

	count, err := repo.Count(TableCashFlow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	data, err := repo.GetIfFresh(TableCashFlow, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestStoreInvalidTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	err := repo.Store("users; DROP TABLE price_series", "x", []byte("x"), time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")
}

func TestGetIfFresh(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	require.NoError(t, repo.Store(TableIncomeStatement, "IBM", []byte(`{"annualReports":[]}`), time.Hour))

	data, err := repo.GetIfFresh(TableIncomeStatement, "IBM")
	require.NoError(t, err)
	assert.Equal(t, `{"annualReports":[]}`, string(data))
}

func TestGetIfFreshExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	_, err := db.Exec("INSERT INTO alphavantage_balance_sheet (symbol, data, expires_at) VALUES (?, ?, ?)",
		"IBM", []byte("old"), time.Now().Add(-time.Hour).Unix())
	require.NoError(t, err)

	data, err := repo.GetIfFresh(TableBalanceSheet, "IBM")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetIfFreshMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	data, err := repo.GetIfFresh(TableInsider, "NOPE")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetReturnsStaleData(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	_, err := db.Exec("INSERT INTO price_series (cache_key, data, expires_at) VALUES (?, ?, ?)",
		"SPY|2020-01-01|2021-01-01", []byte("stale"), time.Now().Add(-24*time.Hour).Unix())
	require.NoError(t, err)

	data, err := repo.Get(TablePriceSeries, "SPY|2020-01-01|2021-01-01")
	require.NoError(t, err)
	assert.Equal(t, "stale", string(data))
}

func TestGetMissing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	data, err := repo.Get(TablePriceSeries, "missing")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetInvalidTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	_, err := repo.Get("openfigi", "x")
	assert.Error(t, err)

	_, err = repo.GetIfFresh("openfigi", "x")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	require.NoError(t, repo.Store(TableInsider, "TSLA", []byte("x"), time.Hour))
	require.NoError(t, repo.Delete(TableInsider, "TSLA"))

	data, err := repo.Get(TableInsider, "TSLA")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestDeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	now := time.Now()
	_, err := db.Exec("INSERT INTO alphavantage_insider (symbol, data, expires_at) VALUES (?, ?, ?), (?, ?, ?), (?, ?, ?)",
		"OLD1", []byte("a"), now.Add(-2*time.Hour).Unix(),
		"OLD2", []byte("b"), now.Add(-time.Hour).Unix(),
		"NEW", []byte("c"), now.Add(time.Hour).Unix())
	require.NoError(t, err)

	deleted, err := repo.DeleteExpired(TableInsider)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	count, err := repo.Count(TableInsider)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCount(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	count, err := repo.Count(TablePriceSeries)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	require.NoError(t, repo.Store(TablePriceSeries, "a", []byte("1"), time.Hour))
	require.NoError(t, repo.Store(TablePriceSeries, "b", []byte("2"), -time.Hour))

	count, err = repo.Count(TablePriceSeries)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = repo.Count("nope")
	assert.Error(t, err)
}

func TestRepositoryClock(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	require.NoError(t, repo.Store(TableInsider, "AAPL", []byte("x"), time.Hour))

	repo.now = func() time.Time { return fixed.Add(2 * time.Hour) }
	data, err := repo.GetIfFresh(TableInsider, "AAPL")
	require.NoError(t, err)
	assert.Nil(t, data)

	data, err = repo.Get(TableInsider, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
