package testing

import (
	"testing"
	"time"

	"github.com/aristath/backtester/internal/clientdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTestDB_AppliesClientDataSchema(t *testing.T) {
	db := NewTestDB(t, "client_data")

	var count int
	err := db.Conn().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name LIKE 'alphavantage_%'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestNewTestDB_UnknownNameIsEmpty(t *testing.T) {
	db := NewTestDB(t, "scratch")

	var count int
	err := db.Conn().QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table'").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewTestDBWithSchema(t *testing.T) {
	db := NewTestDBWithSchema(t, "scratch", "CREATE TABLE things (id INTEGER PRIMARY KEY)")

	_, err := db.Conn().Exec("INSERT INTO things (id) VALUES (1)")
	assert.NoError(t, err)
}

func TestNewClientDataRepository(t *testing.T) {
	repo := NewClientDataRepository(t)

	require.NoError(t, repo.Store(clientdata.TablePriceSeries, "AAPL|2024-01-01|2024-02-01", []byte("x"), time.Hour))

	data, err := repo.GetIfFresh(clientdata.TablePriceSeries, "AAPL|2024-01-01|2024-02-01")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}
