// Package clientdata provides persistent caching for external API client responses.
// Payloads are stored as opaque blobs with expiration timestamps for cache-first behavior.
package clientdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Table names in client_data.db.
const (
	TablePriceSeries     = "price_series"
	TableInsider         = "alphavantage_insider"
	TableIncomeStatement = "alphavantage_income_statement"
	TableBalanceSheet    = "alphavantage_balance_sheet"
	TableCashFlow        = "alphavantage_cash_flow"
)

// AllTables lists all tables in client_data.db for cleanup operations.
var AllTables = []string{
	TablePriceSeries,
	TableInsider,
	TableIncomeStatement,
	TableBalanceSheet,
	TableCashFlow,
}

// validTables is a set for O(1) table name validation.
var validTables = func() map[string]bool {
	m := make(map[string]bool, len(AllTables))
	for _, t := range AllTables {
		m[t] = true
	}
	return m
}()

// Repository provides cache operations for client data.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new client data repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// validateTable ensures the table name is in our allowed list.
// Table names are interpolated into SQL, so only known names pass.
func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid table name: %s", table)
	}
	return nil
}

// getKeyColumn returns the primary key column name for a table.
func getKeyColumn(table string) string {
	if table == TablePriceSeries {
		return "cache_key"
	}
	return "symbol"
}

// Store saves data with expiration = now + ttl.
// Uses INSERT OR REPLACE to upsert data.
func (r *Repository) Store(table, key string, data []byte, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	expiresAt := r.now().Add(ttl).Unix()

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s, data, expires_at) VALUES (?, ?, ?)",
		table, getKeyColumn(table),
	)

	if _, err := r.db.Exec(query, key, data, expiresAt); err != nil {
		return fmt.Errorf("failed to store data in %s: %w", table, err)
	}

	return nil
}

// GetIfFresh returns data only if expires_at > now.
// Returns nil, nil if the key doesn't exist or data is expired.
func (r *Repository) GetIfFresh(table, key string) ([]byte, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT data FROM %s WHERE %s = ? AND expires_at > ?",
		table, getKeyColumn(table),
	)

	return r.scanData(table, query, key, r.now().Unix())
}

// Get returns data regardless of expiration status.
// Use this as a fallback when API calls fail - stale data is better than no data.
// Returns nil, nil if the key doesn't exist.
func (r *Repository) Get(table, key string) ([]byte, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT data FROM %s WHERE %s = ?", table, getKeyColumn(table))

	return r.scanData(table, query, key)
}

func (r *Repository) scanData(table, query string, args ...interface{}) ([]byte, error) {
	var data []byte
	err := r.db.QueryRow(query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data from %s: %w", table, err)
	}
	return data, nil
}

// Delete removes a specific entry.
func (r *Repository) Delete(table, key string) error {
	if err := validateTable(table); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, getKeyColumn(table))

	if _, err := r.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}

	return nil
}

// DeleteExpired removes all rows where expires_at < now.
// Returns the number of rows deleted.
func (r *Repository) DeleteExpired(table string) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table)

	result, err := r.db.Exec(query, r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected for %s: %w", table, err)
	}

	return deleted, nil
}

// Count returns the number of rows, fresh or stale, in a table.
func (r *Repository) Count(table string) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}
