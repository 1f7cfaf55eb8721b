package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// Quarterly financial data (updates with filings)
	TTLIncomeStatement = 45 * 24 * time.Hour
	TTLBalanceSheet    = 45 * 24 * time.Hour
	TTLCashFlow        = 45 * 24 * time.Hour

	// Daily data (time-sensitive signals)
	TTLInsider = 24 * time.Hour

	// Closed historical ranges do not change; ranges reaching today do
	TTLHistoricalSeries = 7 * 24 * time.Hour
	TTLRecentSeries     = 15 * time.Minute
)
