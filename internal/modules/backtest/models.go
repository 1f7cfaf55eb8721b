// Package backtest values a fixed-share portfolio against a benchmark index over a date range.
package backtest

import (
	"encoding/json"
	"time"

	"github.com/aristath/backtester/internal/domain"
)

// Request is a validated backtest request.
type Request struct {
	Portfolio domain.Portfolio
	StartDate time.Time // inclusive
	EndDate   time.Time // exclusive
}

// RequestBody is the JSON request accepted by the HTTP surface.
type RequestBody struct {
	Portfolio []HoldingBody `json:"portfolio"`
	StartDate string        `json:"startDate"`
	EndDate   string        `json:"endDate"`
}

// HoldingBody is one portfolio entry as sent by clients.
// Shares is a pointer so a missing field is distinguishable from zero.
type HoldingBody struct {
	Ticker string   `json:"ticker"`
	Shares *float64 `json:"shares"`
}

// PerformancePoint is the portfolio and benchmark valuation on one aligned date.
type PerformancePoint struct {
	Date           time.Time
	PortfolioValue float64
	BenchmarkValue float64
}

// MarshalJSON renders the point with a YYYY-MM-DD date and the legacy benchmark field name.
func (p PerformancePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date           string  `json:"date"`
		PortfolioValue float64 `json:"portfolioValue"`
		BenchmarkValue float64 `json:"sp500Value"`
	}{
		Date:           domain.FormatDate(p.Date),
		PortfolioValue: p.PortfolioValue,
		BenchmarkValue: p.BenchmarkValue,
	})
}

// Result is the outcome of a backtest. Nil metrics are undefined and render as null.
type Result struct {
	PerformanceData      []PerformancePoint `json:"performanceData"`
	PortfolioReturn      *float64           `json:"portfolioReturn"`
	BenchmarkReturn      *float64           `json:"sp500Return"`
	PortfolioSharpeRatio *float64           `json:"portfolioSharpeRatio"`
	BenchmarkSharpeRatio *float64           `json:"sp500SharpeRatio"`
}

// Valuation is a dated value series produced by alignment.
type Valuation struct {
	Dates     []time.Time
	Portfolio []float64
	Benchmark []float64
}

// Len returns the number of aligned dates.
func (v Valuation) Len() int {
	return len(v.Dates)
}
