// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date wire format (ISO 8601, no time component).
const DateLayout = "2006-01-02"

// Holding is one position of a backtest portfolio.
type Holding struct {
	Ticker string  `json:"ticker"`
	Shares float64 `json:"shares"`
}

// Portfolio is an ordered list of holdings. Repeated tickers are allowed and
// their contributions add up.
type Portfolio []Holding

// Tickers returns the distinct tickers in first-seen order.
func (p Portfolio) Tickers() []string {
	seen := make(map[string]bool, len(p))
	tickers := make([]string, 0, len(p))
	for _, h := range p {
		if seen[h.Ticker] {
			continue
		}
		seen[h.Ticker] = true
		tickers = append(tickers, h.Ticker)
	}
	return tickers
}

// PricePoint is a single daily close.
type PricePoint struct {
	Date  time.Time `json:"date" msgpack:"d"`
	Close float64   `json:"close" msgpack:"c"`
}

// PriceSeries holds the daily closes of one symbol, oldest first.
type PriceSeries struct {
	Ticker string       `json:"ticker" msgpack:"t"`
	Points []PricePoint `json:"points" msgpack:"p"`
}

// Len returns the number of points in the series.
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// IsEmpty reports whether the series has no points.
func (s PriceSeries) IsEmpty() bool {
	return len(s.Points) == 0
}

// Values returns the closing prices in date order.
func (s PriceSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Close
	}
	return values
}

// Between returns the points with start <= date < end.
func (s PriceSeries) Between(start, end time.Time) PriceSeries {
	out := PriceSeries{Ticker: s.Ticker, Points: make([]PricePoint, 0, len(s.Points))}
	for _, p := range s.Points {
		if p.Date.Before(start) || !p.Date.Before(end) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// TruncateDate drops the time-of-day, keeping the calendar date the exchange
// reported in t's own location, and returns it as UTC midnight.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
