package backtest

import (
	"math"

	"github.com/aristath/backtester/internal/domain"
)

// ParseRequest validates a request body. Every failure is an InvalidRequest error,
// detected before any market data is fetched.
func ParseRequest(body RequestBody) (Request, error) {
	if len(body.Portfolio) == 0 {
		return Request{}, domain.InvalidRequest("portfolio must contain at least one holding")
	}

	portfolio := make(domain.Portfolio, 0, len(body.Portfolio))
	for i, h := range body.Portfolio {
		ticker := domain.NormalizeTicker(h.Ticker)
		if ticker == "" {
			return Request{}, domain.InvalidRequest("portfolio[%d]: ticker is required", i)
		}
		if h.Shares == nil {
			return Request{}, domain.InvalidRequest("portfolio[%d] (%s): shares is required", i, ticker)
		}
		shares := *h.Shares
		if math.IsNaN(shares) || math.IsInf(shares, 0) || shares <= 0 {
			return Request{}, domain.InvalidRequest("portfolio[%d] (%s): shares must be a positive number", i, ticker)
		}
		portfolio = append(portfolio, domain.Holding{Ticker: ticker, Shares: shares})
	}

	if body.StartDate == "" {
		return Request{}, domain.InvalidRequest("startDate is required")
	}
	if body.EndDate == "" {
		return Request{}, domain.InvalidRequest("endDate is required")
	}

	start, err := domain.ParseDate(body.StartDate)
	if err != nil {
		return Request{}, domain.InvalidRequest("startDate: %v", err)
	}
	end, err := domain.ParseDate(body.EndDate)
	if err != nil {
		return Request{}, domain.InvalidRequest("endDate: %v", err)
	}
	if !start.Before(end) {
		return Request{}, domain.InvalidRequest("startDate must be before endDate")
	}

	return Request{Portfolio: portfolio, StartDate: start, EndDate: end}, nil
}
