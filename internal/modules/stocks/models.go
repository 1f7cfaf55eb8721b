// Package stocks assembles a single-ticker overview from price, news, insider,
// analyst and financial statement sources.
package stocks

import (
	"encoding/json"
	"time"

	"github.com/aristath/backtester/internal/domain"
)

// PricePoint is one daily close in the overview chart.
type PricePoint struct {
	Date  time.Time
	Price float64
}

// MarshalJSON renders the date as YYYY-MM-DD.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Price float64 `json:"price"`
	}{domain.FormatDate(p.Date), p.Price})
}

// Headline is one news item.
type Headline struct {
	Headline  string `json:"headline"`
	Publisher string `json:"publisher,omitempty"`
	Link      string `json:"link,omitempty"`
}

// InsiderSale is one insider transaction. The insiderSales field keeps its
// historical name but lists the latest transactions of either direction,
// acquisitions included.
type InsiderSale struct {
	Insider string  `json:"insider"`
	Shares  float64 `json:"shares"`
}

// AnalystRatings counts current analyst opinions.
type AnalystRatings struct {
	Buy  int `json:"buy"`
	Hold int `json:"hold"`
	Sell int `json:"sell"`
}

// PriceTarget is the consensus analyst price target.
type PriceTarget struct {
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	Current        float64 `json:"current"`
	NumAnalysts    int     `json:"numAnalysts"`
	Recommendation string  `json:"recommendation"`
	UpsidePct      float64 `json:"upsidePct"`
}

// Profile describes the company or fund behind a ticker.
type Profile struct {
	Name      string `json:"name"`
	Industry  string `json:"industry,omitempty"`
	Country   string `json:"country,omitempty"`
	Exchange  string `json:"exchange,omitempty"`
	QuoteType string `json:"quoteType,omitempty"`
	MarketCap int64  `json:"marketCap,omitempty"`
}

// Statement maps fiscal period end to line item values.
type Statement map[string]map[string]*float64

// FinancialStatements groups the three annual statements. Each is absent on its own
// when its source failed.
type FinancialStatements struct {
	IncomeStatement domain.Optional[Statement] `json:"income_statement"`
	BalanceSheet    domain.Optional[Statement] `json:"balance_sheet"`
	CashFlow        domain.Optional[Statement] `json:"cash_flow"`
}

// Overview is the response of GET /api/stock/{ticker}.
// StockData is required; every other dataset is null when unavailable.
type Overview struct {
	Ticker              string                               `json:"ticker"`
	StockData           []PricePoint                         `json:"stockData"`
	News                domain.Optional[[]Headline]          `json:"news"`
	InsiderSales        domain.Optional[[]InsiderSale]       `json:"insiderSales"`
	AnalystRatings      domain.Optional[AnalystRatings]      `json:"analystRatings"`
	PriceTarget         domain.Optional[PriceTarget]         `json:"priceTarget"`
	Profile             domain.Optional[Profile]             `json:"profile"`
	FinancialStatements domain.Optional[FinancialStatements] `json:"financialStatements"`
}
