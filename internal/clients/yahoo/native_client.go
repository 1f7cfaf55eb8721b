package yahoo

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// NativeClient reads quote-level data through the go-yfinance library
type NativeClient struct {
	log zerolog.Logger
}

// NewNativeClient creates a new native Yahoo Finance client
func NewNativeClient(log zerolog.Logger) *NativeClient {
	return &NativeClient{
		log: log.With().Str("client", "yahoo-native").Logger(),
	}
}

// GetAnalystRatings counts buy/hold/sell opinions from the most recent recommendation period
func (c *NativeClient) GetAnalystRatings(symbol string) (*AnalystRatings, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	recommendations, err := t.Recommendations()
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}

	if recommendations == nil || len(recommendations.Trend) == 0 {
		return nil, fmt.Errorf("no recommendation trend for %s", symbol)
	}

	// The first period is the most recent
	latest := recommendations.Trend[0]
	ratings := &AnalystRatings{
		Buy:  int(latest.StrongBuy) + int(latest.Buy),
		Hold: int(latest.Hold),
		Sell: int(latest.Sell) + int(latest.StrongSell),
	}

	c.log.Debug().
		Str("symbol", symbol).
		Int("buy", ratings.Buy).
		Int("hold", ratings.Hold).
		Int("sell", ratings.Sell).
		Msg("Fetched analyst ratings")

	return ratings, nil
}

// GetPriceTarget fetches the consensus price target
func (c *NativeClient) GetPriceTarget(symbol string) (*PriceTarget, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	priceTarget, err := t.AnalystPriceTargets()
	if err != nil {
		return nil, fmt.Errorf("failed to get price targets: %w", err)
	}

	currentPrice := priceTarget.Current
	if currentPrice == 0 {
		if quote, err := t.Quote(); err == nil && quote != nil {
			currentPrice = quote.RegularMarketPrice
		}
	}

	targetPrice := priceTarget.Mean
	if targetPrice == 0 {
		targetPrice = priceTarget.Median
	}

	recommendation := priceTarget.RecommendationKey
	if recommendation == "" {
		recommendation = "hold"
	}

	return &PriceTarget{
		Symbol:         symbol,
		Mean:           priceTarget.Mean,
		Median:         priceTarget.Median,
		Current:        currentPrice,
		NumAnalysts:    priceTarget.NumberOfAnalysts,
		Recommendation: strings.ToLower(recommendation),
		UpsidePct:      upsidePct(currentPrice, targetPrice),
	}, nil
}

// GetProfile fetches descriptive data for a symbol
func (c *NativeClient) GetProfile(symbol string) (*Profile, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	name := info.LongName
	if name == "" {
		name = info.ShortName
	}

	profile := &Profile{
		Symbol:    symbol,
		Name:      name,
		Industry:  info.Industry,
		Country:   info.Country,
		Exchange:  info.Exchange,
		QuoteType: info.QuoteType,
	}
	if info.MarketCap > 0 {
		profile.MarketCap = int64(info.MarketCap)
	}

	return profile, nil
}

// upsidePct is the percentage distance from current to target, zero when either is unknown
func upsidePct(current, target float64) float64 {
	if current <= 0 || target <= 0 {
		return 0
	}
	return ((target - current) / current) * 100
}
