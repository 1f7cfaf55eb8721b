package domain

import (
	"context"
	"time"
)

// PriceProvider supplies daily closing prices.
// FetchSeries returns closes for start <= date < end, oldest first. It fails with a
// DataUnavailable error when the symbol is unknown, the range has no trading data,
// or the upstream service cannot be reached. Point dates are read as calendar
// dates in their own location.
type PriceProvider interface {
	FetchSeries(ctx context.Context, ticker string, start, end time.Time) (PriceSeries, error)
}

// PriceProviderFunc adapts a function to PriceProvider.
type PriceProviderFunc func(ctx context.Context, ticker string, start, end time.Time) (PriceSeries, error)

// FetchSeries calls f.
func (f PriceProviderFunc) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (PriceSeries, error) {
	return f(ctx, ticker, start, end)
}
