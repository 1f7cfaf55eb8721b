package backtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/backtester/internal/domain"
)

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func series(ticker string, dates []string, closes []float64) domain.PriceSeries {
	s := domain.PriceSeries{Ticker: ticker}
	for i, d := range dates {
		s.Points = append(s.Points, domain.PricePoint{Date: day(d), Close: closes[i]})
	}
	return s
}

func floatPtr(v float64) *float64 {
	return &v
}

// fakeProvider serves fixed series and records how often each ticker was requested.
type fakeProvider struct {
	mu     sync.Mutex
	data   map[string]domain.PriceSeries
	calls  map[string]int
	block  map[string]bool
	failed map[string]error
}

func newFakeProvider(all ...domain.PriceSeries) *fakeProvider {
	p := &fakeProvider{
		data:   make(map[string]domain.PriceSeries),
		calls:  make(map[string]int),
		block:  make(map[string]bool),
		failed: make(map[string]error),
	}
	for _, s := range all {
		p.data[s.Ticker] = s
	}
	return p
}

func (p *fakeProvider) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error) {
	p.mu.Lock()
	p.calls[ticker]++
	block := p.block[ticker]
	failure := p.failed[ticker]
	s, ok := p.data[ticker]
	p.mu.Unlock()

	if block {
		<-ctx.Done()
		return domain.PriceSeries{}, ctx.Err()
	}
	if failure != nil {
		return domain.PriceSeries{}, failure
	}
	if !ok {
		return domain.PriceSeries{}, fmt.Errorf("unknown symbol %s", ticker)
	}
	return s, nil
}

func (p *fakeProvider) callsFor(ticker string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[ticker]
}
