package backtest

import (
	"fmt"
	"time"

	"github.com/aristath/backtester/internal/config"
	"github.com/aristath/backtester/internal/domain"
)

// Align combines the holding series into a portfolio valuation next to the benchmark.
// series maps each distinct ticker to its fetched closes.
func Align(policy string, portfolio domain.Portfolio, series map[string]domain.PriceSeries, benchmark domain.PriceSeries) (Valuation, error) {
	switch policy {
	case config.AlignmentIntersection, "":
		return alignIntersection(portfolio, series, benchmark)
	case config.AlignmentIndex:
		return alignIndex(portfolio, series, benchmark)
	default:
		return Valuation{}, fmt.Errorf("unknown alignment policy %q", policy)
	}
}

// alignIntersection keeps only the dates every holding and the benchmark traded.
func alignIntersection(portfolio domain.Portfolio, series map[string]domain.PriceSeries, benchmark domain.PriceSeries) (Valuation, error) {
	closes := make(map[string]map[int64]float64, len(series))
	for ticker, s := range series {
		byDate := make(map[int64]float64, s.Len())
		for _, p := range s.Points {
			byDate[dayKey(p.Date)] = p.Close
		}
		closes[ticker] = byDate
	}

	v := Valuation{}
	for _, bp := range benchmark.Points {
		key := dayKey(bp.Date)

		total, ok := 0.0, true
		for _, h := range portfolio {
			price, found := closes[h.Ticker][key]
			if !found {
				ok = false
				break
			}
			total += h.Shares * price
		}
		if !ok {
			continue
		}

		v.Dates = append(v.Dates, domain.TruncateDate(bp.Date))
		v.Portfolio = append(v.Portfolio, total)
		v.Benchmark = append(v.Benchmark, bp.Close)
	}

	if v.Len() == 0 {
		return Valuation{}, domain.DataUnavailable("", "no common trading dates across portfolio and benchmark", nil)
	}

	return v, nil
}

// alignIndex pairs observations by position. Dates come from the first holding,
// and every series is cut to the shortest length.
func alignIndex(portfolio domain.Portfolio, series map[string]domain.PriceSeries, benchmark domain.PriceSeries) (Valuation, error) {
	n := benchmark.Len()
	for _, h := range portfolio {
		if l := series[h.Ticker].Len(); l < n {
			n = l
		}
	}
	if n == 0 {
		return Valuation{}, domain.DataUnavailable("", "no trading dates to align", nil)
	}

	first := series[portfolio[0].Ticker]

	v := Valuation{
		Dates:     make([]time.Time, n),
		Portfolio: make([]float64, n),
		Benchmark: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		v.Dates[i] = first.Points[i].Date
		for _, h := range portfolio {
			v.Portfolio[i] += h.Shares * series[h.Ticker].Points[i].Close
		}
		v.Benchmark[i] = benchmark.Points[i].Close
	}

	return v, nil
}

func dayKey(t time.Time) int64 {
	return domain.TruncateDate(t).Unix()
}
