package backtest

import (
	"context"
	"errors"
	"time"

	"github.com/aristath/backtester/internal/config"
	"github.com/aristath/backtester/internal/domain"
	"github.com/aristath/backtester/pkg/formulas"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Settings controls benchmark choice, metrics and fetching.
type Settings struct {
	BenchmarkSymbol  string
	RiskFreeRate     float64
	AlignmentPolicy  string
	FetchTimeout     time.Duration
	FetchConcurrency int
}

// SettingsFromConfig extracts engine settings from the application config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		BenchmarkSymbol:  cfg.BenchmarkSymbol,
		RiskFreeRate:     cfg.RiskFreeRate,
		AlignmentPolicy:  cfg.AlignmentPolicy,
		FetchTimeout:     cfg.FetchTimeout,
		FetchConcurrency: cfg.FetchConcurrency,
	}
}

// Engine runs backtests. It holds no per-request state and is safe for concurrent use.
type Engine struct {
	provider domain.PriceProvider
	settings Settings
	log      zerolog.Logger
}

// NewEngine creates a backtest engine reading prices from provider.
func NewEngine(provider domain.PriceProvider, settings Settings, log zerolog.Logger) *Engine {
	if settings.BenchmarkSymbol == "" {
		settings.BenchmarkSymbol = "^GSPC"
	}
	if settings.AlignmentPolicy == "" {
		settings.AlignmentPolicy = config.AlignmentIntersection
	}
	if settings.FetchTimeout <= 0 {
		settings.FetchTimeout = 15 * time.Second
	}
	if settings.FetchConcurrency <= 0 {
		settings.FetchConcurrency = 4
	}
	return &Engine{
		provider: provider,
		settings: settings,
		log:      log.With().Str("component", "backtest_engine").Logger(),
	}
}

// Run fetches every distinct holding ticker and the benchmark, aligns them and
// computes metrics. req is expected to come from ParseRequest.
// Any fetch failure aborts the run with a DataUnavailable error naming the ticker.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	return e.RunWithID(ctx, uuid.NewString(), req)
}

// RunWithID is Run with a caller-supplied run identifier for log correlation.
func (e *Engine) RunWithID(ctx context.Context, runID string, req Request) (*Result, error) {
	if len(req.Portfolio) == 0 {
		return nil, domain.InvalidRequest("portfolio must contain at least one holding")
	}
	return e.run(ctx, runID, req)
}

func (e *Engine) run(ctx context.Context, runID string, req Request) (*Result, error) {
	log := e.log.With().Str("run_id", runID).Logger()
	started := time.Now()

	series, benchmark, err := e.fetchAll(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("ticker", domain.TickerOf(err)).Msg("Backtest aborted: market data unavailable")
		return nil, err
	}

	valuation, err := Align(e.settings.AlignmentPolicy, req.Portfolio, series, benchmark)
	if err != nil {
		log.Warn().Err(err).Msg("Backtest aborted: series could not be aligned")
		return nil, err
	}

	result := e.assemble(valuation)
	e.logUndefined(log, result)

	log.Info().
		Int("holdings", len(req.Portfolio)).
		Int("dates", valuation.Len()).
		Str("start", domain.FormatDate(req.StartDate)).
		Str("end", domain.FormatDate(req.EndDate)).
		Dur("duration", time.Since(started)).
		Msg("Backtest complete")

	return result, nil
}

// fetchAll retrieves each distinct ticker once plus the benchmark, bounded by
// FetchConcurrency. The first failure cancels the remaining fetches.
func (e *Engine) fetchAll(ctx context.Context, req Request) (map[string]domain.PriceSeries, domain.PriceSeries, error) {
	tickers := req.Portfolio.Tickers()
	results := make([]domain.PriceSeries, len(tickers))
	var benchmark domain.PriceSeries

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.settings.FetchConcurrency)

	for i, ticker := range tickers {
		i, ticker := i, ticker
		g.Go(func() error {
			s, err := e.fetch(gctx, ticker, req.StartDate, req.EndDate)
			if err != nil {
				return err
			}
			results[i] = s
			return nil
		})
	}
	g.Go(func() error {
		s, err := e.fetch(gctx, e.settings.BenchmarkSymbol, req.StartDate, req.EndDate)
		if err != nil {
			return err
		}
		benchmark = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, domain.PriceSeries{}, err
	}

	series := make(map[string]domain.PriceSeries, len(tickers))
	for i, ticker := range tickers {
		series[ticker] = results[i]
	}
	return series, benchmark, nil
}

// fetch applies the per-fetch deadline and classifies every failure as DataUnavailable.
func (e *Engine) fetch(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error) {
	fctx, cancel := context.WithTimeout(ctx, e.settings.FetchTimeout)
	defer cancel()

	s, err := e.provider.FetchSeries(fctx, ticker, start, end)
	if err != nil {
		if errors.Is(fctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return domain.PriceSeries{}, domain.DataUnavailable(ticker, "timed out fetching price history", err)
		}
		if domain.KindOf(err) == domain.KindDataUnavailable && domain.TickerOf(err) != "" {
			return domain.PriceSeries{}, err
		}
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, "failed to fetch price history", err)
	}

	s = s.Between(start, end)
	if s.IsEmpty() {
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, "no price data in requested range", nil)
	}
	s.Ticker = ticker

	return s, nil
}

func (e *Engine) assemble(v Valuation) *Result {
	points := make([]PerformancePoint, v.Len())
	for i := range v.Dates {
		points[i] = PerformancePoint{
			Date:           v.Dates[i],
			PortfolioValue: v.Portfolio[i],
			BenchmarkValue: v.Benchmark[i],
		}
	}

	return &Result{
		PerformanceData:      points,
		PortfolioReturn:      formulas.TotalReturn(v.Portfolio),
		BenchmarkReturn:      formulas.TotalReturn(v.Benchmark),
		PortfolioSharpeRatio: formulas.SharpeFromValues(v.Portfolio, e.settings.RiskFreeRate),
		BenchmarkSharpeRatio: formulas.SharpeFromValues(v.Benchmark, e.settings.RiskFreeRate),
	}
}

// logUndefined records each metric degraded to null. These never fail the run.
func (e *Engine) logUndefined(log zerolog.Logger, r *Result) {
	metrics := []struct {
		name  string
		value *float64
	}{
		{"portfolioReturn", r.PortfolioReturn},
		{"sp500Return", r.BenchmarkReturn},
		{"portfolioSharpeRatio", r.PortfolioSharpeRatio},
		{"sp500SharpeRatio", r.BenchmarkSharpeRatio},
	}
	for _, m := range metrics {
		if m.value == nil {
			log.Debug().Err(domain.ComputationUndefined(m.name, "insufficient or degenerate data")).Msg("Metric undefined")
		}
	}
}
