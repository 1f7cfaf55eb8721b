package stocks

import (
	"context"
	"sync"
	"time"

	"github.com/aristath/backtester/internal/clients/alphavantage"
	"github.com/aristath/backtester/internal/clients/yahoo"
	"github.com/aristath/backtester/internal/domain"
	"github.com/rs/zerolog"
)

const (
	// HistoryDays is the length of the overview price chart.
	HistoryDays = 90
	// MaxNews is the number of headlines returned.
	MaxNews = 5
	// MaxInsiderSales is the number of insider transactions returned.
	MaxInsiderSales = 5
)

// NewsSource fetches headlines for a ticker.
type NewsSource interface {
	FetchNews(ctx context.Context, ticker string, limit int) ([]yahoo.NewsItem, error)
}

// AnalystSource fetches analyst coverage and descriptive data for a symbol.
type AnalystSource interface {
	GetAnalystRatings(symbol string) (*yahoo.AnalystRatings, error)
	GetPriceTarget(symbol string) (*yahoo.PriceTarget, error)
	GetProfile(symbol string) (*yahoo.Profile, error)
}

// Service builds stock overviews.
type Service struct {
	prices       domain.PriceProvider
	news         NewsSource
	analyst      AnalystSource
	fundamentals alphavantage.ClientInterface
	fetchTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

// NewService creates a stock overview service. news, analyst and fundamentals may be nil,
// in which case their datasets are always absent.
func NewService(
	prices domain.PriceProvider,
	news NewsSource,
	analyst AnalystSource,
	fundamentals alphavantage.ClientInterface,
	fetchTimeout time.Duration,
	log zerolog.Logger,
) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = 15 * time.Second
	}
	return &Service{
		prices:       prices,
		news:         news,
		analyst:      analyst,
		fundamentals: fundamentals,
		fetchTimeout: fetchTimeout,
		now:          time.Now,
		log:          log.With().Str("service", "stocks").Logger(),
	}
}

// GetOverview returns the overview of ticker. Only the price history is required;
// a failure there is a DataUnavailable error. Supplementary datasets are gathered
// concurrently and degrade to absent on failure.
func (s *Service) GetOverview(ctx context.Context, ticker string) (*Overview, error) {
	ticker = domain.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, domain.InvalidRequest("ticker is required")
	}

	overview := &Overview{Ticker: ticker}

	var wg sync.WaitGroup
	var mu sync.Mutex
	supplement := func(fn func(ctx context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
			defer cancel()
			fn(fctx)
		}()
	}

	supplement(func(ctx context.Context) {
		news := s.fetchNews(ctx, ticker)
		mu.Lock()
		overview.News = news
		mu.Unlock()
	})
	supplement(func(ctx context.Context) {
		sales := s.fetchInsiderSales(ctx, ticker)
		mu.Lock()
		overview.InsiderSales = sales
		mu.Unlock()
	})
	supplement(func(ctx context.Context) {
		ratings := s.fetchRatings(ticker)
		mu.Lock()
		overview.AnalystRatings = ratings
		mu.Unlock()
	})
	supplement(func(ctx context.Context) {
		target := s.fetchPriceTarget(ticker)
		mu.Lock()
		overview.PriceTarget = target
		mu.Unlock()
	})
	supplement(func(ctx context.Context) {
		profile := s.fetchProfile(ticker)
		mu.Lock()
		overview.Profile = profile
		mu.Unlock()
	})
	supplement(func(ctx context.Context) {
		statements := s.fetchStatements(ctx, ticker)
		mu.Lock()
		overview.FinancialStatements = statements
		mu.Unlock()
	})

	points, err := s.fetchHistory(ctx, ticker)
	wg.Wait()
	if err != nil {
		return nil, err
	}
	overview.StockData = points

	return overview, nil
}

func (s *Service) fetchHistory(ctx context.Context, ticker string) ([]PricePoint, error) {
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	end := domain.TruncateDate(s.now().UTC()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -HistoryDays)

	series, err := s.prices.FetchSeries(fctx, ticker, start, end)
	if err != nil {
		if domain.KindOf(err) == domain.KindDataUnavailable {
			return nil, err
		}
		return nil, domain.DataUnavailable(ticker, "failed to fetch price history", err)
	}

	points := make([]PricePoint, 0, series.Len())
	for _, p := range series.Points {
		points = append(points, PricePoint{Date: p.Date, Price: p.Close})
	}
	return points, nil
}

func (s *Service) fetchNews(ctx context.Context, ticker string) domain.Optional[[]Headline] {
	if s.news == nil {
		return domain.None[[]Headline]()
	}

	items, err := s.news.FetchNews(ctx, ticker, MaxNews)
	if err != nil {
		s.warn(err, ticker, "news")
		return domain.None[[]Headline]()
	}

	headlines := make([]Headline, 0, len(items))
	for _, item := range items {
		headlines = append(headlines, Headline{Headline: item.Headline, Publisher: item.Publisher, Link: item.Link})
		if len(headlines) == MaxNews {
			break
		}
	}
	return domain.Some(headlines)
}

func (s *Service) fetchInsiderSales(ctx context.Context, ticker string) domain.Optional[[]InsiderSale] {
	if s.fundamentals == nil || !s.fundamentals.Enabled() {
		return domain.None[[]InsiderSale]()
	}

	txs, err := s.fundamentals.GetInsiderTransactions(ctx, ticker)
	if err != nil {
		s.warn(err, ticker, "insider_transactions")
		return domain.None[[]InsiderSale]()
	}

	if len(txs) > MaxInsiderSales {
		txs = txs[:MaxInsiderSales]
	}
	sales := make([]InsiderSale, 0, len(txs))
	for _, tx := range txs {
		sales = append(sales, InsiderSale{Insider: tx.Executive, Shares: tx.Shares})
	}
	return domain.Some(sales)
}

func (s *Service) fetchRatings(ticker string) domain.Optional[AnalystRatings] {
	if s.analyst == nil {
		return domain.None[AnalystRatings]()
	}

	r, err := s.analyst.GetAnalystRatings(ticker)
	if err != nil {
		s.warn(err, ticker, "analyst_ratings")
		return domain.None[AnalystRatings]()
	}
	if r == nil || r.Total() == 0 {
		return domain.None[AnalystRatings]()
	}
	return domain.Some(AnalystRatings{Buy: r.Buy, Hold: r.Hold, Sell: r.Sell})
}

func (s *Service) fetchPriceTarget(ticker string) domain.Optional[PriceTarget] {
	if s.analyst == nil {
		return domain.None[PriceTarget]()
	}

	t, err := s.analyst.GetPriceTarget(ticker)
	if err != nil {
		s.warn(err, ticker, "price_target")
		return domain.None[PriceTarget]()
	}
	// no analysts means no consensus to report
	if t == nil || t.NumAnalysts == 0 {
		return domain.None[PriceTarget]()
	}
	return domain.Some(PriceTarget{
		Mean:           t.Mean,
		Median:         t.Median,
		Current:        t.Current,
		NumAnalysts:    t.NumAnalysts,
		Recommendation: t.Recommendation,
		UpsidePct:      t.UpsidePct,
	})
}

func (s *Service) fetchProfile(ticker string) domain.Optional[Profile] {
	if s.analyst == nil {
		return domain.None[Profile]()
	}

	p, err := s.analyst.GetProfile(ticker)
	if err != nil {
		s.warn(err, ticker, "profile")
		return domain.None[Profile]()
	}
	if p == nil || p.Name == "" {
		return domain.None[Profile]()
	}
	return domain.Some(Profile{
		Name:      p.Name,
		Industry:  p.Industry,
		Country:   p.Country,
		Exchange:  p.Exchange,
		QuoteType: p.QuoteType,
		MarketCap: p.MarketCap,
	})
}

func (s *Service) fetchStatements(ctx context.Context, ticker string) domain.Optional[FinancialStatements] {
	if s.fundamentals == nil || !s.fundamentals.Enabled() {
		return domain.None[FinancialStatements]()
	}

	var fs FinancialStatements
	fetchers := []statementFetch{
		{"income_statement", s.fundamentals.GetIncomeStatement, &fs.IncomeStatement},
		{"balance_sheet", s.fundamentals.GetBalanceSheet, &fs.BalanceSheet},
		{"cash_flow", s.fundamentals.GetCashFlow, &fs.CashFlow},
	}

	present := false
	for _, f := range fetchers {
		stmt, err := f.fetch(ctx, ticker)
		if err != nil {
			s.warn(err, ticker, f.name)
			continue
		}
		*f.dest = domain.Some(Statement(stmt.ByPeriod()))
		present = true
	}

	if !present {
		return domain.None[FinancialStatements]()
	}
	return domain.Some(fs)
}

type statementFetch struct {
	name  string
	fetch func(context.Context, string) (*alphavantage.Statement, error)
	dest  *domain.Optional[Statement]
}

func (s *Service) warn(err error, ticker, dataset string) {
	s.log.Warn().Err(err).
		Str("ticker", ticker).
		Str("dataset", dataset).
		Msg("Supplementary dataset unavailable, omitting from overview")
}
