// Package di provides dependency injection for service implementations.
package di

import (
	"github.com/aristath/backtester/internal/clientdata"
	"github.com/aristath/backtester/internal/clients/alphavantage"
	"github.com/aristath/backtester/internal/clients/yahoo"
	"github.com/aristath/backtester/internal/config"
	"github.com/aristath/backtester/internal/marketdata"
	"github.com/aristath/backtester/internal/modules/backtest"
	"github.com/aristath/backtester/internal/modules/stocks"
	"github.com/rs/zerolog"
)

// InitializeServices creates the upstream clients and the services built on them
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.ClientDataRepo = clientdata.NewRepository(container.ClientDataDB.Conn())

	container.YahooClient = yahoo.NewClient(cfg.YahooBaseURL, log)
	container.YahooNativeClient = yahoo.NewNativeClient(log)
	container.AlphaVantageClient = alphavantage.NewClient(cfg.AlphaVantageAPIKey, container.ClientDataRepo, log)

	if !container.AlphaVantageClient.Enabled() {
		log.Warn().Msg("ALPHAVANTAGE_API_KEY not set, insider and financial statement data disabled")
	}

	container.PriceProvider = container.YahooClient
	if cfg.PriceCacheEnabled {
		container.PriceProvider = marketdata.NewCachedProvider(container.YahooClient, container.ClientDataRepo, log)
	}

	container.BacktestEngine = backtest.NewEngine(container.PriceProvider, backtest.SettingsFromConfig(cfg), log)

	container.StockService = stocks.NewService(
		container.PriceProvider,
		container.YahooClient,
		container.YahooNativeClient,
		container.AlphaVantageClient,
		cfg.FetchTimeout,
		log,
	)

	log.Info().
		Bool("price_cache", cfg.PriceCacheEnabled).
		Str("benchmark", cfg.BenchmarkSymbol).
		Str("alignment", cfg.AlignmentPolicy).
		Msg("Services initialized")

	return nil
}
