// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/backtester/internal/clientdata"
	"github.com/aristath/backtester/internal/clients/alphavantage"
	"github.com/aristath/backtester/internal/clients/yahoo"
	"github.com/aristath/backtester/internal/database"
	"github.com/aristath/backtester/internal/domain"
	"github.com/aristath/backtester/internal/modules/backtest"
	"github.com/aristath/backtester/internal/modules/stocks"
	"github.com/aristath/backtester/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is the single source of truth for service instances and is handed to the
// HTTP server for route registration.
type Container struct {
	// Storage
	ClientDataDB   *database.DB
	ClientDataRepo *clientdata.Repository

	// Upstream clients
	YahooClient        *yahoo.Client
	YahooNativeClient  *yahoo.NativeClient
	AlphaVantageClient *alphavantage.Client

	// PriceProvider is the Yahoo client, decorated with the persistent cache when enabled.
	PriceProvider domain.PriceProvider

	// Services
	BacktestEngine *backtest.Engine
	StockService   *stocks.Service

	// Background jobs
	Scheduler  *scheduler.Scheduler
	CleanupJob *clientdata.CleanupJob
}

// Close releases resources held by the container. The scheduler is stopped
// before the database so no job runs against a closed connection.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.ClientDataDB != nil {
		return c.ClientDataDB.Close()
	}
	return nil
}
