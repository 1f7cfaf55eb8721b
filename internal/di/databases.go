// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/aristath/backtester/internal/config"
	"github.com/aristath/backtester/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens client_data.db and applies its schema
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// client_data.db - Upstream response cache (price series, Alpha Vantage payloads)
	clientDataDB, err := database.New(database.Config{
		Path:    cfg.ClientDataDBPath(),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize client_data database: %w", err)
	}

	if err := clientDataDB.Migrate(); err != nil {
		clientDataDB.Close()
		return nil, fmt.Errorf("failed to migrate client_data database: %w", err)
	}
	container.ClientDataDB = clientDataDB

	log.Info().
		Str("path", clientDataDB.Path()).
		Str("profile", string(clientDataDB.Profile())).
		Msg("Database initialized")

	return container, nil
}
