// Package di provides dependency injection for scheduled jobs.
package di

import (
	"fmt"

	"github.com/aristath/backtester/internal/clientdata"
	"github.com/aristath/backtester/internal/config"
	"github.com/aristath/backtester/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the scheduler and registers background jobs. The scheduler
// is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.Scheduler = scheduler.New(log)

	container.CleanupJob = clientdata.NewCleanupJob(container.ClientDataRepo, log)
	if err := container.Scheduler.AddJob(cfg.CacheCleanupSchedule, container.CleanupJob); err != nil {
		return fmt.Errorf("failed to register %s job: %w", container.CleanupJob.Name(), err)
	}

	return nil
}
