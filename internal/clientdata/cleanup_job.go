package clientdata

import (
	"github.com/rs/zerolog"
)

// CleanupSummary counts purged rows, split between the price cache and the
// Alpha Vantage fundamentals tables.
type CleanupSummary struct {
	PriceSeries  int64
	Fundamentals map[string]int64
}

// Total is the number of rows purged across all tables.
func (s CleanupSummary) Total() int64 {
	total := s.PriceSeries
	for _, n := range s.Fundamentals {
		total += n
	}
	return total
}

// CleanupJob purges expired price series and fundamentals from client_data.db.
type CleanupJob struct {
	repo *Repository
	log  zerolog.Logger
}

// NewCleanupJob creates the scheduled cache purge.
func NewCleanupJob(repo *Repository, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		repo: repo,
		log:  log.With().Str("job", "client_data_cleanup").Logger(),
	}
}

// Purge deletes expired rows table by table. On error the summary holds the
// tables purged before the failure.
func (j *CleanupJob) Purge() (CleanupSummary, error) {
	summary := CleanupSummary{Fundamentals: make(map[string]int64)}

	for _, table := range AllTables {
		deleted, err := j.repo.DeleteExpired(table)
		if err != nil {
			return summary, err
		}
		if table == TablePriceSeries {
			summary.PriceSeries = deleted
			continue
		}
		if deleted > 0 {
			summary.Fundamentals[table] = deleted
		}
	}

	return summary, nil
}

// Run executes the purge and logs what it removed.
func (j *CleanupJob) Run() error {
	summary, err := j.Purge()
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to delete expired client data")
		return err
	}

	if summary.Total() == 0 {
		j.log.Debug().Msg("No expired client data")
		return nil
	}

	event := j.log.Info().Int64("price_series", summary.PriceSeries)
	for table, count := range summary.Fundamentals {
		event = event.Int64(table, count)
	}
	event.Int64("total_deleted", summary.Total()).Msg("Client data cleanup completed")

	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "client_data_cleanup"
}
