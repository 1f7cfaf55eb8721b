package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aristath/backtester/internal/clientdata"
	"github.com/aristath/backtester/internal/config"
	"github.com/aristath/backtester/internal/di"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// CacheCounter reports the number of cached entries per table
type CacheCounter interface {
	Count(table string) (int64, error)
}

// JobLister lists registered background jobs
type JobLister interface {
	Jobs() []string
}

// QuotaReporter exposes the Alpha Vantage request budget
type QuotaReporter interface {
	Enabled() bool
	GetRemainingRequests() int
}

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log        zerolog.Logger
	dataDir    string
	priceCache bool
	cache      CacheCounter
	jobs       JobLister
	quota      QuotaReporter
	startedAt  time.Time
	stats      func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance. cache, jobs and quota may be nil.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	priceCache bool,
	cache CacheCounter,
	jobs JobLister,
	quota QuotaReporter,
) *SystemHandlers {
	h := &SystemHandlers{
		log:        log.With().Str("component", "system_handlers").Logger(),
		dataDir:    dataDir,
		priceCache: priceCache,
		cache:      cache,
		jobs:       jobs,
		quota:      quota,
		startedAt:  time.Now(),
	}
	h.stats = h.getSystemStats
	return h
}

// newSystemHandlersFromContainer picks the monitoring sources out of the container,
// leaving nil interfaces for anything the container does not hold.
func newSystemHandlersFromContainer(log zerolog.Logger, cfg *config.Config, c *di.Container) *SystemHandlers {
	var (
		dataDir    string
		priceCache bool
		cache      CacheCounter
		jobs       JobLister
		quota      QuotaReporter
	)
	if cfg != nil {
		dataDir = cfg.DataDir
		priceCache = cfg.PriceCacheEnabled
	}
	if c != nil {
		if c.ClientDataRepo != nil {
			cache = c.ClientDataRepo
		}
		if c.Scheduler != nil {
			jobs = c.Scheduler
		}
		if c.AlphaVantageClient != nil {
			quota = c.AlphaVantageClient
		}
	}
	return NewSystemHandlers(log, dataDir, priceCache, cache, jobs, quota)
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status            string              `json:"status"` // "healthy" or "degraded"
	Service           string              `json:"service"`
	Version           string              `json:"version"`
	UptimeSeconds     int64               `json:"uptime_seconds"`
	CPUPercent        float64             `json:"cpu_percent"`
	RAMPercent        float64             `json:"ram_percent"`
	DataDirMB         float64             `json:"data_dir_mb"`
	PriceCacheEnabled bool                `json:"price_cache_enabled"`
	CacheEntries      map[string]int64    `json:"cache_entries"`
	ScheduledJobs     []string            `json:"scheduled_jobs"`
	AlphaVantage      *AlphaVantageStatus `json:"alphavantage,omitempty"`
}

// AlphaVantageStatus reports whether fundamentals are available and the remaining daily budget
type AlphaVantageStatus struct {
	Enabled           bool `json:"enabled"`
	RemainingRequests int  `json:"remaining_requests"`
}

// GetSystemStatusSnapshot returns a snapshot of the current system status.
// A cache read failure marks the status as degraded and is returned alongside the snapshot.
func (h *SystemHandlers) GetSystemStatusSnapshot() (SystemStatusResponse, error) {
	cpuPercent, ramPercent := h.stats()

	response := SystemStatusResponse{
		Status:            "healthy",
		Service:           serviceName,
		Version:           version,
		UptimeSeconds:     int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:        cpuPercent,
		RAMPercent:        ramPercent,
		DataDirMB:         h.getDirSize(h.dataDir),
		PriceCacheEnabled: h.priceCache,
		CacheEntries:      make(map[string]int64),
		ScheduledJobs:     []string{},
	}

	var firstErr error
	if h.cache != nil {
		for _, table := range clientdata.AllTables {
			count, err := h.cache.Count(table)
			if err != nil {
				h.log.Error().Err(err).Str("table", table).Msg("Failed to count cache entries")
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			response.CacheEntries[table] = count
		}
	}
	if firstErr != nil {
		response.Status = "degraded"
	}

	if h.jobs != nil {
		response.ScheduledJobs = append(response.ScheduledJobs, h.jobs.Jobs()...)
	}

	if h.quota != nil {
		response.AlphaVantage = &AlphaVantageStatus{
			Enabled:           h.quota.Enabled(),
			RemainingRequests: h.quota.GetRemainingRequests(),
		}
	}

	return response, firstErr
}

// HandleSystemStatus returns comprehensive system status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	response, err := h.GetSystemStatusSnapshot()
	if err != nil {
		h.log.Warn().Err(err).Msg("System status collected with warnings")
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode system status")
	}
}

// getDirSize returns the total size of files under dirPath in megabytes
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	if dirPath == "" {
		return 0
	}

	var totalSize int64
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("path", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages.
// CPU is sampled over 100ms to keep the endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
