package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aristath/backtester/internal/clientdata"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCounter struct {
	counts map[string]int64
	failOn string
}

func (c *stubCounter) Count(table string) (int64, error) {
	if table == c.failOn {
		return 0, errors.New("database is locked")
	}
	return c.counts[table], nil
}

type stubJobs []string

func (j stubJobs) Jobs() []string { return j }

type stubQuota struct {
	enabled   bool
	remaining int
}

func (q stubQuota) Enabled() bool             { return q.enabled }
func (q stubQuota) GetRemainingRequests() int { return q.remaining }

func newStubHandlers(t *testing.T, cache CacheCounter, jobs JobLister, quota QuotaReporter) *SystemHandlers {
	t.Helper()
	h := NewSystemHandlers(zerolog.Nop(), t.TempDir(), true, cache, jobs, quota)
	h.stats = func() (float64, float64) { return 12.5, 40 }
	return h
}

func TestSystemHandlers_HandleSystemStatus(t *testing.T) {
	cache := &stubCounter{counts: map[string]int64{
		clientdata.TablePriceSeries: 7,
		clientdata.TableInsider:     2,
	}}
	h := newStubHandlers(t, cache, stubJobs{"client_data_cleanup"}, stubQuota{enabled: true, remaining: 20})

	req := httptest.NewRequest("GET", "/api/system/status", nil)
	w := httptest.NewRecorder()
	h.HandleSystemStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, "backtester", response.Service)
	assert.Equal(t, 12.5, response.CPUPercent)
	assert.Equal(t, 40.0, response.RAMPercent)
	assert.True(t, response.PriceCacheEnabled)
	assert.Equal(t, int64(7), response.CacheEntries[clientdata.TablePriceSeries])
	assert.Equal(t, int64(2), response.CacheEntries[clientdata.TableInsider])
	assert.Len(t, response.CacheEntries, len(clientdata.AllTables))
	assert.Equal(t, []string{"client_data_cleanup"}, response.ScheduledJobs)
	require.NotNil(t, response.AlphaVantage)
	assert.True(t, response.AlphaVantage.Enabled)
	assert.Equal(t, 20, response.AlphaVantage.RemainingRequests)
}

func TestSystemHandlers_DegradedOnCacheError(t *testing.T) {
	cache := &stubCounter{failOn: clientdata.TableBalanceSheet}
	h := newStubHandlers(t, cache, nil, nil)

	response, err := h.GetSystemStatusSnapshot()
	assert.Error(t, err)
	assert.Equal(t, "degraded", response.Status)
	assert.NotContains(t, response.CacheEntries, clientdata.TableBalanceSheet)
	assert.Len(t, response.CacheEntries, len(clientdata.AllTables)-1)
}

func TestSystemHandlers_NilSources(t *testing.T) {
	h := newStubHandlers(t, nil, nil, nil)

	response, err := h.GetSystemStatusSnapshot()
	require.NoError(t, err)
	assert.Equal(t, "healthy", response.Status)
	assert.Empty(t, response.CacheEntries)
	assert.Empty(t, response.ScheduledJobs)
	assert.Nil(t, response.AlphaVantage)

	body, err := json.Marshal(response)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "alphavantage")
	assert.Contains(t, string(body), `"scheduled_jobs":[]`)
}

func TestSystemHandlers_GetDirSize(t *testing.T) {
	h := newStubHandlers(t, nil, nil, nil)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), make([]byte, 512*1024), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "b.bin"), make([]byte, 512*1024), 0644))

	assert.InDelta(t, 1.0, h.getDirSize(dir), 1e-9)
	assert.Zero(t, h.getDirSize(""))
	assert.Zero(t, h.getDirSize(filepath.Join(dir, "missing")))
}

func TestSystemStatusRoute(t *testing.T) {
	w := serve(newTestServer(t), "GET", "/api/system/status", "")

	require.Equal(t, http.StatusOK, w.Code)

	var response SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
	assert.Equal(t, 12.5, response.CPUPercent)
}
