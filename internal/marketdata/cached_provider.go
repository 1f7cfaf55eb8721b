// Package marketdata decorates price providers with a persistent cache.
package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/backtester/internal/clientdata"
	"github.com/aristath/backtester/internal/domain"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// CachedProvider serves price series from client_data.db before asking upstream.
type CachedProvider struct {
	upstream domain.PriceProvider
	repo     *clientdata.Repository
	log      zerolog.Logger
	now      func() time.Time
}

// NewCachedProvider wraps upstream with a cache backed by repo.
func NewCachedProvider(upstream domain.PriceProvider, repo *clientdata.Repository, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		upstream: upstream,
		repo:     repo,
		log:      log.With().Str("component", "price_cache").Logger(),
		now:      time.Now,
	}
}

// FetchSeries returns the cached series for the exact range when fresh.
// Otherwise it fetches upstream and stores the result. If upstream fails and a
// stale entry exists, the stale entry is returned.
func (p *CachedProvider) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error) {
	key := CacheKey(ticker, start, end)

	if data, err := p.repo.GetIfFresh(clientdata.TablePriceSeries, key); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	} else if data != nil {
		series, err := decode(data)
		if err == nil {
			p.log.Debug().Str("key", key).Msg("Price cache hit")
			return series, nil
		}
		p.log.Warn().Err(err).Str("key", key).Msg("Evicting undecodable cache entry")
		if err := p.repo.Delete(clientdata.TablePriceSeries, key); err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("Cache eviction failed")
		}
	}

	series, err := p.upstream.FetchSeries(ctx, ticker, start, end)
	if err != nil {
		if stale, ok := p.stale(key); ok {
			p.log.Warn().Err(err).Str("key", key).Msg("Upstream failed, serving stale price series")
			return stale, nil
		}
		return domain.PriceSeries{}, err
	}

	data, err := msgpack.Marshal(&series)
	if err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("Failed to encode price series")
		return series, nil
	}
	if err := p.repo.Store(clientdata.TablePriceSeries, key, data, p.ttl(end)); err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}

	return series, nil
}

func (p *CachedProvider) stale(key string) (domain.PriceSeries, bool) {
	data, err := p.repo.Get(clientdata.TablePriceSeries, key)
	if err != nil || data == nil {
		return domain.PriceSeries{}, false
	}
	series, err := decode(data)
	if err != nil {
		return domain.PriceSeries{}, false
	}
	return series, true
}

// ttl keeps closed ranges for a week and ranges reaching today briefly.
func (p *CachedProvider) ttl(end time.Time) time.Duration {
	today := domain.TruncateDate(p.now().UTC())
	if !end.After(today) {
		return clientdata.TTLHistoricalSeries
	}
	return clientdata.TTLRecentSeries
}

// CacheKey identifies a series by ticker and date range.
func CacheKey(ticker string, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%s", ticker, domain.FormatDate(start), domain.FormatDate(end))
}

func decode(data []byte) (domain.PriceSeries, error) {
	var series domain.PriceSeries
	if err := msgpack.Unmarshal(data, &series); err != nil {
		return domain.PriceSeries{}, fmt.Errorf("failed to decode price series: %w", err)
	}
	// msgpack restores times in the local zone
	for i := range series.Points {
		series.Points[i].Date = series.Points[i].Date.UTC()
	}
	return series, nil
}
