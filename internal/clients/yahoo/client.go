package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/backtester/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Client is a Yahoo Finance HTTP client for daily closes and news.
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log.With().Str("client", "yahoo").Logger(),
	}
}

// FetchSeries returns the daily closes of ticker for start <= date < end.
// Adjusted closes are preferred when Yahoo reports them.
// Every failure is a DataUnavailable error naming the ticker.
func (c *Client) FetchSeries(ctx context.Context, ticker string, start, end time.Time) (domain.PriceSeries, error) {
	params := url.Values{}
	params.Add("period1", strconv.FormatInt(start.Unix(), 10))
	params.Add("period2", strconv.FormatInt(end.Unix(), 10))
	params.Add("interval", "1d")
	params.Add("includeAdjustedClose", "true")

	reqURL := c.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?" + params.Encode()

	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, "failed to fetch price history", err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		if status != http.StatusOK {
			return domain.PriceSeries{}, domain.DataUnavailable(ticker, fmt.Sprintf("provider returned status %d", status), nil)
		}
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, "failed to parse price history", err)
	}

	if result.Chart.Error != nil {
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, result.Chart.Error.Description, nil)
	}
	if status != http.StatusOK {
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, fmt.Sprintf("provider returned status %d", status), nil)
	}
	if len(result.Chart.Result) == 0 {
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, "no price data returned", nil)
	}

	chart := result.Chart.Result[0]
	if len(chart.Indicators.Quote) == 0 {
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, "no price data returned", nil)
	}

	closes := chart.Indicators.Quote[0].Close
	var adjCloses []*float64
	if len(chart.Indicators.AdjClose) > 0 {
		adjCloses = chart.Indicators.AdjClose[0].AdjClose
	}

	// Timestamps are the session open; shift by the exchange offset to get its calendar date
	offset := time.Duration(chart.Meta.GMTOffset) * time.Second

	series := domain.PriceSeries{Ticker: ticker, Points: make([]domain.PricePoint, 0, len(chart.Timestamp))}
	for i, ts := range chart.Timestamp {
		price := pick(adjCloses, i)
		if price == nil {
			price = pick(closes, i)
		}
		if price == nil {
			continue
		}

		date := domain.TruncateDate(time.Unix(ts, 0).UTC().Add(offset))
		point := domain.PricePoint{Date: date, Close: *price}

		// Yahoo repeats the live session as a trailing bar; the later one wins
		if n := len(series.Points); n > 0 && !series.Points[n-1].Date.Before(date) {
			if series.Points[n-1].Date.Equal(date) {
				series.Points[n-1] = point
			}
			continue
		}
		series.Points = append(series.Points, point)
	}

	series = series.Between(start, end)
	if series.IsEmpty() {
		return domain.PriceSeries{}, domain.DataUnavailable(ticker, "no price data in requested range", nil)
	}

	c.log.Debug().
		Str("symbol", ticker).
		Int("count", series.Len()).
		Msg("Fetched price history")

	return series, nil
}

// FetchNews returns up to limit recent headlines for ticker.
func (c *Client) FetchNews(ctx context.Context, ticker string, limit int) ([]NewsItem, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{}
	params.Add("q", ticker)
	params.Add("quotesCount", "0")
	params.Add("newsCount", strconv.Itoa(limit))

	reqURL := c.baseURL + "/v1/finance/search?" + params.Encode()

	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", status, truncate(string(body), 200))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	news := make([]NewsItem, 0, limit)
	for _, n := range result.News {
		if n.Title == "" {
			continue
		}
		item := NewsItem{
			Headline:  n.Title,
			Publisher: n.Publisher,
			Link:      n.Link,
		}
		if n.ProviderPublishTime > 0 {
			item.PublishedAt = time.Unix(n.ProviderPublishTime, 0).UTC()
		}
		news = append(news, item)
		if len(news) == limit {
			break
		}
	}

	return news, nil
}

// get performs a GET and returns the body with the status code.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, 0, fmt.Errorf("request timed out: %w", ctx.Err())
		}
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

func pick(values []*float64, i int) *float64 {
	if i >= len(values) || values[i] == nil {
		return nil
	}
	return values[i]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
