// Package alphavantage fetches insider transactions and financial statements
// from the Alpha Vantage query API, caching raw payloads in client_data.db.
package alphavantage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/aristath/backtester/internal/clientdata"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint.
	DefaultBaseURL = "https://www.alphavantage.co/query"
	// DefaultDailyLimit is the free tier request budget.
	DefaultDailyLimit = 25
)

// ClientInterface is the subset of the client used by the stock overview.
type ClientInterface interface {
	Enabled() bool
	GetInsiderTransactions(ctx context.Context, symbol string) ([]InsiderTransaction, error)
	GetIncomeStatement(ctx context.Context, symbol string) (*Statement, error)
	GetBalanceSheet(ctx context.Context, symbol string) (*Statement, error)
	GetCashFlow(ctx context.Context, symbol string) (*Statement, error)
}

// Client is an Alpha Vantage API client with a daily request budget.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	repo    *clientdata.Repository
	log     zerolog.Logger

	mu           sync.Mutex
	dailyLimit   int
	requestCount int
	resetAt      time.Time
}

// NewClient creates a new Alpha Vantage client. repo may be nil to disable caching.
func NewClient(apiKey string, repo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		repo:       repo,
		log:        log.With().Str("client", "alphavantage").Logger(),
		dailyLimit: DefaultDailyLimit,
		resetAt:    nextMidnightUTC(),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// GetRemainingRequests returns how many requests are left in today's budget.
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetIfDue()
	return c.dailyLimit - c.requestCount
}

// ResetDailyCounter restores the full daily budget.
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestCount = 0
	c.resetAt = nextMidnightUTC()
}

// GetInsiderTransactions fetches insider filings for symbol, most recent first.
func (c *Client) GetInsiderTransactions(ctx context.Context, symbol string) ([]InsiderTransaction, error) {
	data, err := c.fetch(ctx, clientdata.TableInsider, "INSIDER_TRANSACTIONS", symbol, clientdata.TTLInsider)
	if err != nil {
		return nil, err
	}
	return parseInsiderTransactions(data)
}

// GetIncomeStatement fetches annual and quarterly income statements.
func (c *Client) GetIncomeStatement(ctx context.Context, symbol string) (*Statement, error) {
	return c.getStatement(ctx, clientdata.TableIncomeStatement, "INCOME_STATEMENT", symbol, clientdata.TTLIncomeStatement)
}

// GetBalanceSheet fetches annual and quarterly balance sheets.
func (c *Client) GetBalanceSheet(ctx context.Context, symbol string) (*Statement, error) {
	return c.getStatement(ctx, clientdata.TableBalanceSheet, "BALANCE_SHEET", symbol, clientdata.TTLBalanceSheet)
}

// GetCashFlow fetches annual and quarterly cash flow statements.
func (c *Client) GetCashFlow(ctx context.Context, symbol string) (*Statement, error) {
	return c.getStatement(ctx, clientdata.TableCashFlow, "CASH_FLOW", symbol, clientdata.TTLCashFlow)
}

func (c *Client) getStatement(ctx context.Context, table, function, symbol string, ttl time.Duration) (*Statement, error) {
	data, err := c.fetch(ctx, table, function, symbol, ttl)
	if err != nil {
		return nil, err
	}
	return parseStatement(data)
}

// fetch returns the raw payload for function/symbol, cache first.
// When the API call fails, a stale cached payload is returned instead of the error.
func (c *Client) fetch(ctx context.Context, table, function, symbol string, ttl time.Duration) ([]byte, error) {
	if !c.Enabled() {
		return nil, ErrDisabled{}
	}

	if c.repo != nil {
		data, err := c.repo.GetIfFresh(table, symbol)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Str("table", table).Msg("Cache read failed")
		} else if data != nil {
			return data, nil
		}
	}

	data, err := c.request(ctx, function, symbol)
	if err != nil {
		if c.repo != nil {
			if stale, staleErr := c.repo.Get(table, symbol); staleErr == nil && stale != nil {
				c.log.Warn().Err(err).
					Str("symbol", symbol).
					Str("function", function).
					Msg("API call failed, serving stale cache")
				return stale, nil
			}
		}
		return nil, err
	}

	if c.repo != nil {
		if err := c.repo.Store(table, symbol, data, ttl); err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Str("table", table).Msg("Cache write failed")
		}
	}

	return data, nil
}

// request performs one budgeted API call.
func (c *Client) request(ctx context.Context, function, symbol string) ([]byte, error) {
	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Add("function", function)
	params.Add("symbol", symbol)
	params.Add("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", function, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Alpha Vantage API returned status %d", resp.StatusCode)
	}

	if err := c.checkAPIError(body); err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(body); bytes.Equal(trimmed, []byte("{}")) {
		return nil, ErrSymbolNotFound{Symbol: symbol}
	}

	c.log.Debug().
		Str("function", function).
		Str("symbol", symbol).
		Int("remaining", c.GetRemainingRequests()).
		Msg("Alpha Vantage request complete")

	return body, nil
}

// checkRateLimit consumes one request from the daily budget.
func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetIfDue()
	if c.requestCount >= c.dailyLimit {
		return ErrRateLimitExceeded{}
	}
	c.requestCount++
	return nil
}

// resetIfDue clears the counter once the UTC day rolls over. Caller holds mu.
func (c *Client) resetIfDue() {
	if time.Now().UTC().Before(c.resetAt) {
		return
	}
	c.requestCount = 0
	c.resetAt = nextMidnightUTC()
}

// checkAPIError detects error payloads Alpha Vantage returns with status 200.
func (c *Client) checkAPIError(body []byte) error {
	if bytes.Contains(body, []byte("Thank you for using Alpha Vantage")) {
		return ErrRateLimitExceeded{}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}

	if _, ok := payload["Note"]; ok {
		return ErrRateLimitExceeded{}
	}

	if msg, ok := payload["Error Message"].(string); ok {
		if strings.Contains(strings.ToLower(msg), "apikey") {
			return ErrInvalidAPIKey{}
		}
		return fmt.Errorf("Alpha Vantage API error: %s", msg)
	}

	if msg, ok := payload["Information"].(string); ok {
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "rate limit") || strings.Contains(lower, "frequency") {
			return ErrRateLimitExceeded{}
		}
		return fmt.Errorf("Alpha Vantage API information: %s", msg)
	}

	return nil
}

// nextMidnightUTC returns the start of the next UTC day.
func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}
