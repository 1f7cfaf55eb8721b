package alphavantage

import "fmt"

// ErrRateLimitExceeded is returned when the daily request budget is spent
// or Alpha Vantage reports throttling.
type ErrRateLimitExceeded struct{}

func (e ErrRateLimitExceeded) Error() string {
	return "alpha vantage rate limit exceeded"
}

// ErrInvalidAPIKey is returned when Alpha Vantage rejects the API key.
type ErrInvalidAPIKey struct{}

func (e ErrInvalidAPIKey) Error() string {
	return "alpha vantage rejected the api key as invalid"
}

// ErrSymbolNotFound is returned when Alpha Vantage has no data for a symbol.
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("alpha vantage has no data for symbol %s", e.Symbol)
}

// ErrDisabled is returned by every fetch when no API key is configured.
type ErrDisabled struct{}

func (e ErrDisabled) Error() string {
	return "alpha vantage client disabled: no api key configured"
}
