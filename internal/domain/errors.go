package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures surfaced to API callers.
type ErrorKind string

const (
	// KindInvalidRequest - malformed or missing input, detected before any upstream call
	KindInvalidRequest ErrorKind = "invalid_request"
	// KindDataUnavailable - the provider could not supply data for a symbol or range
	KindDataUnavailable ErrorKind = "data_unavailable"
	// KindComputationUndefined - a statistic has no defined value for the data
	KindComputationUndefined ErrorKind = "computation_undefined"
	// KindInternal - anything not classified above
	KindInternal ErrorKind = "internal"
)

// Error is a classified failure. Ticker is set when a single symbol caused it.
type Error struct {
	Kind    ErrorKind
	Ticker  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Ticker != "" {
		msg = fmt.Sprintf("%s: %s", e.Ticker, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidRequest builds a KindInvalidRequest error.
func InvalidRequest(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// DataUnavailable builds a KindDataUnavailable error for ticker, wrapping cause.
func DataUnavailable(ticker, message string, cause error) *Error {
	return &Error{Kind: KindDataUnavailable, Ticker: ticker, Message: message, Err: cause}
}

// ComputationUndefined builds a KindComputationUndefined error for a named statistic.
func ComputationUndefined(statistic, reason string) *Error {
	return &Error{Kind: KindComputationUndefined, Message: fmt.Sprintf("%s undefined: %s", statistic, reason)}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// TickerOf returns the ticker recorded on the first *Error in err's chain.
func TickerOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Ticker
	}
	return ""
}
