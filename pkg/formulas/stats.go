// Package formulas holds the pure numeric routines used to evaluate price and valuation series.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the annualization constant for daily series.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (n-1 denominator).
// Fewer than two observations have no sample deviation and yield NaN.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(data, nil)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finitePtr returns a pointer to v, or nil when v is not finite.
func finitePtr(v float64) *float64 {
	if !IsFinite(v) {
		return nil
	}
	return &v
}
