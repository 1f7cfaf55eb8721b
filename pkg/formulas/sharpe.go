package formulas

import "math"

// CalculateSharpeRatio calculates the annualized Sharpe ratio of periodic returns.
//
//	excess  = r - riskFreeRate/periodsPerYear
//	sharpe  = sqrt(periodsPerYear) * mean(excess) / stddev(excess)
//
// riskFreeRate is annual, as a decimal (0.02 for 2%). The standard deviation is the
// sample deviation. Returns nil when there are fewer than two returns, when the
// deviation is zero, or when any input makes the ratio non-finite.
func CalculateSharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) *float64 {
	if len(returns) < 2 || periodsPerYear <= 0 {
		return nil
	}

	periodicRiskFree := riskFreeRate / float64(periodsPerYear)

	excess := make([]float64, len(returns))
	for i, r := range returns {
		if !IsFinite(r) {
			return nil
		}
		excess[i] = r - periodicRiskFree
	}

	// identical observations have zero variance; checked exactly so rounding
	// in the mean cannot leave a tiny non-zero deviation behind
	if isConstant(excess) {
		return nil
	}

	stdDev := StdDev(excess)
	if stdDev == 0 || !IsFinite(stdDev) {
		return nil
	}

	return finitePtr(math.Sqrt(float64(periodsPerYear)) * Mean(excess) / stdDev)
}

// SharpeFromValues calculates the daily-annualized Sharpe ratio of a valuation series.
func SharpeFromValues(values []float64, riskFreeRate float64) *float64 {
	if len(values) < 2 {
		return nil
	}

	return CalculateSharpeRatio(CalculateReturns(values), riskFreeRate, TradingDaysPerYear)
}

func isConstant(data []float64) bool {
	for _, v := range data[1:] {
		if v != data[0] {
			return false
		}
	}
	return true
}
