package formulas

// CalculateReturns converts a value series to simple period-over-period returns.
// Returns[i] = (Values[i+1] - Values[i]) / Values[i]; the undefined first entry is dropped.
// A zero predecessor produces a non-finite return, which downstream statistics reject.
func CalculateReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns[i-1] = (values[i] - values[i-1]) / values[i-1]
	}

	return returns
}

// TotalReturn is the percentage change between the first and last value:
// (last / first - 1) * 100. Intermediate values are ignored.
//
// Returns nil when the series is empty, starts at zero, or the result is not finite.
func TotalReturn(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}

	first := values[0]
	if first == 0 {
		return nil
	}

	return finitePtr((values[len(values)-1]/first - 1) * 100)
}
