package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateReturns(t *testing.T) {
	returns := CalculateReturns([]float64{100, 110, 99})
	require.Len(t, returns, 2)
	assert.InDelta(t, 0.1, returns[0], 1e-12)
	assert.InDelta(t, -0.1, returns[1], 1e-12)

	assert.Empty(t, CalculateReturns([]float64{100}))
	assert.Empty(t, CalculateReturns(nil))
}

func TestTotalReturn(t *testing.T) {
	t.Run("first and last only", func(t *testing.T) {
		first, last := 200.0, 242.0
		got := TotalReturn([]float64{first, 220, last})
		require.NotNil(t, got)
		assert.Equal(t, (last/first-1)*100, *got)
		assert.InDelta(t, 21.0, *got, 1e-9)
	})

	t.Run("intermediate values ignored", func(t *testing.T) {
		first, last := 50.0, 75.0
		got := TotalReturn([]float64{first, 10, 1000, last})
		require.NotNil(t, got)
		assert.Equal(t, (last/first-1)*100, *got)
	})

	t.Run("single value", func(t *testing.T) {
		got := TotalReturn([]float64{42})
		require.NotNil(t, got)
		assert.Equal(t, 0.0, *got)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, TotalReturn(nil))
	})

	t.Run("zero first value", func(t *testing.T) {
		assert.Nil(t, TotalReturn([]float64{0, 10}))
	})
}

func TestCalculateSharpeRatio_KnownValue(t *testing.T) {
	got := SharpeFromValues([]float64{100, 110, 99, 108.9}, 0)
	require.NotNil(t, got)
	assert.InDelta(t, 4.5825756949558425, *got, 1e-9)

	withRiskFree := SharpeFromValues([]float64{100, 110, 99, 108.9}, 0.02)
	require.NotNil(t, withRiskFree)
	assert.InDelta(t, 4.571664800444042, *withRiskFree, 1e-9)
}

func TestSharpe_ConstantSeriesIsUndefined(t *testing.T) {
	assert.Nil(t, SharpeFromValues([]float64{100, 100, 100, 100, 100}, 0.02))
	assert.Nil(t, SharpeFromValues([]float64{100, 100, 100, 100, 100}, 0))
}

func TestSharpe_ConstantGrowthIsUndefined(t *testing.T) {
	// identical daily returns carry no variance
	assert.Nil(t, CalculateSharpeRatio([]float64{0.01, 0.01, 0.01}, 0.02, TradingDaysPerYear))
}

func TestSharpe_InsufficientData(t *testing.T) {
	assert.Nil(t, SharpeFromValues(nil, 0.02))
	assert.Nil(t, SharpeFromValues([]float64{100}, 0.02))
	// two points give one return, which has no sample deviation
	assert.Nil(t, SharpeFromValues([]float64{100, 110}, 0.02))
}

func TestSharpe_NonFiniteInputs(t *testing.T) {
	assert.Nil(t, SharpeFromValues([]float64{0, 10, 12, 11}, 0.02))
	assert.Nil(t, CalculateSharpeRatio([]float64{0.1, math.NaN(), 0.2}, 0.02, TradingDaysPerYear))
	assert.Nil(t, CalculateSharpeRatio([]float64{0.1, -0.1}, 0.02, 0))
}

func TestSharpe_ScaleInvariant(t *testing.T) {
	values := []float64{200, 220, 215, 242, 239.5, 250}
	base := SharpeFromValues(values, 0.02)
	require.NotNil(t, base)

	for _, k := range []float64{0.5, 3, 1000} {
		scaled := make([]float64, len(values))
		for i, v := range values {
			scaled[i] = v * k
		}
		got := SharpeFromValues(scaled, 0.02)
		require.NotNil(t, got)
		assert.InDelta(t, *base, *got, 1e-9, "scale %v", k)
	}
}

func TestStdDev(t *testing.T) {
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-12)
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}
