package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rotor/backend/internal/contracts"
)

func curvePoint(d time.Time, portfolio, benchmark float64) contracts.EquityPoint {
	return contracts.EquityPoint{Date: d, PortfolioValue: portfolio, BenchmarkValue: benchmark}
}

func TestComputeMetricsEmptyCurve(t *testing.T) {
	metrics := ComputeMetrics(nil, 100000)
	assert.Equal(t, contracts.PerformanceMetrics{}, metrics)
}

func TestComputeMetricsSinglePoint(t *testing.T) {
	curve := []contracts.EquityPoint{curvePoint(day(2020, 1, 31), 105000, 100000)}

	metrics := ComputeMetrics(curve, 100000)

	assert.InDelta(t, 5.0, metrics.TotalReturn, 1e-9)
	assert.InDelta(t, 0.0, metrics.BenchmarkReturn, 1e-9)
	assert.InDelta(t, 5.0, metrics.ExcessReturn, 1e-9)
	// One step: no variance, so the ratio metrics stay neutral.
	assert.Equal(t, 0.0, metrics.Volatility)
	assert.Equal(t, 0.0, metrics.SharpeRatio)
	assert.Equal(t, 1.0, metrics.Beta)
	assert.Equal(t, 0.0, metrics.InformationRatio)
}

func TestComputeMetricsPortfolioEqualsBenchmark(t *testing.T) {
	base := day(2020, 1, 1)
	values := []float64{101000, 99500, 102000, 103500}
	curve := make([]contracts.EquityPoint, len(values))
	for i, v := range values {
		curve[i] = curvePoint(base.AddDate(0, 0, i+1), v, v)
	}

	metrics := ComputeMetrics(curve, 100000)

	assert.Equal(t, 1.0, metrics.Beta)
	assert.Equal(t, 0.0, metrics.Alpha)
	assert.Equal(t, 0.0, metrics.TrackingError)
	assert.Equal(t, 0.0, metrics.InformationRatio)
	assert.Equal(t, 0.0, metrics.WinRate)
	assert.Equal(t, 0.0, metrics.ExcessReturn)
}

func TestComputeMetricsMaxDrawdownNonPositive(t *testing.T) {
	base := day(2020, 1, 1)
	values := []float64{110000, 90000, 120000, 95000}
	curve := make([]contracts.EquityPoint, len(values))
	for i, v := range values {
		curve[i] = curvePoint(base.AddDate(0, 0, i+1), v, 100000)
	}

	metrics := ComputeMetrics(curve, 100000)

	require.LessOrEqual(t, metrics.MaxDrawdown, 0.0)
	// Worst decline: 120000 -> 95000.
	assert.InDelta(t, (95000.0/120000.0-1)*100, metrics.MaxDrawdown, 0.01)
}

func TestComputeMetricsWinRate(t *testing.T) {
	base := day(2020, 1, 1)
	curve := []contracts.EquityPoint{
		curvePoint(base.AddDate(0, 0, 1), 102000, 101000), // win
		curvePoint(base.AddDate(0, 0, 2), 103000, 103000), // loss
		curvePoint(base.AddDate(0, 0, 3), 105000, 104000), // win
		curvePoint(base.AddDate(0, 0, 4), 104000, 104500), // loss
	}

	metrics := ComputeMetrics(curve, 100000)

	assert.InDelta(t, 50.0, metrics.WinRate, 1e-9)
}

func TestComputeMetricsAnnualization(t *testing.T) {
	// 252 curve points = one year: annualized equals total.
	base := day(2020, 1, 1)
	curve := make([]contracts.EquityPoint, 252)
	value := 100000.0
	for i := range curve {
		if i%2 == 0 {
			value *= 1.001
		} else {
			value *= 0.9996
		}
		curve[i] = curvePoint(base.AddDate(0, 0, i+1), value, 100000)
	}

	metrics := ComputeMetrics(curve, 100000)

	assert.InDelta(t, metrics.TotalReturn, metrics.AnnualizedReturn, 0.011)
	assert.Greater(t, metrics.SharpeRatio, 0.0)
}
