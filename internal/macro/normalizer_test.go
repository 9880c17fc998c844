package macro

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SeriesAlignment(t *testing.T) {
	series := make([]float64, 300)
	for i := range series {
		series[i] = 100 + float64(i)*0.1
	}

	n := Normalize(series, 10)

	require.Len(t, n.ZScore, 300)
	require.Len(t, n.Percentile, 300)
	require.Len(t, n.Acceleration, 300)
	for _, months := range []int{1, 3, 6, 12} {
		require.Len(t, n.ROC[months], 300)
	}
	for _, months := range []int{3, 6, 12} {
		require.Len(t, n.VsMA[months], 300)
	}

	// Rising series: positive 1-month ROC once the lookback is filled.
	assert.Greater(t, n.ROC[1][299], 0.0)
	// And the current value sits above its 3-month moving average.
	assert.Greater(t, n.VsMA[3][299], 0.0)
}

func TestNormalize_AccelerationIsDifferenceOfROC(t *testing.T) {
	series := make([]float64, 200)
	for i := range series {
		series[i] = 50 + float64(i)
	}

	n := Normalize(series, 10)

	i := 199
	expected := n.ROC[3][i] - n.ROC[3][i-TradingDaysPerMonth]
	assert.InDelta(t, expected, n.Acceleration[i], 1e-9)
}

func TestCurrentStatus_EmptySeries(t *testing.T) {
	s := CurrentStatus(nil)

	assert.Equal(t, TrendUnknown, s.Trend)
	assert.False(t, s.HasROC1M)
}

func TestCurrentStatus_RisingSeries(t *testing.T) {
	series := make([]float64, 100)
	for i := range series {
		series[i] = float64(i)
	}

	s := CurrentStatus(series)

	assert.Equal(t, 99.0, s.Value)
	assert.Equal(t, TrendRising, s.Trend)
	assert.Greater(t, s.ZScore, 0.0)
	// The max of the series ranks above everything before it.
	assert.InDelta(t, 99, s.Percentile, 1.0)
	require.True(t, s.HasROC1M)
	assert.Greater(t, s.ROC1M, 0.0)
}

func TestTrendLabel_ShortSeriesIsStable(t *testing.T) {
	assert.Equal(t, TrendStable, TrendLabel([]float64{1, 2, 3}, 3, 0.1))
}

func TestTrendLabel_Directions(t *testing.T) {
	rising := []float64{1, 1.1, 0.9, 1, 1.05, 2, 3, 4}
	falling := []float64{4, 3.9, 4.1, 4, 3.95, 3, 2, 1}
	flat := []float64{5, 5, 5, 5, 5, 5, 5, 5}

	assert.Equal(t, TrendRising, TrendLabel(rising, 3, 0.05))
	assert.Equal(t, TrendFalling, TrendLabel(falling, 3, 0.05))
	assert.Equal(t, TrendStable, TrendLabel(flat, 3, 0.05))
}

func TestFeatures_SkipsMissingValues(t *testing.T) {
	// Short series: rolling z-score/percentile are below their floor and
	// must not appear in the feature map.
	series := []float64{1, 2, 3, 4, 5}

	features := Features("UNRATE", series)

	_, hasZ := features["UNRATE_zscore"]
	_, hasPct := features["UNRATE_percentile"]
	assert.False(t, hasZ)
	assert.False(t, hasPct)

	assert.Equal(t, 5.0, features["UNRATE_value"])
	for name, v := range features {
		assert.False(t, math.IsNaN(v), "feature %s is NaN", name)
	}
}

func TestFeatures_LongSeriesHasROCHorizons(t *testing.T) {
	series := make([]float64, 300)
	for i := range series {
		series[i] = 100 + float64(i)
	}

	features := Features("INDPRO", series)

	for _, name := range []string{"INDPRO_roc_1m", "INDPRO_roc_3m", "INDPRO_roc_6m", "INDPRO_roc_12m"} {
		_, ok := features[name]
		assert.True(t, ok, "missing %s", name)
	}
}
