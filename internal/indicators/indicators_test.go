package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA_PeriodOneIsIdentity(t *testing.T) {
	series := []float64{10, 12, 9, 15, 14}

	out := SMA(series, 1)

	require.Len(t, out, len(series))
	for i := range series {
		assert.InDelta(t, series[i], out[i], 1e-12)
	}
}

func TestEMA_PeriodOneIsIdentity(t *testing.T) {
	series := []float64{10, 12, 9, 15, 14}

	out := EMA(series, 1)

	require.Len(t, out, len(series))
	for i := range series {
		assert.InDelta(t, series[i], out[i], 1e-12)
	}
}

func TestSMA_MinPeriodsFloor(t *testing.T) {
	series := []float64{10, 20, 30, 40}

	out := SMA(series, 3)

	// With fewer than 3 prior observations the mean uses what is available.
	assert.InDelta(t, 10, out[0], 1e-12)
	assert.InDelta(t, 15, out[1], 1e-12)
	assert.InDelta(t, 20, out[2], 1e-12)
	assert.InDelta(t, 30, out[3], 1e-12)
}

func TestRSI_BoundsAndFlatSegments(t *testing.T) {
	// Mixed ups and downs: always inside [0,100].
	series := []float64{100, 101, 99, 103, 102, 105, 101, 100, 104, 103, 99, 98, 102, 105, 107, 103}
	out := RSI(series, 14)

	for i, v := range out {
		assert.GreaterOrEqual(t, v, 0.0, "index %d", i)
		assert.LessOrEqual(t, v, 100.0, "index %d", i)
	}

	// Flat segment: all-zero deltas stay neutral, including the first point.
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 100
	}
	for i, v := range RSI(flat, 14) {
		assert.Equal(t, 50.0, v, "index %d", i)
	}
}

func TestRSI_AllGainsIsOverbought(t *testing.T) {
	series := []float64{100, 101, 102, 103, 104, 105}

	out := RSI(series, 14)

	assert.Equal(t, 50.0, out[0])
	for _, v := range out[1:] {
		assert.Equal(t, 100.0, v)
	}
}

func TestMACD_Alignment(t *testing.T) {
	series := make([]float64, 60)
	for i := range series {
		series[i] = 100 + float64(i)
	}

	line, signal, histogram := MACD(series)

	require.Len(t, line, 60)
	require.Len(t, signal, 60)
	require.Len(t, histogram, 60)
	for i := range series {
		assert.InDelta(t, line[i]-signal[i], histogram[i], 1e-9)
	}
}

func TestBollingerBands_FlatSeriesCollapses(t *testing.T) {
	series := make([]float64, 30)
	for i := range series {
		series[i] = 50
	}

	middle, upper, lower := BollingerBands(series, 20, 2)

	for i := range series {
		assert.InDelta(t, 50, middle[i], 1e-12)
		assert.InDelta(t, 50, upper[i], 1e-12)
		assert.InDelta(t, 50, lower[i], 1e-12)
	}
}

func TestATR_UsesGapsAgainstPrevClose(t *testing.T) {
	high := []float64{105, 120}
	low := []float64{95, 118}
	close := []float64{100, 119}

	out := ATR(high, low, close, 14)

	// First bar has no previous close: TR = high - low.
	assert.InDelta(t, 10, out[0], 1e-12)
	// Second bar gapped up: TR = |high - prev close| = 20, mean = 15.
	assert.InDelta(t, 15, out[1], 1e-12)
}

func TestROC_RequiresFullLookback(t *testing.T) {
	series := []float64{100, 110, 121}

	out := ROC(series, 2)

	assert.True(t, math.IsNaN(out[0]))
	assert.True(t, math.IsNaN(out[1]))
	assert.InDelta(t, 21, out[2], 1e-9)
}

func TestHistoricalPercentile_FloorAndRanking(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = float64(i)
	}

	out := HistoricalPercentile(series, 252)

	// Below the 20-observation floor: null.
	for i := 0; i < 19; i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d", i)
	}
	// A strictly increasing series always sits at the 100th percentile.
	for i := 19; i < 40; i++ {
		assert.InDelta(t, 100, out[i], 1e-12, "index %d", i)
	}
}

func TestZScore_NullOnFloorAndZeroStd(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 7
	}

	out := ZScore(flat, 252)

	// Zero rolling std never produces a value.
	for i, v := range out {
		assert.True(t, math.IsNaN(v), "index %d", i)
	}
}

func TestZScore_Symmetric(t *testing.T) {
	series := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		series = append(series, 10, 20)
	}

	out := ZScore(series, 252)

	// Alternating series: last value 20 must be above the rolling mean.
	require.False(t, math.IsNaN(out[len(out)-1]))
	assert.Greater(t, out[len(out)-1], 0.0)
}

func TestTrend_FlatIsNeutral(t *testing.T) {
	flat := make([]float64, 60)
	for i := range flat {
		flat[i] = 100
	}

	out := Trend(flat)

	for i, v := range out {
		assert.Equal(t, 0, v, "index %d", i)
	}
}

func TestTrend_Directional(t *testing.T) {
	rising := make([]float64, 120)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}

	out := Trend(rising)

	// Once both averages are established the short MA leads on the way up.
	assert.Equal(t, 1, out[len(out)-1])

	falling := make([]float64, 120)
	for i := range falling {
		falling[i] = 300 - float64(i)
	}
	assert.Equal(t, -1, Trend(falling)[len(falling)-1])
}

func TestFlatSixtyObservationScenario(t *testing.T) {
	series := make([]float64, 60)
	for i := range series {
		series[i] = 100
	}

	sma := SMA(series, 20)
	rsi := RSI(series, 14)
	trend := Trend(series)

	assert.InDelta(t, 100, sma[59], 1e-12)
	assert.Equal(t, 50.0, rsi[59])
	assert.Equal(t, 0, trend[59])
}
