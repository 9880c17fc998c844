// Package macro derives normalized features from raw macro economic
// series: rolling percentiles and z-scores, rates of change, acceleration
// and deviations from moving averages. Pure functions of one series.
package macro

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/rotor/backend/internal/indicators"
)

const (
	// TradingDaysPerMonth approximates one calendar month of observations.
	TradingDaysPerMonth = 21

	// TradingDaysPerYear approximates one calendar year of observations.
	TradingDaysPerYear = 252

	// DefaultLookbackYears is the rolling window for percentile/z-score.
	DefaultLookbackYears = 10
)

// Trend labels returned by TrendLabel.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
	TrendUnknown = "unknown"
)

// rocMonths and maMonths are the horizons of the derived series.
var (
	rocMonths = []int{1, 3, 6, 12}
	maMonths  = []int{3, 6, 12}
)

// Normalized holds the derived series for one macro variable. All slices
// align index-for-index with the input; gaps are NaN.
type Normalized struct {
	Value        []float64
	ZScore       []float64
	Percentile   []float64
	ROC          map[int][]float64 // keyed by months
	Acceleration []float64         // 21-period difference of the 3-month ROC
	VsMA         map[int][]float64 // pct deviation from the N-month MA, keyed by months
}

// Normalize computes the full derived-feature set for a macro series over
// a lookbackYears rolling window.
func Normalize(series []float64, lookbackYears int) *Normalized {
	if lookbackYears <= 0 {
		lookbackYears = DefaultLookbackYears
	}
	lookback := lookbackYears * TradingDaysPerYear

	n := &Normalized{
		Value:      series,
		ZScore:     indicators.ZScore(series, lookback),
		Percentile: indicators.HistoricalPercentile(series, lookback),
		ROC:        make(map[int][]float64, len(rocMonths)),
		VsMA:       make(map[int][]float64, len(maMonths)),
	}

	for _, months := range rocMonths {
		n.ROC[months] = indicators.ROC(series, months*TradingDaysPerMonth)
	}

	n.Acceleration = diff(n.ROC[3], TradingDaysPerMonth)

	for _, months := range maMonths {
		ma := indicators.SMA(series, months*TradingDaysPerMonth)
		vs := make([]float64, len(series))
		for i := range series {
			if ma[i] == 0 || math.IsNaN(ma[i]) {
				vs[i] = math.NaN()
				continue
			}
			vs[i] = (series[i]/ma[i] - 1) * 100
		}
		n.VsMA[months] = vs
	}

	return n
}

// diff computes x[i] - x[i-period], NaN when either side is missing.
func diff(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		if i < period || math.IsNaN(series[i]) || math.IsNaN(series[i-period]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = series[i] - series[i-period]
	}
	return out
}

// Status is the current snapshot of a macro variable.
type Status struct {
	Value      float64 `json:"value"`
	Percentile float64 `json:"percentile"`
	ZScore     float64 `json:"zscore"`
	ROC1M      float64 `json:"roc_1m"`
	HasROC1M   bool    `json:"-"`
	Trend      string  `json:"trend"`
}

// CurrentStatus summarizes the latest observation of a series: raw value,
// full-history percentile and z-score, 1-month rate of change and a
// 3-observation trend label.
func CurrentStatus(series []float64) *Status {
	if len(series) == 0 {
		return &Status{Trend: TrendUnknown}
	}

	current := series[len(series)-1]

	s := &Status{
		Value:      current,
		Percentile: fullHistoryPercentile(current, series),
		Trend:      TrendLabel(series, 3, 0.1),
	}

	mean := stat.Mean(series, nil)
	std := stat.StdDev(series, nil)
	if std > 0 && !math.IsNaN(std) {
		s.ZScore = (current - mean) / std
	}

	if len(series) > TradingDaysPerMonth {
		base := series[len(series)-1-TradingDaysPerMonth]
		if base != 0 {
			s.ROC1M = (current/base - 1) * 100
			s.HasROC1M = true
		}
	}

	return s
}

// fullHistoryPercentile ranks value against the whole series, 0-100.
func fullHistoryPercentile(value float64, series []float64) float64 {
	valid := 0
	below := 0
	for _, v := range series {
		if math.IsNaN(v) {
			continue
		}
		valid++
		if v < value {
			below++
		}
	}
	if valid == 0 {
		return 50
	}
	return float64(below) / float64(valid) * 100
}

// TrendLabel classifies the direction of the most recent observations via
// the slope of a least-squares fit over the trailing window, compared
// against thresholdFactor times the full-history standard deviation.
// Series shorter than window+1 observations are "stable".
func TrendLabel(series []float64, window int, thresholdFactor float64) string {
	if len(series) < window+1 {
		return TrendStable
	}

	recent := series[len(series)-window:]
	xs := make([]float64, window)
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, recent, nil, false)

	threshold := stat.StdDev(series, nil) * thresholdFactor
	switch {
	case slope > threshold:
		return TrendRising
	case slope < -threshold:
		return TrendFalling
	default:
		return TrendStable
	}
}

// Features flattens the latest values of the derived series into the flat
// feature map the scorer and forecast model consume. NaN entries are
// skipped so a missing feature reads as absent, not zero.
func Features(seriesID string, series []float64) map[string]float64 {
	features := make(map[string]float64)
	if len(series) == 0 {
		return features
	}

	n := Normalize(series, DefaultLookbackYears)
	last := len(series) - 1

	put := func(name string, values []float64) {
		if v := values[last]; !math.IsNaN(v) {
			features[name] = v
		}
	}

	put(seriesID+"_value", n.Value)
	put(seriesID+"_zscore", n.ZScore)
	put(seriesID+"_percentile", n.Percentile)
	put(seriesID+"_acceleration", n.Acceleration)
	for months, roc := range n.ROC {
		put(fmt.Sprintf("%s_roc_%dm", seriesID, months), roc)
	}
	for months, vs := range n.VsMA {
		put(fmt.Sprintf("%s_vs_ma_%dm", seriesID, months), vs)
	}

	// Status-level features use full-history statistics, matching the
	// current-status snapshot rather than the rolling window.
	status := CurrentStatus(series)
	features[seriesID+"_status_percentile"] = status.Percentile
	features[seriesID+"_status_zscore"] = status.ZScore

	return features
}
