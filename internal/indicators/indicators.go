// Package indicators computes technical indicators over ordered price
// series. Every function is a pure function of its input slice and returns
// a parallel slice of identical length and index alignment.
//
// Windowed statistics use a minimum-periods floor: with fewer observations
// than the nominal window they compute over what is available instead of
// emitting leading gaps. The exceptions are ZScore and
// HistoricalPercentile, which require minObservations points and emit NaN
// below that floor.
package indicators

import "math"

// minObservations is the floor for z-score and percentile windows.
const minObservations = 20

// window is a fixed-size ring buffer tracking the running sum and sum of
// squares of the most recent values, so rolling mean/std are O(1) per step.
type window struct {
	buf   []float64
	size  int
	head  int
	count int
	sum   float64
	sumSq float64
}

func newWindow(size int) *window {
	return &window{buf: make([]float64, size), size: size}
}

func (w *window) push(v float64) {
	if w.count == w.size {
		old := w.buf[w.head]
		w.sum -= old
		w.sumSq -= old * old
	} else {
		w.count++
	}
	w.buf[w.head] = v
	w.sum += v
	w.sumSq += v * v
	w.head = (w.head + 1) % w.size
}

func (w *window) mean() float64 {
	if w.count == 0 {
		return math.NaN()
	}
	return w.sum / float64(w.count)
}

// std is the sample standard deviation of the window; 0 with fewer than
// two observations.
func (w *window) std() float64 {
	if w.count < 2 {
		return 0
	}
	n := float64(w.count)
	variance := (w.sumSq - w.sum*w.sum/n) / (n - 1)
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// values returns the window contents oldest-first.
func (w *window) values() []float64 {
	out := make([]float64, 0, w.count)
	start := w.head - w.count
	if start < 0 {
		start += w.size
	}
	for i := 0; i < w.count; i++ {
		out = append(out, w.buf[(start+i)%w.size])
	}
	return out
}

// SMA computes the simple moving average with a min-periods floor of 1.
func SMA(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	w := newWindow(period)
	for i, v := range series {
		w.push(v)
		out[i] = w.mean()
	}
	return out
}

// EMA computes the exponential moving average with smoothing factor
// 2/(period+1), seeded by the first observation.
func EMA(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)
	ema := series[0]
	out[0] = ema
	for i := 1; i < len(series); i++ {
		ema = alpha*series[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

// RSI computes the Relative Strength Index over the trailing period.
//
// Degenerate inputs never propagate as errors: the very first observation
// (no prior delta) is neutral 50, a flat window (no gains and no losses)
// is neutral 50, and a window with gains but zero average loss is fully
// overbought at 100.
func RSI(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}
	out[0] = 50

	gains := newWindow(period)
	losses := newWindow(period)
	for i := 1; i < len(series); i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			gains.push(delta)
			losses.push(0)
		} else {
			gains.push(0)
			losses.push(-delta)
		}

		avgGain := gains.mean()
		avgLoss := losses.mean()
		switch {
		case avgLoss == 0 && avgGain == 0:
			out[i] = 50
		case avgLoss == 0:
			out[i] = 100
		default:
			rs := avgGain / avgLoss
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}

// MACD computes the MACD line EMA(12)-EMA(26), its EMA(9) signal line and
// the histogram (line minus signal).
func MACD(series []float64) (line, signal, histogram []float64) {
	fast := EMA(series, 12)
	slow := EMA(series, 26)

	line = make([]float64, len(series))
	for i := range series {
		line[i] = fast[i] - slow[i]
	}

	signal = EMA(line, 9)

	histogram = make([]float64, len(series))
	for i := range series {
		histogram[i] = line[i] - signal[i]
	}
	return line, signal, histogram
}

// BollingerBands computes the middle SMA(period) band and upper/lower
// bands at middle +/- stdDev rolling standard deviations.
func BollingerBands(series []float64, period int, stdDev float64) (middle, upper, lower []float64) {
	middle = make([]float64, len(series))
	upper = make([]float64, len(series))
	lower = make([]float64, len(series))

	w := newWindow(period)
	for i, v := range series {
		w.push(v)
		m := w.mean()
		band := w.std() * stdDev
		middle[i] = m
		upper[i] = m + band
		lower[i] = m - band
	}
	return middle, upper, lower
}

// ATR computes the Average True Range: the rolling mean of
// max(high-low, |high-prevClose|, |low-prevClose|).
func ATR(high, low, close []float64, period int) []float64 {
	out := make([]float64, len(close))
	w := newWindow(period)
	for i := range close {
		tr := high[i] - low[i]
		if i > 0 {
			prev := close[i-1]
			tr = math.Max(tr, math.Abs(high[i]-prev))
			tr = math.Max(tr, math.Abs(low[i]-prev))
		}
		w.push(tr)
		out[i] = w.mean()
	}
	return out
}

// ROC computes the rate of change over period observations, in percent.
// Indices without a full lookback emit NaN.
func ROC(series []float64, period int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		if i < period || series[i-period] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (series[i]/series[i-period] - 1) * 100
	}
	return out
}

// HistoricalPercentile computes, at each index, the fraction of the
// trailing lookback window's prior observations strictly less than the
// current observation, expressed 0-100. Windows with fewer than two
// observations default to 50; below the minimum-observations floor the
// result is NaN.
func HistoricalPercentile(series []float64, lookback int) []float64 {
	out := make([]float64, len(series))
	w := newWindow(lookback)
	for i, v := range series {
		w.push(v)
		if w.count < minObservations {
			out[i] = math.NaN()
			continue
		}
		out[i] = percentileOf(v, w.values())
	}
	return out
}

// percentileOf ranks current against window (current is the last element).
func percentileOf(current float64, win []float64) float64 {
	prior := len(win) - 1
	if prior < 1 {
		return 50
	}
	below := 0
	for _, p := range win[:prior] {
		if p < current {
			below++
		}
	}
	return float64(below) / float64(prior) * 100
}

// ZScore computes (current - rolling mean) / rolling std over the
// lookback. Below the minimum-observations floor, or when the rolling std
// is zero, the result is NaN.
func ZScore(series []float64, lookback int) []float64 {
	out := make([]float64, len(series))
	w := newWindow(lookback)
	for i, v := range series {
		w.push(v)
		std := w.std()
		if w.count < minObservations || std == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = (v - w.mean()) / std
	}
	return out
}

// Trend classifies each index as +1 when SMA(20) > SMA(50), -1 when
// SMA(20) < SMA(50), 0 otherwise.
func Trend(series []float64) []int {
	short := SMA(series, 20)
	long := SMA(series, 50)

	out := make([]int, len(series))
	for i := range series {
		switch {
		case short[i] > long[i]:
			out[i] = 1
		case short[i] < long[i]:
			out[i] = -1
		}
	}
	return out
}
