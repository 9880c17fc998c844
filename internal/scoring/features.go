// Package scoring blends the forecast, cycle, momentum and macro
// sensitivity signals into composite sector scores and ranks the universe.
package scoring

import (
	"context"
	"math"
	"time"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/internal/indicators"
	"github.com/wonny/rotor/backend/internal/macro"
	"github.com/wonny/rotor/backend/internal/tables"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// featureLookbackYears bounds the price history pulled for per-sector
// features. Long enough for the 12-month horizons plus the rolling
// normalization windows.
const featureLookbackYears = 15

// relativePeriods are the trailing horizons (trading days) for relative
// performance versus the benchmark.
var relativePeriods = []int{21, 63, 126, 252}

// FeatureBuilder assembles the flat feature maps consumed by the forecast
// model and the macro sensitivity signal.
type FeatureBuilder struct {
	prices contracts.PriceRepository
	macros contracts.MacroRepository
	tables *tables.Tables
	logger *logger.Logger
}

// NewFeatureBuilder creates a feature builder.
func NewFeatureBuilder(prices contracts.PriceRepository, macros contracts.MacroRepository, tbl *tables.Tables, log *logger.Logger) *FeatureBuilder {
	return &FeatureBuilder{
		prices: prices,
		macros: macros,
		tables: tbl,
		logger: log,
	}
}

// MacroFeatures flattens the derived features of every catalog series as
// of the given date. Series with no data are absent, not zeroed.
func (b *FeatureBuilder) MacroFeatures(ctx context.Context, asOf time.Time) (map[string]float64, error) {
	features := make(map[string]float64)

	for _, info := range macro.Catalog {
		observations, err := b.macros.GetSeries(ctx, info.ID, asOf)
		if err != nil {
			return nil, err
		}

		series := make([]float64, 0, len(observations))
		for _, obs := range observations {
			if obs.Value != nil {
				series = append(series, *obs.Value)
			}
		}
		if len(series) == 0 {
			continue
		}

		for name, value := range macro.Features(info.ID, series) {
			features[name] = value
		}
	}

	return features, nil
}

// SectorFeatures computes the per-symbol technical features for every
// universe symbol as of the given date. Symbols without price history get
// an empty map so the forecast model still produces a prediction for them.
func (b *FeatureBuilder) SectorFeatures(ctx context.Context, asOf time.Time) (map[string]map[string]float64, error) {
	benchmark, err := b.adjCloses(ctx, b.tables.Universe.Benchmark, asOf)
	if err != nil {
		return nil, err
	}
	benchmarkReturns := dailyReturns(benchmark)

	out := make(map[string]map[string]float64, len(b.tables.Universe.Sectors))
	for _, symbol := range b.tables.Symbols() {
		closes, err := b.adjCloses(ctx, symbol, asOf)
		if err != nil {
			return nil, err
		}
		out[symbol] = symbolFeatures(closes, benchmarkReturns)
	}
	return out, nil
}

// AdjCloses exposes the adjusted close series for the momentum signal.
func (b *FeatureBuilder) AdjCloses(ctx context.Context, symbol string, asOf time.Time) ([]float64, error) {
	return b.adjCloses(ctx, symbol, asOf)
}

func (b *FeatureBuilder) adjCloses(ctx context.Context, symbol string, asOf time.Time) ([]float64, error) {
	from := asOf.AddDate(-featureLookbackYears, 0, 0)
	points, err := b.prices.GetSeries(ctx, symbol, from, asOf)
	if err != nil {
		return nil, err
	}
	closes := make([]float64, len(points))
	for i, p := range points {
		closes[i] = p.AdjClose
	}
	return closes, nil
}

// symbolFeatures derives the latest technical indicator values plus the
// trailing relative performance versus the benchmark.
func symbolFeatures(closes, benchmarkReturns []float64) map[string]float64 {
	features := make(map[string]float64)
	if len(closes) == 0 {
		return features
	}
	last := len(closes) - 1

	put := func(name string, values []float64) {
		if v := values[last]; !math.IsNaN(v) {
			features[name] = v
		}
	}

	put("rsi", indicators.RSI(closes, 14))

	line, signal, histogram := indicators.MACD(closes)
	put("macd", line)
	put("macd_signal", signal)
	put("macd_histogram", histogram)

	sma20 := indicators.SMA(closes, 20)
	sma50 := indicators.SMA(closes, 50)
	put("sma_20", sma20)
	put("sma_50", sma50)
	if sma50[last] != 0 && !math.IsNaN(sma50[last]) {
		features["vs_sma_50"] = (closes[last]/sma50[last] - 1) * 100
	}

	middle, upper, lower := indicators.BollingerBands(closes, 20, 2)
	if width := upper[last] - lower[last]; width > 0 && !math.IsNaN(width) {
		features["bb_position"] = (closes[last] - lower[last]) / width
	}
	if middle[last] != 0 && !math.IsNaN(middle[last]) {
		features["bb_width"] = (upper[last] - lower[last]) / middle[last] * 100
	}

	for _, months := range []int{1, 3, 6, 12} {
		lookback := months * macro.TradingDaysPerMonth
		if last >= lookback && closes[last-lookback] != 0 {
			features[featureName("return", months)] = (closes[last]/closes[last-lookback] - 1) * 100
		}
	}

	returns := dailyReturns(closes)
	for _, period := range relativePeriods {
		if len(returns) > period && len(benchmarkReturns) > period {
			own := compound(returns[len(returns)-period:])
			bench := compound(benchmarkReturns[len(benchmarkReturns)-period:])
			features[relativeName(period)] = (own - bench) * 100
		}
	}

	return features
}

func featureName(prefix string, months int) string {
	switch months {
	case 1:
		return prefix + "_1m"
	case 3:
		return prefix + "_3m"
	case 6:
		return prefix + "_6m"
	default:
		return prefix + "_12m"
	}
}

func relativeName(period int) string {
	switch period {
	case 21:
		return "relative_21d"
	case 63:
		return "relative_63d"
	case 126:
		return "relative_126d"
	default:
		return "relative_252d"
	}
}

// dailyReturns computes simple day-over-day returns; one shorter than the
// input.
func dailyReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns
}

// compound turns a run of simple returns into a cumulative return.
func compound(returns []float64) float64 {
	total := 1.0
	for _, r := range returns {
		total *= 1 + r
	}
	return total - 1
}
