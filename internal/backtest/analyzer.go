package backtest

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// ErrInsufficientData is returned by Analyze when no (score, return) pair
// can be formed.
var ErrInsufficientData = errors.New("insufficient data for correlation")

const (
	// forwardWindowDays bounds the realized-return horizon.
	forwardWindowDays = 30

	// minSectorPairs is the per-symbol observation floor for the
	// by-sector breakdown.
	minSectorPairs = 10

	// maxScatterSamples bounds the visualization sample.
	maxScatterSamples = 100
)

// Analyzer correlates stored composite scores against realized forward
// returns.
type Analyzer struct {
	prices contracts.PriceRepository
	scores contracts.ScoreRepository
	logger *logger.Logger
}

// NewAnalyzer creates a correlation analyzer.
func NewAnalyzer(prices contracts.PriceRepository, scores contracts.ScoreRepository, log *logger.Logger) *Analyzer {
	return &Analyzer{
		prices: prices,
		scores: scores,
		logger: log,
	}
}

type pair struct {
	symbol    string
	predicted float64
	actual    float64
}

// Analyze builds (score, forward-return) pairs from every stored score and
// reports the Pearson correlation overall and per sector. Scores without a
// price on their date, or without any price in the following 30 days, are
// skipped. Zero pairs yields ErrInsufficientData.
func (a *Analyzer) Analyze(ctx context.Context) (*contracts.CorrelationReport, error) {
	scores, err := a.scores.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, ErrInsufficientData
	}

	var pairs []pair
	for _, score := range scores {
		current, err := a.prices.GetAsOf(ctx, score.Symbol, score.Date)
		if errors.Is(err, contracts.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		// The score must have a price on its own date, not a stale one.
		if !sameDay(current.Date, score.Date) || current.AdjClose == 0 {
			continue
		}

		horizon := score.Date.AddDate(0, 0, forwardWindowDays)
		future, err := a.prices.GetFirstAfter(ctx, score.Symbol, score.Date, horizon)
		if errors.Is(err, contracts.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		pairs = append(pairs, pair{
			symbol:    score.Symbol,
			predicted: score.CompositeScore,
			actual:    (future.AdjClose/current.AdjClose - 1) * 100,
		})
	}

	if len(pairs) == 0 {
		return nil, ErrInsufficientData
	}

	return buildReport(pairs), nil
}

func buildReport(pairs []pair) *contracts.CorrelationReport {
	predicted := make([]float64, len(pairs))
	actual := make([]float64, len(pairs))
	bySymbol := make(map[string][]pair)
	for i, p := range pairs {
		predicted[i] = p.predicted
		actual[i] = p.actual
		bySymbol[p.symbol] = append(bySymbol[p.symbol], p)
	}

	overall := stat.Correlation(predicted, actual, nil)
	if math.IsNaN(overall) {
		overall = 0
	}

	bySector := make(map[string]float64)
	for symbol, group := range bySymbol {
		if len(group) <= minSectorPairs {
			continue
		}
		xs := make([]float64, len(group))
		ys := make([]float64, len(group))
		for i, p := range group {
			xs[i] = p.predicted
			ys[i] = p.actual
		}
		if corr := stat.Correlation(xs, ys, nil); !math.IsNaN(corr) {
			bySector[symbol] = round3(corr)
		}
	}

	return &contracts.CorrelationReport{
		OverallCorrelation: round3(overall),
		BySector:           bySector,
		SampleSize:         len(pairs),
		ScatterData:        scatterSample(pairs),
	}
}

// scatterSample draws up to maxScatterSamples random pairs.
func scatterSample(pairs []pair) []contracts.CorrelationSample {
	indexes := rand.Perm(len(pairs))
	n := len(pairs)
	if n > maxScatterSamples {
		n = maxScatterSamples
	}

	samples := make([]contracts.CorrelationSample, 0, n)
	for _, idx := range indexes[:n] {
		samples = append(samples, contracts.CorrelationSample{
			Predicted: round2(pairs[idx].predicted),
			Actual:    round2(pairs[idx].actual),
		})
	}
	return samples
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
