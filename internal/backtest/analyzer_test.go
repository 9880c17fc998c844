package backtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/pkg/logger"
)

func TestAnalyzeNoScores(t *testing.T) {
	analyzer := NewAnalyzer(&fakePriceRepo{points: map[string][]contracts.PricePoint{}}, &fakeScoreRepo{}, logger.NewNop())

	_, err := analyzer.Analyze(context.Background())

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAnalyzeNoPricesForScores(t *testing.T) {
	scores := &fakeScoreRepo{scores: []contracts.SectorScore{
		{Date: day(2020, 1, 1), Symbol: "AAA", CompositeScore: 60},
	}}
	analyzer := NewAnalyzer(&fakePriceRepo{points: map[string][]contracts.PricePoint{}}, scores, logger.NewNop())

	_, err := analyzer.Analyze(context.Background())

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAnalyzePositiveCorrelation(t *testing.T) {
	prices := &fakePriceRepo{points: map[string][]contracts.PricePoint{}}
	scores := &fakeScoreRepo{}

	// Higher scores precede proportionally higher forward returns.
	base := day(2020, 1, 1)
	for i := 0; i < 12; i++ {
		d := base.AddDate(0, 1, 0).AddDate(0, i, 0)
		score := 40 + float64(i)*2
		forward := 1 + float64(i)*0.01

		prices.add("AAA", d, 100)
		prices.add("AAA", d.AddDate(0, 0, 7), 100*forward)
		scores.scores = append(scores.scores, contracts.SectorScore{
			Date: d, Symbol: "AAA", CompositeScore: score,
		})
	}

	analyzer := NewAnalyzer(prices, scores, logger.NewNop())
	report, err := analyzer.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 12, report.SampleSize)
	assert.InDelta(t, 1.0, report.OverallCorrelation, 0.001)
	// 12 pairs clears the >10 floor for the per-sector breakdown.
	assert.InDelta(t, 1.0, report.BySector["AAA"], 0.001)
	assert.Len(t, report.ScatterData, 12)
}

func TestAnalyzeSectorFloorExcludesSparseSymbols(t *testing.T) {
	prices := &fakePriceRepo{points: map[string][]contracts.PricePoint{}}
	scores := &fakeScoreRepo{}

	base := day(2020, 1, 1)
	for i := 0; i < 5; i++ {
		d := base.AddDate(0, i, 0)
		prices.add("BBB", d, 100)
		prices.add("BBB", d.AddDate(0, 0, 10), 101+float64(i))
		scores.scores = append(scores.scores, contracts.SectorScore{
			Date: d, Symbol: "BBB", CompositeScore: 50 + float64(i),
		})
	}

	analyzer := NewAnalyzer(prices, scores, logger.NewNop())
	report, err := analyzer.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.SampleSize)
	assert.NotContains(t, report.BySector, "BBB")
}

func TestAnalyzeSkipsStaleCurrentPrice(t *testing.T) {
	prices := &fakePriceRepo{points: map[string][]contracts.PricePoint{}}
	// Only an older price exists, so the score date has no exact price.
	prices.add("AAA", day(2020, 1, 1), 100)
	prices.add("AAA", day(2020, 1, 20), 105)

	scores := &fakeScoreRepo{scores: []contracts.SectorScore{
		{Date: day(2020, 1, 10), Symbol: "AAA", CompositeScore: 60},
	}}

	analyzer := NewAnalyzer(prices, scores, logger.NewNop())
	_, err := analyzer.Analyze(context.Background())

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAnalyzeForwardWindowBound(t *testing.T) {
	prices := &fakePriceRepo{points: map[string][]contracts.PricePoint{}}
	prices.add("AAA", day(2020, 1, 1), 100)
	// Next price falls outside the 30-day forward window.
	prices.add("AAA", day(2020, 3, 15), 130)

	scores := &fakeScoreRepo{scores: []contracts.SectorScore{
		{Date: day(2020, 1, 1), Symbol: "AAA", CompositeScore: 60},
	}}

	analyzer := NewAnalyzer(prices, scores, logger.NewNop())
	_, err := analyzer.Analyze(context.Background())

	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestScatterSampleBounded(t *testing.T) {
	pairs := make([]pair, 250)
	for i := range pairs {
		pairs[i] = pair{symbol: "AAA", predicted: float64(i), actual: float64(i)}
	}

	samples := scatterSample(pairs)

	assert.Len(t, samples, 100)
}
