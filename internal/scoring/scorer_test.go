package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/internal/cycle"
	"github.com/wonny/rotor/backend/internal/tables"
	"github.com/wonny/rotor/backend/pkg/logger"
)

type stubPriceRepo struct {
	series map[string][]contracts.PricePoint
}

func (s *stubPriceRepo) GetSeries(_ context.Context, symbol string, _, _ time.Time) ([]contracts.PricePoint, error) {
	return s.series[symbol], nil
}

func (s *stubPriceRepo) GetAsOf(_ context.Context, _ string, _ time.Time) (*contracts.PricePoint, error) {
	return nil, contracts.ErrNotFound
}

func (s *stubPriceRepo) GetFirstAfter(_ context.Context, _ string, _, _ time.Time) (*contracts.PricePoint, error) {
	return nil, contracts.ErrNotFound
}

func (s *stubPriceRepo) SaveBatch(_ context.Context, _ []contracts.PricePoint) error { return nil }

type stubMacroRepo struct {
	series map[string][]contracts.MacroObservation
}

func (s *stubMacroRepo) GetSeries(_ context.Context, seriesID string, _ time.Time) ([]contracts.MacroObservation, error) {
	return s.series[seriesID], nil
}

func (s *stubMacroRepo) SaveBatch(_ context.Context, _ []contracts.MacroObservation) error {
	return nil
}

type stubScoreRepo struct {
	mu       sync.Mutex
	upserted [][]contracts.SectorScore
	latest   []contracts.SectorScore
}

func (s *stubScoreRepo) GetLatest(_ context.Context, _ time.Time) ([]contracts.SectorScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, nil
}

func (s *stubScoreRepo) GetAll(_ context.Context) ([]contracts.SectorScore, error) {
	return nil, nil
}

func (s *stubScoreRepo) Upsert(_ context.Context, scores []contracts.SectorScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserted = append(s.upserted, scores)
	return nil
}

func (s *stubScoreRepo) setLatest(scores []contracts.SectorScore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = scores
}

type stubCycleRepo struct {
	phases []contracts.CyclePhase
}

func (s *stubCycleRepo) Upsert(_ context.Context, phase contracts.CyclePhase) error {
	s.phases = append(s.phases, phase)
	return nil
}

func (s *stubCycleRepo) GetHistory(_ context.Context, _ int) ([]contracts.CyclePhase, error) {
	return s.phases, nil
}

type stubModel struct {
	trained     bool
	predictions map[string]float64
	err         error
}

func (m *stubModel) IsTrained() bool { return m.trained }

func (m *stubModel) Predict(_ map[string]float64, _ map[string]map[string]float64) (map[string]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.predictions, nil
}

func newTestScorer(model contracts.ForecastModel, prices contracts.PriceRepository, macros contracts.MacroRepository, scores contracts.ScoreRepository, cycles contracts.CycleRepository) *Scorer {
	log := logger.NewNop()
	tbl := tables.Default()
	features := NewFeatureBuilder(prices, macros, tbl, log)
	detector := cycle.NewDetector(macros, log)
	return NewScorer(model, detector, features, tbl, scores, cycles, log)
}

func emptyScorer(model contracts.ForecastModel) *Scorer {
	return newTestScorer(model,
		&stubPriceRepo{series: map[string][]contracts.PricePoint{}},
		&stubMacroRepo{series: map[string][]contracts.MacroObservation{}},
		&stubScoreRepo{}, &stubCycleRepo{})
}

func TestForecastScoresUntrainedModel(t *testing.T) {
	s := emptyScorer(&stubModel{trained: false})

	scores := s.ForecastScores(nil, nil)

	assert.Len(t, scores, 11)
	for _, v := range scores {
		assert.Equal(t, 50.0, v)
	}
}

func TestForecastScoresPredictionErrorFallsBack(t *testing.T) {
	s := emptyScorer(&stubModel{trained: true, err: errors.New("boom")})

	scores := s.ForecastScores(nil, nil)

	for _, v := range scores {
		assert.Equal(t, 50.0, v)
	}
}

func TestForecastScoresMinMaxNormalization(t *testing.T) {
	s := emptyScorer(&stubModel{trained: true, predictions: map[string]float64{
		"XLK": 0.05,
		"XLE": -0.03,
		"XLF": 0.01,
	}})

	scores := s.ForecastScores(nil, nil)

	assert.Equal(t, 90.0, scores["XLK"])
	assert.Equal(t, 10.0, scores["XLE"])
	assert.InDelta(t, 50.0, scores["XLF"], 1e-9)
}

func TestForecastScoresDegenerateRange(t *testing.T) {
	s := emptyScorer(&stubModel{trained: true, predictions: map[string]float64{
		"XLK": 0.02,
		"XLE": 0.02,
	}})

	scores := s.ForecastScores(nil, nil)

	// Zero spread maps everything to the bottom of the band.
	assert.Equal(t, 10.0, scores["XLK"])
	assert.Equal(t, 10.0, scores["XLE"])
}

func TestCycleScoresScaleAffinity(t *testing.T) {
	s := emptyScorer(&stubModel{})

	scores := s.CycleScores(contracts.PhaseRecession)

	assert.InDelta(t, 90.0, scores["XLV"], 1e-9)
	assert.InDelta(t, 20.0, scores["XLY"], 1e-9)
}

func TestMomentumScoreShortHistoryIsNeutral(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	assert.Equal(t, 50.0, momentumScore(closes))
}

func TestMomentumScoreFlatSeriesIsNeutral(t *testing.T) {
	closes := make([]float64, 80)
	for i := range closes {
		closes[i] = 100
	}
	// RSI 50, price equals the MA, zero 3-month return.
	assert.InDelta(t, 50.0, momentumScore(closes), 1e-9)
}

func TestMomentumScoreThreeMonthBase(t *testing.T) {
	// 64 observations, flat at 100 except the two oldest. The 3-month
	// return must be taken against the 63rd-to-last observation (index
	// 1 here, value 80), not one bar earlier.
	closes := make([]float64, 64)
	for i := range closes {
		closes[i] = 100
	}
	closes[0] = 200
	closes[1] = 80

	// RSI and the 50-day MA windows never reach the first two bars, so
	// only the 3-month return moves: (100/80-1)*100 = 25, clamped
	// contribution +40 -> 0.3*50 + 0.35*50 + 0.35*90 = 64.
	assert.InDelta(t, 64.0, momentumScore(closes), 1e-9)
}

func TestMomentumScoreUptrendBeatsDowntrend(t *testing.T) {
	up := make([]float64, 100)
	down := make([]float64, 100)
	for i := range up {
		up[i] = 100 + float64(i)
		down[i] = 200 - float64(i)
	}

	upScore := momentumScore(up)
	downScore := momentumScore(down)

	assert.Greater(t, upScore, 50.0)
	assert.Less(t, downScore, 50.0)
	assert.GreaterOrEqual(t, upScore, 0.0)
	assert.LessOrEqual(t, upScore, 100.0)
}

func TestMacroSensitivityNeutralWithoutFeatures(t *testing.T) {
	s := emptyScorer(&stubModel{})

	scores := s.MacroSensitivityScores(map[string]float64{})

	for _, v := range scores {
		assert.Equal(t, 50.0, v)
	}
}

func TestMacroSensitivityHighRatesHurtTech(t *testing.T) {
	s := emptyScorer(&stubModel{})

	features := map[string]float64{
		"DGS10_value":      4.8,
		"DGS10_percentile": 100,
	}
	scores := s.MacroSensitivityScores(features)

	// XLK has interest_rates sensitivity -0.6: 50 + (-0.6)(1)(25) = 35.
	assert.InDelta(t, 35.0, scores["XLK"], 1e-9)
}

func TestMacroConditionsClamped(t *testing.T) {
	conditions := macroConditions(map[string]float64{
		"USSLIND_roc_3m": 50,
		"STLFSI4_value":  9,
	})

	assert.Equal(t, 1.0, conditions["gdp_growth"])
	assert.Equal(t, -1.0, conditions["financial_stress"])
}

func TestRankDeterministicTiesGetDistinctRanks(t *testing.T) {
	scores := []contracts.SectorScore{
		{Symbol: "XLF", CompositeScore: 60},
		{Symbol: "XLK", CompositeScore: 70},
		{Symbol: "XLE", CompositeScore: 60},
		{Symbol: "XLV", CompositeScore: 55},
	}

	Rank(scores)

	assert.Equal(t, "XLK", scores[0].Symbol)
	assert.Equal(t, 1, scores[0].Rank)
	// Tie at 60 sorts by symbol; each still gets its own rank.
	assert.Equal(t, "XLE", scores[1].Symbol)
	assert.Equal(t, 2, scores[1].Rank)
	assert.Equal(t, "XLF", scores[2].Symbol)
	assert.Equal(t, 3, scores[2].Rank)
	assert.Equal(t, "XLV", scores[3].Symbol)
	assert.Equal(t, 4, scores[3].Rank)
}

func TestRankIsPermutationEvenOnTies(t *testing.T) {
	scores := []contracts.SectorScore{
		{Symbol: "XLK", CompositeScore: 70},
		{Symbol: "XLE", CompositeScore: 60},
		{Symbol: "XLF", CompositeScore: 60},
		{Symbol: "XLV", CompositeScore: 55},
	}

	Rank(scores)

	ranks := make([]int, 0, len(scores))
	for _, s := range scores {
		ranks = append(ranks, s.Rank)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4}, ranks)
}

func TestCompositeWeightsSumToOne(t *testing.T) {
	sum := contracts.WeightForecast + contracts.WeightCycle +
		contracts.WeightMomentum + contracts.WeightMacroSensitivity
	assert.Equal(t, 1.0, sum)
}

func TestComputeScoresIsIdempotent(t *testing.T) {
	s := emptyScorer(&stubModel{})

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	first, firstPhase, err := s.ComputeScores(context.Background(), date)
	require.NoError(t, err)
	second, secondPhase, err := s.ComputeScores(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstPhase, secondPhase)
}

func TestComputeScoresWithNoData(t *testing.T) {
	s := emptyScorer(&stubModel{})

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	scores, phase, err := s.ComputeScores(context.Background(), date)
	require.NoError(t, err)

	assert.Equal(t, contracts.PhaseMidCycle, phase.Phase)
	assert.Equal(t, 0.25, phase.Confidence)
	assert.Len(t, scores, 11)

	// Everything neutral except the cycle affinity: composite =
	// 37.5 + 25*affinity. XLK leads in mid cycle.
	assert.Equal(t, 1, scores[0].Rank)
	assert.Equal(t, "XLK", scores[0].Symbol)
	assert.InDelta(t, 60.0, scores[0].CompositeScore, 1e-9)
	for _, sc := range scores {
		assert.Equal(t, 50.0, sc.ForecastScore)
		assert.Equal(t, 50.0, sc.MomentumScore)
		assert.Equal(t, 50.0, sc.MacroSensitivityScore)
	}
}

func TestUpdateDailyScoresPersistsBoth(t *testing.T) {
	scoreRepo := &stubScoreRepo{}
	cycleRepo := &stubCycleRepo{}
	s := newTestScorer(&stubModel{},
		&stubPriceRepo{series: map[string][]contracts.PricePoint{}},
		&stubMacroRepo{series: map[string][]contracts.MacroObservation{}},
		scoreRepo, cycleRepo)

	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	scores, err := s.UpdateDailyScores(context.Background(), date)
	require.NoError(t, err)

	assert.Len(t, scores, 11)
	require.Len(t, scoreRepo.upserted, 1)
	require.Len(t, cycleRepo.phases, 1)
	assert.Equal(t, date, cycleRepo.phases[0].Date)
}
