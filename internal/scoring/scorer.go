package scoring

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/internal/cycle"
	"github.com/wonny/rotor/backend/internal/indicators"
	"github.com/wonny/rotor/backend/internal/tables"
	"github.com/wonny/rotor/backend/pkg/logger"
)

const (
	// minMomentumHistory is the observation floor below which a symbol
	// gets the neutral momentum score.
	minMomentumHistory = 50

	// threeMonthLookback is the trading-day offset for the 3-month return.
	threeMonthLookback = 63

	neutralScore = 50.0
)

// Scorer produces the composite sector scores.
type Scorer struct {
	model    contracts.ForecastModel
	detector *cycle.Detector
	features *FeatureBuilder
	tables   *tables.Tables
	scores   contracts.ScoreRepository
	cycles   contracts.CycleRepository
	logger   *logger.Logger
}

// NewScorer creates a scorer.
func NewScorer(
	model contracts.ForecastModel,
	detector *cycle.Detector,
	features *FeatureBuilder,
	tbl *tables.Tables,
	scores contracts.ScoreRepository,
	cycles contracts.CycleRepository,
	log *logger.Logger,
) *Scorer {
	return &Scorer{
		model:    model,
		detector: detector,
		features: features,
		tables:   tbl,
		scores:   scores,
		cycles:   cycles,
		logger:   log,
	}
}

// ForecastScores maps the model's raw relative return predictions onto a
// 10-90 scale via min-max normalization across the universe. An untrained
// model, or a prediction failure, yields the neutral score for every
// symbol so the composite still forms.
func (s *Scorer) ForecastScores(macroFeatures map[string]float64, sectorFeatures map[string]map[string]float64) map[string]float64 {
	neutral := func() map[string]float64 {
		out := make(map[string]float64, len(s.tables.Universe.Sectors))
		for _, symbol := range s.tables.Symbols() {
			out[symbol] = neutralScore
		}
		return out
	}

	if !s.model.IsTrained() {
		return neutral()
	}

	raw, err := s.model.Predict(macroFeatures, sectorFeatures)
	if err != nil {
		s.logger.WithError(err).Error("Forecast prediction failed, using neutral scores")
		return neutral()
	}

	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, v := range raw {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	rangeVal := maxVal - minVal
	if rangeVal == 0 {
		rangeVal = 1
	}

	out := make(map[string]float64, len(raw))
	for symbol, v := range raw {
		out[symbol] = (v-minVal)/rangeVal*80 + 10
	}
	return out
}

// CycleScores scales the phase affinity table to 0-100 for every symbol.
func (s *Scorer) CycleScores(phase contracts.Phase) map[string]float64 {
	out := make(map[string]float64, len(s.tables.Universe.Sectors))
	for _, symbol := range s.tables.Symbols() {
		out[symbol] = s.tables.Affinity(phase, symbol) * 100
	}
	return out
}

// MomentumScores blends RSI, price versus the 50-day average and the
// 3-month return into a 0-100 momentum score per symbol. Symbols with
// fewer than minMomentumHistory observations score neutral.
func (s *Scorer) MomentumScores(ctx context.Context, asOf time.Time) (map[string]float64, error) {
	out := make(map[string]float64, len(s.tables.Universe.Sectors))

	for _, symbol := range s.tables.Symbols() {
		closes, err := s.features.AdjCloses(ctx, symbol, asOf)
		if err != nil {
			return nil, err
		}
		out[symbol] = momentumScore(closes)
	}
	return out, nil
}

func momentumScore(closes []float64) float64 {
	if len(closes) < minMomentumHistory {
		return neutralScore
	}
	last := len(closes) - 1

	rsi := indicators.RSI(closes, 14)[last]

	priceVsMA := 0.0
	if sma50 := indicators.SMA(closes, 50)[last]; sma50 != 0 {
		priceVsMA = (closes[last]/sma50 - 1) * 100
	}

	// Base is the 63rd-to-last observation, 62 steps back from the
	// latest bar.
	return3M := 0.0
	if len(closes) > threeMonthLookback {
		if base := closes[len(closes)-threeMonthLookback]; base != 0 {
			return3M = (closes[last]/base - 1) * 100
		}
	}

	// RSI impact is dampened; the other two are clamped before blending.
	rsiScore := 50 + (rsi-50)*0.5
	maScore := 50 + clamp(priceVsMA*5, -30, 30)
	returnScore := 50 + clamp(return3M*2, -40, 40)

	score := rsiScore*0.3 + maScore*0.35 + returnScore*0.35
	return clamp(score, 0, 100)
}

// MacroSensitivityScores translates current macro conditions through each
// sector's sensitivity row. Conditions for series absent from the feature
// map are skipped, leaving those factors neutral.
func (s *Scorer) MacroSensitivityScores(macroFeatures map[string]float64) map[string]float64 {
	conditions := macroConditions(macroFeatures)

	out := make(map[string]float64, len(s.tables.Universe.Sectors))
	for _, symbol := range s.tables.Symbols() {
		score := neutralScore
		for factor, sensitivity := range s.tables.Sensitivities(symbol) {
			if condition, ok := conditions[factor]; ok {
				score += sensitivity * condition * 25
			}
		}
		out[symbol] = clamp(score, 0, 100)
	}
	return out
}

// macroConditions derives a [-1,1] condition per factor from the feature
// map. Each condition is gated on the presence of its source feature.
func macroConditions(features map[string]float64) map[string]float64 {
	conditions := make(map[string]float64)

	if _, ok := features["DGS10_value"]; ok {
		percentile := featureOr(features, "DGS10_percentile", 50)
		conditions["interest_rates"] = (percentile - 50) / 50
	}
	if _, ok := features["USSLIND_roc_3m"]; ok {
		conditions["gdp_growth"] = clamp(features["USSLIND_roc_3m"]/2, -1, 1)
	}
	if _, ok := features["T10Y2Y_value"]; ok {
		conditions["yield_curve"] = clamp(features["T10Y2Y_value"]/2, -1, 1)
	}
	if _, ok := features["BAA10Y_value"]; ok {
		conditions["credit_spreads"] = clamp((2-features["BAA10Y_value"])/2, -1, 1)
	}
	if _, ok := features["UMCSENT_percentile"]; ok {
		conditions["consumer_confidence"] = (features["UMCSENT_percentile"] - 50) / 50
	}
	if _, ok := features["DCOILWTICO_roc_3m"]; ok {
		conditions["oil_prices"] = clamp(features["DCOILWTICO_roc_3m"]/20, -1, 1)
	}
	if _, ok := features["STLFSI4_value"]; ok {
		// Inverted: stress is bad for stress-sensitive sectors.
		conditions["financial_stress"] = -clamp(features["STLFSI4_value"], -2, 2) / 2
	}
	if _, ok := features["INDPRO_roc_3m"]; ok {
		conditions["industrial_production"] = clamp(features["INDPRO_roc_3m"]/3, -1, 1)
	}

	return conditions
}

// ComputeScores builds the full ranked score set for a date. The detected
// cycle phase is returned alongside so callers can persist both.
func (s *Scorer) ComputeScores(ctx context.Context, date time.Time) ([]contracts.SectorScore, *contracts.CyclePhase, error) {
	macroFeatures, err := s.features.MacroFeatures(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	sectorFeatures, err := s.features.SectorFeatures(ctx, date)
	if err != nil {
		return nil, nil, err
	}

	phase, err := s.detector.Detect(ctx, date)
	if err != nil {
		return nil, nil, err
	}

	forecastScores := s.ForecastScores(macroFeatures, sectorFeatures)
	cycleScores := s.CycleScores(phase.Phase)
	momentumScores, err := s.MomentumScores(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	sensitivityScores := s.MacroSensitivityScores(macroFeatures)

	scores := make([]contracts.SectorScore, 0, len(s.tables.Universe.Sectors))
	for _, symbol := range s.tables.Symbols() {
		forecast := scoreOr(forecastScores, symbol)
		cycleScore := scoreOr(cycleScores, symbol)
		momentum := scoreOr(momentumScores, symbol)
		sensitivity := scoreOr(sensitivityScores, symbol)

		composite := contracts.WeightForecast*forecast +
			contracts.WeightCycle*cycleScore +
			contracts.WeightMomentum*momentum +
			contracts.WeightMacroSensitivity*sensitivity

		scores = append(scores, contracts.SectorScore{
			Date:                  date,
			Symbol:                symbol,
			ForecastScore:         round2(forecast),
			CycleScore:            round2(cycleScore),
			MomentumScore:         round2(momentum),
			MacroSensitivityScore: round2(sensitivity),
			CompositeScore:        round2(composite),
		})
	}

	Rank(scores)

	return scores, phase, nil
}

// UpdateDailyScores recomputes and persists the phase and the ranking for
// a date. Reruns replace the previous rows.
func (s *Scorer) UpdateDailyScores(ctx context.Context, date time.Time) ([]contracts.SectorScore, error) {
	scores, phase, err := s.ComputeScores(ctx, date)
	if err != nil {
		return nil, err
	}

	if err := s.cycles.Upsert(ctx, *phase); err != nil {
		return nil, err
	}
	if err := s.scores.Upsert(ctx, scores); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"sectors": len(scores),
		"phase":   phase.Phase,
	}).Info("Saved daily sector scores")

	return scores, nil
}

// Rank sorts scores by composite descending (symbol ascending on exact
// ties, keeping reruns deterministic) and assigns ranks 1..N in place.
// Tied composites still get distinct consecutive ranks from the sort
// order, so a date's ranks are always a permutation of 1..N.
func Rank(scores []contracts.SectorScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].CompositeScore != scores[j].CompositeScore {
			return scores[i].CompositeScore > scores[j].CompositeScore
		}
		return scores[i].Symbol < scores[j].Symbol
	})

	for i := range scores {
		scores[i].Rank = i + 1
	}
}

func scoreOr(scores map[string]float64, symbol string) float64 {
	if v, ok := scores[symbol]; ok {
		return v
	}
	return neutralScore
}

func featureOr(features map[string]float64, name string, fallback float64) float64 {
	if v, ok := features[name]; ok {
		return v
	}
	return fallback
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
