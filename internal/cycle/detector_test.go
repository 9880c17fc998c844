package cycle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/pkg/logger"
)

func ptr(v float64) *float64 { return &v }

type stubMacroRepo struct {
	series map[string][]contracts.MacroObservation
}

func (s *stubMacroRepo) GetSeries(_ context.Context, seriesID string, _ time.Time) ([]contracts.MacroObservation, error) {
	return s.series[seriesID], nil
}

func (s *stubMacroRepo) SaveBatch(_ context.Context, _ []contracts.MacroObservation) error {
	return nil
}

func observations(seriesID string, values ...float64) []contracts.MacroObservation {
	out := make([]contracts.MacroObservation, len(values))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, v := range values {
		out[i] = contracts.MacroObservation{
			SeriesID: seriesID,
			Date:     base.AddDate(0, i, 0),
			Value:    ptr(v),
		}
	}
	return out
}

func TestClassifyNoData(t *testing.T) {
	phase, confidence, _ := classify(map[string][]float64{})

	assert.Equal(t, contracts.PhaseMidCycle, phase)
	assert.Equal(t, 0.25, confidence)
}

func TestClassifyRecessionSignals(t *testing.T) {
	// Inverted curve, rising unemployment, falling leading index and
	// production, blown-out spreads.
	series := map[string][]float64{
		SeriesYieldCurve:           {-0.3},
		SeriesUnemployment:         {3.5, 3.8, 4.2, 5.0},
		SeriesLeadingIndex:         {1.8, 1.5, 1.0, 0.4},
		SeriesIndustrialProduction: {105, 104, 102, 99},
		SeriesCreditSpread:         {3.4},
	}

	phase, confidence, points := classify(series)

	assert.Equal(t, contracts.PhaseRecession, phase)
	assert.Equal(t, 9.0, points[contracts.PhaseRecession])
	assert.Equal(t, 4.0, points[contracts.PhaseLateCycle])
	assert.InDelta(t, 9.0/13.0, confidence, 1e-9)
}

func TestClassifyEarlyCycleSignals(t *testing.T) {
	series := map[string][]float64{
		SeriesYieldCurve:           {2.1},
		SeriesUnemployment:         {8.8, 8.0, 7.1, 6.2},
		SeriesLeadingIndex:         {0.1, 0.2, 0.8, 1.5},
		SeriesIndustrialProduction: {93, 95, 98, 102},
	}

	phase, _, points := classify(series)

	assert.Equal(t, contracts.PhaseEarlyCycle, phase)
	// steep curve 2 + falling unemployment 2 + rising leading 1.5 + rising production 1
	assert.Equal(t, 6.5, points[contracts.PhaseEarlyCycle])
}

func TestClassifyLateCycleSignals(t *testing.T) {
	series := map[string][]float64{
		SeriesYieldCurve:   {0.2},
		SeriesCreditSpread: {2.4},
	}

	phase, confidence, points := classify(series)

	assert.Equal(t, contracts.PhaseLateCycle, phase)
	assert.Equal(t, 3.5, points[contracts.PhaseLateCycle])
	assert.Equal(t, 1.0, confidence)
}

func TestClassifyMidCycleSignals(t *testing.T) {
	series := map[string][]float64{
		SeriesYieldCurve:           {1.0},
		SeriesUnemployment:         {4.0, 4.0, 4.0, 4.0},
		SeriesIndustrialProduction: {99, 100, 101, 102},
		SeriesCreditSpread:         {1.2},
	}

	phase, _, points := classify(series)

	assert.Equal(t, contracts.PhaseMidCycle, phase)
	assert.Equal(t, 6.0, points[contracts.PhaseMidCycle])
}

func TestClassifyTieResolvesInPhaseOrder(t *testing.T) {
	// Steep curve gives early 2; stressed spreads give recession 2.
	// Early cycle is declared first and must win the tie.
	series := map[string][]float64{
		SeriesYieldCurve:   {2.0},
		SeriesCreditSpread: {3.5},
	}

	phase, confidence, _ := classify(series)

	assert.Equal(t, contracts.PhaseEarlyCycle, phase)
	assert.Equal(t, 0.5, confidence)
}

func TestClassifySentimentDoesNotScore(t *testing.T) {
	series := map[string][]float64{
		SeriesConsumerSentiment: {55, 60, 70},
	}

	phase, confidence, _ := classify(series)

	assert.Equal(t, contracts.PhaseMidCycle, phase)
	assert.Equal(t, 0.25, confidence)
}

func TestDetectSkipsNullObservations(t *testing.T) {
	repo := &stubMacroRepo{series: map[string][]contracts.MacroObservation{
		SeriesYieldCurve: {
			{SeriesID: SeriesYieldCurve, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Value: ptr(1.8)},
			{SeriesID: SeriesYieldCurve, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: nil},
		},
	}}
	detector := NewDetector(repo, logger.NewNop())

	result, err := detector.Detect(context.Background(), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Last non-null value is steep, so early cycle wins outright.
	assert.Equal(t, contracts.PhaseEarlyCycle, result.Phase)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestDetectEmptyRepository(t *testing.T) {
	detector := NewDetector(&stubMacroRepo{series: map[string][]contracts.MacroObservation{}}, logger.NewNop())

	result, err := detector.Detect(context.Background(), time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, contracts.PhaseMidCycle, result.Phase)
	assert.Equal(t, 0.25, result.Confidence)
}
