// Package cycle classifies the current business cycle phase from a fixed
// battery of macro indicators. Each evaluation independently reclassifies
// "now"; no transition history is kept.
package cycle

import (
	"context"
	"time"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/internal/macro"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// Indicator battery: logical name -> FRED series id. Sentiment is fetched
// for the feature set but contributes no points to the classification.
const (
	SeriesYieldCurve           = "T10Y2Y"
	SeriesUnemployment         = "UNRATE"
	SeriesLeadingIndex         = "USSLIND"
	SeriesIndustrialProduction = "INDPRO"
	SeriesCreditSpread         = "BAA10Y"
	SeriesConsumerSentiment    = "UMCSENT"
)

// IndicatorSeries lists the series the detector consumes.
var IndicatorSeries = []string{
	SeriesYieldCurve,
	SeriesUnemployment,
	SeriesLeadingIndex,
	SeriesIndustrialProduction,
	SeriesCreditSpread,
	SeriesConsumerSentiment,
}

// trendWindow and trendThresholdFactor parameterize the slope classifier
// used on indicator series. The detector uses a tighter threshold than the
// general current-status trend.
const (
	trendWindow          = 3
	trendThresholdFactor = 0.05
)

// Detector assigns points to the four cycle phases using threshold rules
// over the indicator battery and returns the winning phase with a
// confidence ratio.
type Detector struct {
	macroRepo contracts.MacroRepository
	logger    *logger.Logger
}

// NewDetector creates a new cycle detector.
func NewDetector(macroRepo contracts.MacroRepository, log *logger.Logger) *Detector {
	return &Detector{
		macroRepo: macroRepo,
		logger:    log,
	}
}

// Detect classifies the business cycle phase as of the given date.
// Missing indicators contribute zero points rather than failing the
// computation; with no indicator data at all the result is the neutral
// prior: mid_cycle with confidence 0.25.
func (d *Detector) Detect(ctx context.Context, asOf time.Time) (*contracts.CyclePhase, error) {
	series := make(map[string][]float64, len(IndicatorSeries))

	for _, id := range IndicatorSeries {
		observations, err := d.macroRepo.GetSeries(ctx, id, asOf)
		if err != nil {
			return nil, err
		}
		values := make([]float64, 0, len(observations))
		for _, obs := range observations {
			if obs.Value != nil {
				values = append(values, *obs.Value)
			}
		}
		if len(values) > 0 {
			series[id] = values
		}
	}

	phase, confidence, points := classify(series)

	d.logger.WithFields(map[string]interface{}{
		"date":       asOf.Format("2006-01-02"),
		"phase":      phase,
		"confidence": confidence,
		"points":     points,
	}).Info("Detected business cycle phase")

	return &contracts.CyclePhase{
		Date:       asOf,
		Phase:      phase,
		Confidence: confidence,
	}, nil
}

// classify applies the threshold rules. Rule weights are design
// constants, not user-tunable.
func classify(series map[string][]float64) (contracts.Phase, float64, map[contracts.Phase]float64) {
	points := map[contracts.Phase]float64{
		contracts.PhaseEarlyCycle: 0,
		contracts.PhaseMidCycle:   0,
		contracts.PhaseLateCycle:  0,
		contracts.PhaseRecession:  0,
	}

	// Yield curve: level-based.
	if yc, ok := series[SeriesYieldCurve]; ok {
		value := yc[len(yc)-1]
		switch {
		case value < 0: // inverted
			points[contracts.PhaseRecession] += 2
			points[contracts.PhaseLateCycle] += 1
		case value < 0.5: // flat
			points[contracts.PhaseLateCycle] += 2
		case value > 1.5: // steep
			points[contracts.PhaseEarlyCycle] += 2
		default: // normal
			points[contracts.PhaseMidCycle] += 1.5
		}
	}

	// Unemployment: trend-based.
	if unemp, ok := series[SeriesUnemployment]; ok {
		switch indicatorTrend(unemp) {
		case macro.TrendRising:
			points[contracts.PhaseRecession] += 2
			points[contracts.PhaseLateCycle] += 1
		case macro.TrendFalling:
			points[contracts.PhaseEarlyCycle] += 2
			points[contracts.PhaseMidCycle] += 1
		default:
			points[contracts.PhaseMidCycle] += 1.5
		}
	}

	// Leading index: trend-based.
	if lead, ok := series[SeriesLeadingIndex]; ok {
		switch indicatorTrend(lead) {
		case macro.TrendRising:
			points[contracts.PhaseEarlyCycle] += 1.5
			points[contracts.PhaseMidCycle] += 1
		case macro.TrendFalling:
			points[contracts.PhaseLateCycle] += 1
			points[contracts.PhaseRecession] += 1.5
		}
	}

	// Industrial production: trend-based.
	if ip, ok := series[SeriesIndustrialProduction]; ok {
		switch indicatorTrend(ip) {
		case macro.TrendRising:
			points[contracts.PhaseMidCycle] += 1.5
			points[contracts.PhaseEarlyCycle] += 1
		case macro.TrendFalling:
			points[contracts.PhaseRecession] += 1.5
			points[contracts.PhaseLateCycle] += 1
		}
	}

	// Credit spread: level-based.
	if spread, ok := series[SeriesCreditSpread]; ok {
		value := spread[len(spread)-1]
		switch {
		case value > 3: // stressed
			points[contracts.PhaseRecession] += 2
		case value > 2:
			points[contracts.PhaseLateCycle] += 1.5
		case value < 1.5: // benign
			points[contracts.PhaseMidCycle] += 1.5
		}
	}

	total := 0.0
	for _, p := range points {
		total += p
	}

	if total == 0 {
		return contracts.PhaseMidCycle, 0.25, points
	}

	// Argmax in declaration order: ties resolve to the earliest phase.
	winner := contracts.Phases[0]
	best := points[winner]
	for _, phase := range contracts.Phases[1:] {
		if points[phase] > best {
			winner = phase
			best = points[phase]
		}
	}

	return winner, best / total, points
}

func indicatorTrend(series []float64) string {
	return macro.TrendLabel(series, trendWindow, trendThresholdFactor)
}
