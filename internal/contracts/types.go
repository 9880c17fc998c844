package contracts

import (
	"time"
)

// PricePoint represents one daily bar for a sector instrument.
// Immutable once stored; unique per (symbol, date).
type PricePoint struct {
	Symbol   string    `json:"symbol"`
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adj_close"`
	Volume   int64     `json:"volume"`
}

// MacroObservation represents one observation of a macro series.
// Value is nil when the provider reported a gap.
type MacroObservation struct {
	SeriesID string    `json:"series_id"`
	Date     time.Time `json:"date"`
	Value    *float64  `json:"value"`
}

// Phase is a business cycle phase label.
type Phase string

const (
	PhaseEarlyCycle Phase = "early_cycle"
	PhaseMidCycle   Phase = "mid_cycle"
	PhaseLateCycle  Phase = "late_cycle"
	PhaseRecession  Phase = "recession"
)

// Phases lists all phases in declaration order. The order doubles as the
// tie-break for the cycle detector: the first phase with the maximum point
// total wins.
var Phases = []Phase{PhaseEarlyCycle, PhaseMidCycle, PhaseLateCycle, PhaseRecession}

// Valid reports whether p is a known phase label.
func (p Phase) Valid() bool {
	switch p {
	case PhaseEarlyCycle, PhaseMidCycle, PhaseLateCycle, PhaseRecession:
		return true
	}
	return false
}

// CyclePhase is a detected business cycle phase for a date.
// Confidence is the winning phase's share of all points awarded, 0.25 when
// no indicator contributed.
type CyclePhase struct {
	Date       time.Time `json:"date"`
	Phase      Phase     `json:"phase"`
	Confidence float64   `json:"confidence"`
}

// SectorScore carries the four sub-scores, the composite and the rank
// for one (date, symbol). Ranks are a permutation of 1..N across a date;
// sub-scores are clamped to [0,100] by the producing component, never by
// consumers.
type SectorScore struct {
	Date                  time.Time `json:"date"`
	Symbol                string    `json:"symbol"`
	ForecastScore         float64   `json:"forecast_score"`
	CycleScore            float64   `json:"cycle_score"`
	MomentumScore         float64   `json:"momentum_score"`
	MacroSensitivityScore float64   `json:"macro_sensitivity_score"`
	CompositeScore        float64   `json:"composite_score"`
	Rank                  int       `json:"rank"` // 1 = highest composite
}

// Composite score blend weights. They sum to 1.0 exactly.
const (
	WeightForecast         = 0.40
	WeightCycle            = 0.25
	WeightMomentum         = 0.20
	WeightMacroSensitivity = 0.15
)
