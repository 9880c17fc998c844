// Package tables holds the static configuration data of the ranking
// system: the sector universe, the phase->sector affinity table and the
// sector->factor macro sensitivity matrix. The data is loaded once at
// process start and passed explicitly into the detector and scorer; it is
// never mutated afterwards.
package tables

import (
	"github.com/wonny/rotor/backend/internal/contracts"
)

// Sector is one instrument of the fixed universe.
type Sector struct {
	Symbol string `yaml:"symbol" json:"symbol"`
	Name   string `yaml:"name" json:"name"`
}

// Universe is the fixed set of tradable sector instruments.
type Universe struct {
	Benchmark string   `yaml:"benchmark" json:"benchmark"`
	Sectors   []Sector `yaml:"sectors" json:"sectors"`
}

// Tables is the full static configuration bundle.
type Tables struct {
	Universe Universe `yaml:"universe" json:"universe"`

	// PhaseAffinity maps phase -> symbol -> affinity in [0,1].
	PhaseAffinity map[string]map[string]float64 `yaml:"phase_affinity" json:"phase_affinity"`

	// MacroSensitivity maps symbol -> factor -> sensitivity in [-1,1].
	MacroSensitivity map[string]map[string]float64 `yaml:"macro_sensitivity" json:"macro_sensitivity"`
}

// Symbols returns the universe symbols in declaration order.
func (t *Tables) Symbols() []string {
	out := make([]string, 0, len(t.Universe.Sectors))
	for _, s := range t.Universe.Sectors {
		out = append(out, s.Symbol)
	}
	return out
}

// SectorName returns the human name of a symbol, or the symbol itself.
func (t *Tables) SectorName(symbol string) string {
	for _, s := range t.Universe.Sectors {
		if s.Symbol == symbol {
			return s.Name
		}
	}
	return symbol
}

// Affinity returns the phase affinity for a symbol. Symbols missing from
// the table default to a neutral 0.5.
func (t *Tables) Affinity(phase contracts.Phase, symbol string) float64 {
	row, ok := t.PhaseAffinity[string(phase)]
	if !ok {
		row = t.PhaseAffinity[string(contracts.PhaseMidCycle)]
	}
	if v, ok := row[symbol]; ok {
		return v
	}
	return 0.5
}

// Sensitivities returns the factor sensitivity row for a symbol; nil when
// the symbol has no entries.
func (t *Tables) Sensitivities(symbol string) map[string]float64 {
	return t.MacroSensitivity[symbol]
}

// Default returns the built-in tables: the eleven SPDR GICS sector ETFs
// versus SPY, the Fidelity-style phase affinity table and the macro
// sensitivity matrix. A YAML file loaded via Load overrides these.
func Default() *Tables {
	return &Tables{
		Universe: Universe{
			Benchmark: "SPY",
			Sectors: []Sector{
				{Symbol: "XLK", Name: "Technology"},
				{Symbol: "XLV", Name: "Healthcare"},
				{Symbol: "XLF", Name: "Financials"},
				{Symbol: "XLY", Name: "Consumer Discretionary"},
				{Symbol: "XLP", Name: "Consumer Staples"},
				{Symbol: "XLE", Name: "Energy"},
				{Symbol: "XLI", Name: "Industrials"},
				{Symbol: "XLB", Name: "Materials"},
				{Symbol: "XLU", Name: "Utilities"},
				{Symbol: "XLRE", Name: "Real Estate"},
				{Symbol: "XLC", Name: "Communication Services"},
			},
		},
		PhaseAffinity: map[string]map[string]float64{
			"early_cycle": {
				"XLF": 0.9, "XLY": 0.85, "XLI": 0.8, "XLRE": 0.75,
				"XLB": 0.7, "XLK": 0.6, "XLC": 0.55, "XLE": 0.5,
				"XLV": 0.4, "XLP": 0.35, "XLU": 0.3,
			},
			"mid_cycle": {
				"XLK": 0.9, "XLC": 0.85, "XLI": 0.75, "XLF": 0.7,
				"XLY": 0.65, "XLB": 0.6, "XLE": 0.55, "XLRE": 0.5,
				"XLV": 0.45, "XLP": 0.4, "XLU": 0.35,
			},
			"late_cycle": {
				"XLE": 0.9, "XLB": 0.85, "XLV": 0.7, "XLI": 0.65,
				"XLK": 0.6, "XLP": 0.55, "XLU": 0.5, "XLC": 0.45,
				"XLF": 0.4, "XLY": 0.35, "XLRE": 0.3,
			},
			"recession": {
				"XLV": 0.9, "XLP": 0.85, "XLU": 0.8, "XLC": 0.55,
				"XLK": 0.5, "XLRE": 0.45, "XLI": 0.4, "XLB": 0.35,
				"XLE": 0.3, "XLF": 0.25, "XLY": 0.2,
			},
		},
		MacroSensitivity: map[string]map[string]float64{
			"XLK": {
				"interest_rates": -0.6, "gdp_growth": 0.7, "consumer_confidence": 0.6,
				"yield_curve": 0.3, "financial_conditions": -0.5,
			},
			"XLV": {
				"gdp_growth": 0.1, "interest_rates": -0.2, "unemployment": 0.3,
				"financial_stress": 0.4,
			},
			"XLF": {
				"interest_rates": 0.8, "yield_curve": 0.9, "gdp_growth": 0.6,
				"credit_spreads": -0.7, "housing": 0.5,
			},
			"XLY": {
				"consumer_confidence": 0.8, "unemployment": -0.7, "gdp_growth": 0.7,
				"retail_sales": 0.6,
			},
			"XLP": {
				"gdp_growth": 0.1, "unemployment": 0.4, "inflation": -0.3,
				"financial_stress": 0.5,
			},
			"XLE": {
				"oil_prices": 0.9, "gdp_growth": 0.4, "inflation": 0.5,
				"industrial_production": 0.6,
			},
			"XLI": {
				"gdp_growth": 0.7, "industrial_production": 0.8, "durable_goods": 0.7,
				"capacity_utilization": 0.6,
			},
			"XLB": {
				"gdp_growth": 0.6, "inflation": 0.5, "industrial_production": 0.7,
				"capacity_utilization": 0.6,
			},
			"XLU": {
				"interest_rates": -0.8, "yield_curve": -0.5, "financial_stress": 0.6,
				"unemployment": 0.3,
			},
			"XLRE": {
				"interest_rates": -0.8, "housing": 0.7, "gdp_growth": 0.4,
				"credit_spreads": -0.5,
			},
			"XLC": {
				"gdp_growth": 0.5, "consumer_confidence": 0.5, "interest_rates": -0.4,
			},
		},
	}
}
