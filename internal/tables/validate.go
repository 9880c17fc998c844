package tables

import (
	"fmt"

	"github.com/wonny/rotor/backend/internal/contracts"
)

// Validate checks the structural invariants of the tables: a non-empty
// universe with a benchmark, affinity rows keyed by known phases with
// values in [0,1], and sensitivity rows for known symbols in [-1,1].
func Validate(t *Tables) error {
	if t.Universe.Benchmark == "" {
		return fmt.Errorf("tables: universe.benchmark is required")
	}
	if len(t.Universe.Sectors) == 0 {
		return fmt.Errorf("tables: universe.sectors must not be empty")
	}

	known := make(map[string]bool, len(t.Universe.Sectors))
	for i, s := range t.Universe.Sectors {
		if s.Symbol == "" {
			return fmt.Errorf("tables: universe.sectors[%d].symbol is required", i)
		}
		if known[s.Symbol] {
			return fmt.Errorf("tables: duplicate sector symbol %q", s.Symbol)
		}
		known[s.Symbol] = true
	}
	if known[t.Universe.Benchmark] {
		return fmt.Errorf("tables: benchmark %q must not be part of the universe", t.Universe.Benchmark)
	}

	for phase, row := range t.PhaseAffinity {
		if !contracts.Phase(phase).Valid() {
			return fmt.Errorf("tables: unknown phase %q in phase_affinity", phase)
		}
		for symbol, affinity := range row {
			if !known[symbol] {
				return fmt.Errorf("tables: phase_affinity.%s references unknown symbol %q", phase, symbol)
			}
			if affinity < 0 || affinity > 1 {
				return fmt.Errorf("tables: phase_affinity.%s.%s = %v outside [0,1]", phase, symbol, affinity)
			}
		}
	}

	for symbol, row := range t.MacroSensitivity {
		if !known[symbol] {
			return fmt.Errorf("tables: macro_sensitivity references unknown symbol %q", symbol)
		}
		for factor, sensitivity := range row {
			if sensitivity < -1 || sensitivity > 1 {
				return fmt.Errorf("tables: macro_sensitivity.%s.%s = %v outside [-1,1]", symbol, factor, sensitivity)
			}
		}
	}

	return nil
}
