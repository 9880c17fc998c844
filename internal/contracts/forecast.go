package contracts

// ForecastModel is the capability the composite scorer depends on: given
// macro and per-sector feature vectors, produce a raw numeric forecast per
// sector. The model's internals and training are a collaborator concern.
//
// An untrained model degrades the scorer to neutral forecasts; it is never
// a failure.
type ForecastModel interface {
	IsTrained() bool

	// Predict maps each symbol in sectorFeatures to a raw forecast. Raw
	// values are unscaled; the scorer min-max-normalizes them across the
	// universe before blending.
	Predict(macroFeatures map[string]float64, sectorFeatures map[string]map[string]float64) (map[string]float64, error)
}
