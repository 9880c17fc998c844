// Package forecast loads an exported model artifact and serves relative
// return predictions for the sector universe. Training happens offline;
// this package only does inference from the artifact's standardizer and
// linear coefficients.
package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/wonny/rotor/backend/pkg/logger"
)

// ErrNotTrained is returned by Predict when no artifact was loaded.
var ErrNotTrained = errors.New("forecast model not trained")

// Artifact is the JSON export of the offline-trained model: feature order,
// standardization parameters, and linear coefficients, all index-aligned.
type Artifact struct {
	Version      int       `json:"version"`
	TrainedAt    time.Time `json:"trained_at"`
	FeatureNames []string  `json:"feature_names"`
	Means        []float64 `json:"means"`
	Stds         []float64 `json:"stds"`
	Weights      []float64 `json:"weights"`
	Intercept    float64   `json:"intercept"`
}

func (a *Artifact) validate() error {
	if len(a.FeatureNames) == 0 {
		return errors.New("artifact has no features")
	}
	n := len(a.FeatureNames)
	if len(a.Means) != n || len(a.Stds) != n || len(a.Weights) != n {
		return fmt.Errorf("artifact arrays misaligned: %d features, %d means, %d stds, %d weights",
			n, len(a.Means), len(a.Stds), len(a.Weights))
	}
	return nil
}

// Model predicts per-sector relative returns from the flat feature maps
// produced by the macro normalizer and the indicator engine.
type Model struct {
	artifact *Artifact
	logger   *logger.Logger
}

// Load reads the model artifact from path. A missing file is not an
// error: it yields an untrained model, and scoring falls back to a
// neutral forecast signal.
func Load(path string, log *logger.Logger) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.WithField("path", path).Warn("No forecast model artifact, predictions disabled")
			return &Model{logger: log}, nil
		}
		return nil, fmt.Errorf("reading model artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("parsing model artifact: %w", err)
	}
	if err := artifact.validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"path":       path,
		"features":   len(artifact.FeatureNames),
		"trained_at": artifact.TrainedAt.Format("2006-01-02"),
	}).Info("Loaded forecast model artifact")

	return &Model{artifact: &artifact, logger: log}, nil
}

// NewFromArtifact builds a model directly from an artifact.
func NewFromArtifact(artifact *Artifact, log *logger.Logger) (*Model, error) {
	if err := artifact.validate(); err != nil {
		return nil, err
	}
	return &Model{artifact: artifact, logger: log}, nil
}

// IsTrained reports whether an artifact is loaded.
func (m *Model) IsTrained() bool {
	return m.artifact != nil
}

// Predict returns the predicted relative return per symbol in
// sectorFeatures. For each symbol the macro features and the symbol's own
// features are merged (symbol features win on collisions), standardized
// with the artifact's parameters, and passed through the linear model.
// Features absent from the input contribute their standardized zero.
func (m *Model) Predict(macroFeatures map[string]float64, sectorFeatures map[string]map[string]float64) (map[string]float64, error) {
	if !m.IsTrained() {
		return nil, ErrNotTrained
	}

	out := make(map[string]float64, len(sectorFeatures))
	for symbol, own := range sectorFeatures {
		merged := make(map[string]float64, len(macroFeatures)+len(own))
		for k, v := range macroFeatures {
			merged[k] = v
		}
		for k, v := range own {
			merged[k] = v
		}
		out[symbol] = m.score(merged)
	}
	return out, nil
}

func (m *Model) score(features map[string]float64) float64 {
	pred := m.artifact.Intercept
	for i, name := range m.artifact.FeatureNames {
		x := features[name]
		z := 0.0
		if m.artifact.Stds[i] != 0 {
			z = (x - m.artifact.Means[i]) / m.artifact.Stds[i]
		}
		pred += m.artifact.Weights[i] * z
	}
	return pred
}
