package handlers

import (
	"net/http"
	"time"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/internal/cycle"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// CycleHandler handles business cycle API endpoints.
type CycleHandler struct {
	detector *cycle.Detector
	repo     contracts.CycleRepository
	logger   *logger.Logger
}

// NewCycleHandler creates a new cycle handler.
func NewCycleHandler(detector *cycle.Detector, repo contracts.CycleRepository, log *logger.Logger) *CycleHandler {
	return &CycleHandler{
		detector: detector,
		repo:     repo,
		logger:   log,
	}
}

// PhaseEntry is one historical phase row.
type PhaseEntry struct {
	Date       string  `json:"date"`
	Phase      string  `json:"phase"`
	Confidence float64 `json:"confidence"`
}

// GetBusinessCycle returns the phase detected for today plus up to a year
// of stored history.
// GET /api/cycle
func (h *CycleHandler) GetBusinessCycle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, err := h.detector.Detect(ctx, time.Now().UTC())
	if err != nil {
		h.logger.WithError(err).Error("Failed to detect business cycle phase")
		respondError(w, http.StatusInternalServerError, "Failed to detect business cycle phase")
		return
	}

	history, err := h.repo.GetHistory(ctx, 365)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query phase history")
		respondError(w, http.StatusInternalServerError, "Failed to query phase history")
		return
	}

	entries := make([]PhaseEntry, 0, len(history))
	for _, p := range history {
		entries = append(entries, PhaseEntry{
			Date:       p.Date.Format("2006-01-02"),
			Phase:      string(p.Phase),
			Confidence: p.Confidence,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"current_phase": string(current.Phase),
			"confidence":    current.Confidence,
			"phase_history": entries,
		},
	})
}
