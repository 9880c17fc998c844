package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/rotor/backend/internal/backtest"
	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// BacktestHandler handles backtest API endpoints.
type BacktestHandler struct {
	service  *backtest.Service
	analyzer *backtest.Analyzer
	logger   *logger.Logger
}

// NewBacktestHandler creates a new backtest handler.
func NewBacktestHandler(service *backtest.Service, analyzer *backtest.Analyzer, log *logger.Logger) *BacktestHandler {
	return &BacktestHandler{
		service:  service,
		analyzer: analyzer,
		logger:   log,
	}
}

// Run executes a backtest with the posted configuration. Absent fields
// fall back to the defaults.
// POST /api/backtest/run
func (h *BacktestHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cfg := contracts.DefaultBacktestConfig()
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	if err := cfg.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, result, err := h.service.Run(ctx, cfg)
	if err != nil {
		h.logger.WithError(err).WithFields(map[string]interface{}{
			"start": cfg.StartDate,
			"end":   cfg.EndDate,
		}).Error("Backtest run failed")
		respondError(w, http.StatusInternalServerError, "Backtest run failed: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"backtest_id": id,
		"status":      "completed",
		"results":     result,
	})
}

// GetResult returns a stored backtest result.
// GET /api/backtest/results/{id}
func (h *BacktestHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	result, err := h.service.Result(ctx, id)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Backtest not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load backtest result")
		respondError(w, http.StatusInternalServerError, "Failed to load backtest result")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"backtest_id": id,
		"config":      result.Config,
		"results":     result,
	})
}

// GetCorrelation reports how stored scores correlated with realized
// forward returns.
// GET /api/backtest/correlation
func (h *BacktestHandler) GetCorrelation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.analyzer.Analyze(ctx)
	if err != nil {
		if errors.Is(err, backtest.ErrInsufficientData) {
			respondJSON(w, http.StatusOK, map[string]string{
				"error": "Insufficient data for correlation",
			})
			return
		}
		h.logger.WithError(err).Error("Correlation analysis failed")
		respondError(w, http.StatusInternalServerError, "Correlation analysis failed")
		return
	}

	respondJSON(w, http.StatusOK, report)
}
