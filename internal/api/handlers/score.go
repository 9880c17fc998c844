package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/internal/scoring"
	"github.com/wonny/rotor/backend/internal/tables"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// ScoreHandler handles scoring API endpoints.
type ScoreHandler struct {
	rankings *scoring.RankingService
	computer scoring.ScoreComputer
	repo     contracts.ScoreRepository
	tables   *tables.Tables
	logger   *logger.Logger
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(rankings *scoring.RankingService, computer scoring.ScoreComputer, repo contracts.ScoreRepository, tbl *tables.Tables, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		rankings: rankings,
		computer: computer,
		repo:     repo,
		tables:   tbl,
		logger:   log,
	}
}

// RankingItem is one sector row of the current rankings response.
type RankingItem struct {
	Symbol                string  `json:"symbol"`
	Name                  string  `json:"name"`
	Date                  string  `json:"date"`
	ForecastScore         float64 `json:"forecast_score"`
	CycleScore            float64 `json:"cycle_score"`
	MomentumScore         float64 `json:"momentum_score"`
	MacroSensitivityScore float64 `json:"macro_sensitivity_score"`
	CompositeScore        float64 `json:"composite_score"`
	Rank                  int     `json:"rank"`
	Recommendation        string  `json:"recommendation"`
}

// GetRankings returns the current sector rankings, computing them on a
// cache and repository miss.
// GET /api/scores/rankings?date=YYYY-MM-DD
func (h *ScoreHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := queryDate(r, "date", time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	scores, err := h.rankings.Rankings(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get rankings")
		respondError(w, http.StatusInternalServerError, "Failed to get rankings")
		return
	}

	items := make([]RankingItem, 0, len(scores))
	for _, s := range scores {
		items = append(items, RankingItem{
			Symbol:                s.Symbol,
			Name:                  h.tables.SectorName(s.Symbol),
			Date:                  s.Date.Format("2006-01-02"),
			ForecastScore:         s.ForecastScore,
			CycleScore:            s.CycleScore,
			MomentumScore:         s.MomentumScore,
			MacroSensitivityScore: s.MacroSensitivityScore,
			CompositeScore:        s.CompositeScore,
			Rank:                  s.Rank,
			Recommendation:        recommendation(s.CompositeScore),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"count":    len(items),
			"rankings": items,
		},
	})
}

// RankingSnapshot groups one date's rankings in the history response.
type RankingSnapshot struct {
	Date     string         `json:"date"`
	Rankings []HistoryEntry `json:"rankings"`
}

// HistoryEntry is one sector of a historical snapshot.
type HistoryEntry struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// GetHistory returns historical rankings grouped by date.
// GET /api/scores/rankings/history?days=90
func (h *ScoreHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := queryInt(r, "days", 90)
	if days < 1 || days > 365 {
		respondError(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	scores, err := h.repo.GetAll(ctx)
	if err != nil {
		h.logger.WithError(err).Error("Failed to query score history")
		respondError(w, http.StatusInternalServerError, "Failed to query score history")
		return
	}

	byDate := make(map[string][]HistoryEntry)
	for _, s := range scores {
		if s.Date.Before(cutoff) {
			continue
		}
		key := s.Date.Format("2006-01-02")
		byDate[key] = append(byDate[key], HistoryEntry{
			Symbol: s.Symbol,
			Score:  s.CompositeScore,
			Rank:   s.Rank,
		})
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	snapshots := make([]RankingSnapshot, 0, len(dates))
	for _, d := range dates {
		entries := byDate[d]
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Rank != entries[j].Rank {
				return entries[i].Rank < entries[j].Rank
			}
			return entries[i].Symbol < entries[j].Symbol
		})
		snapshots = append(snapshots, RankingSnapshot{Date: d, Rankings: entries})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"days":    days,
			"history": snapshots,
		},
	})
}

// Update recomputes and persists today's scores, then drops the cached
// rankings so the next read sees the fresh set.
// POST /api/scores/update
func (h *ScoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := queryDate(r, "date", time.Now().UTC())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	scores, err := h.computer.UpdateDailyScores(ctx, date)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update daily scores")
		respondError(w, http.StatusInternalServerError, "Failed to update daily scores")
		return
	}

	if err := h.rankings.Invalidate(ctx, date); err != nil {
		h.logger.WithError(err).Warn("Failed to invalidate cached rankings")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"date":  date.Format("2006-01-02"),
			"count": len(scores),
		},
	})
}

// recommendation maps a composite score to an allocation stance.
func recommendation(score float64) string {
	switch {
	case score >= 70:
		return "Overweight"
	case score >= 40:
		return "Neutral"
	default:
		return "Underweight"
	}
}

func queryDate(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return time.Parse("2006-01-02", raw)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
