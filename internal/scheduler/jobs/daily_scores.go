package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/rotor/backend/internal/scoring"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// DailyScoresJob recomputes the sector scores after US market close and
// drops the cached rankings so readers pick up the fresh set.
type DailyScoresJob struct {
	computer scoring.ScoreComputer
	rankings *scoring.RankingService
	logger   *logger.Logger
}

// NewDailyScoresJob creates a new daily scores job.
func NewDailyScoresJob(computer scoring.ScoreComputer, rankings *scoring.RankingService, log *logger.Logger) *DailyScoresJob {
	return &DailyScoresJob{
		computer: computer,
		rankings: rankings,
		logger:   log,
	}
}

// Name returns the job name.
func (j *DailyScoresJob) Name() string {
	return "daily_scores"
}

// Schedule returns the cron schedule (6 PM daily, after market close).
func (j *DailyScoresJob) Schedule() string {
	return "0 0 18 * * *"
}

// Run recomputes and persists today's cycle phase and sector scores.
func (j *DailyScoresJob) Run(ctx context.Context) error {
	today := time.Now().UTC()

	scores, err := j.computer.UpdateDailyScores(ctx, today)
	if err != nil {
		return fmt.Errorf("update daily scores: %w", err)
	}

	if j.rankings != nil {
		if err := j.rankings.Invalidate(ctx, today); err != nil {
			j.logger.WithError(err).Warn("Failed to invalidate cached rankings")
		}
	}

	for _, s := range scores {
		if s.Rank > 3 {
			continue
		}
		j.logger.WithFields(map[string]interface{}{
			"rank":      s.Rank,
			"symbol":    s.Symbol,
			"composite": s.CompositeScore,
		}).Info("Top sector")
	}

	return nil
}
