package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rotor/backend/internal/contracts"
)

// ScoreRepository implements contracts.ScoreRepository.
type ScoreRepository struct {
	pool *pgxpool.Pool
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool}
}

// GetLatest returns the full ranking for the most recent scored date at or
// before date, ordered by rank.
func (r *ScoreRepository) GetLatest(ctx context.Context, date time.Time) ([]contracts.SectorScore, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(date) FROM market.sector_scores WHERE date <= $1`, date,
	).Scan(&latest)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, nil
	}

	query := `
		SELECT date, symbol, forecast_score, cycle_score, momentum_score,
		       macro_sensitivity_score, composite_score, rank
		FROM market.sector_scores
		WHERE date = $1
		ORDER BY rank ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query, latest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScores(rows)
}

// GetAll returns every stored score ordered by date then symbol.
func (r *ScoreRepository) GetAll(ctx context.Context) ([]contracts.SectorScore, error) {
	query := `
		SELECT date, symbol, forecast_score, cycle_score, momentum_score,
		       macro_sensitivity_score, composite_score, rank
		FROM market.sector_scores
		ORDER BY date ASC, symbol ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScores(rows)
}

// Upsert writes one date's ranking inside a transaction, replacing any
// previous computation for the same (date, symbol).
func (r *ScoreRepository) Upsert(ctx context.Context, scores []contracts.SectorScore) error {
	if len(scores) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.sector_scores
			(date, symbol, forecast_score, cycle_score, momentum_score,
			 macro_sensitivity_score, composite_score, rank)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (date, symbol) DO UPDATE SET
			forecast_score = EXCLUDED.forecast_score,
			cycle_score = EXCLUDED.cycle_score,
			momentum_score = EXCLUDED.momentum_score,
			macro_sensitivity_score = EXCLUDED.macro_sensitivity_score,
			composite_score = EXCLUDED.composite_score,
			rank = EXCLUDED.rank
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range scores {
		if _, err := tx.Exec(ctx, query,
			s.Date, s.Symbol, s.ForecastScore, s.CycleScore, s.MomentumScore,
			s.MacroSensitivityScore, s.CompositeScore, s.Rank,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func scanScores(rows pgx.Rows) ([]contracts.SectorScore, error) {
	var scores []contracts.SectorScore
	for rows.Next() {
		var s contracts.SectorScore
		if err := rows.Scan(
			&s.Date, &s.Symbol, &s.ForecastScore, &s.CycleScore, &s.MomentumScore,
			&s.MacroSensitivityScore, &s.CompositeScore, &s.Rank,
		); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
