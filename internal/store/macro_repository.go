package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rotor/backend/internal/contracts"
)

// MacroRepository implements contracts.MacroRepository.
type MacroRepository struct {
	pool *pgxpool.Pool
}

// NewMacroRepository creates a new macro repository.
func NewMacroRepository(pool *pgxpool.Pool) *MacroRepository {
	return &MacroRepository{pool: pool}
}

// GetSeries retrieves the ascending observations of a series up to and
// including until. Gap observations come back with a nil Value.
func (r *MacroRepository) GetSeries(ctx context.Context, seriesID string, until time.Time) ([]contracts.MacroObservation, error) {
	query := `
		SELECT series_id, date, value
		FROM market.macro_observations
		WHERE series_id = $1 AND date <= $2
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, seriesID, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []contracts.MacroObservation
	for rows.Next() {
		var o contracts.MacroObservation
		if err := rows.Scan(&o.SeriesID, &o.Date, &o.Value); err != nil {
			return nil, err
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}

// SaveBatch upserts observations inside a transaction.
func (r *MacroRepository) SaveBatch(ctx context.Context, observations []contracts.MacroObservation) error {
	if len(observations) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.macro_observations (series_id, date, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (series_id, date) DO UPDATE SET
			value = EXCLUDED.value
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, o := range observations {
		if _, err := tx.Exec(ctx, query, o.SeriesID, o.Date, o.Value); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
