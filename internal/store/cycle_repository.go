package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rotor/backend/internal/contracts"
)

// CycleRepository implements contracts.CycleRepository.
type CycleRepository struct {
	pool *pgxpool.Pool
}

// NewCycleRepository creates a new cycle repository.
func NewCycleRepository(pool *pgxpool.Pool) *CycleRepository {
	return &CycleRepository{pool: pool}
}

// Upsert writes a detected phase, replacing any prior detection for the date.
func (r *CycleRepository) Upsert(ctx context.Context, phase contracts.CyclePhase) error {
	query := `
		INSERT INTO market.cycle_phases (date, phase, confidence)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET
			phase = EXCLUDED.phase,
			confidence = EXCLUDED.confidence
	`

	_, err := r.pool.Exec(ctx, query, phase.Date, string(phase.Phase), phase.Confidence)
	return err
}

// GetHistory returns the most recent phases, newest first.
func (r *CycleRepository) GetHistory(ctx context.Context, limit int) ([]contracts.CyclePhase, error) {
	query := `
		SELECT date, phase, confidence
		FROM market.cycle_phases
		ORDER BY date DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phases []contracts.CyclePhase
	for rows.Next() {
		var p contracts.CyclePhase
		var label string
		if err := rows.Scan(&p.Date, &label, &p.Confidence); err != nil {
			return nil, err
		}
		p.Phase = contracts.Phase(label)
		phases = append(phases, p)
	}
	return phases, rows.Err()
}
