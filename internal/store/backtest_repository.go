package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rotor/backend/internal/contracts"
)

// BacktestRepository implements contracts.BacktestRepository. Results are
// immutable snapshots, stored as JSONB and never updated.
type BacktestRepository struct {
	pool *pgxpool.Pool
}

// NewBacktestRepository creates a new backtest repository.
func NewBacktestRepository(pool *pgxpool.Pool) *BacktestRepository {
	return &BacktestRepository{pool: pool}
}

// SaveResult stores a result snapshot under its id.
func (r *BacktestRepository) SaveResult(ctx context.Context, id string, result *contracts.BacktestResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding backtest result: %w", err)
	}

	query := `
		INSERT INTO market.backtest_results (id, result, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err = r.pool.Exec(ctx, query, id, payload)
	return err
}

// GetResult loads a result snapshot by id.
func (r *BacktestRepository) GetResult(ctx context.Context, id string) (*contracts.BacktestResult, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT result FROM market.backtest_results WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var result contracts.BacktestResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decoding backtest result: %w", err)
	}
	return &result, nil
}
