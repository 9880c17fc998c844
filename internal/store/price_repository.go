// Package store implements the contracts repository interfaces on
// PostgreSQL via pgxpool.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/rotor/backend/internal/contracts"
)

// PriceRepository implements contracts.PriceRepository.
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// GetSeries retrieves the ascending price series for a symbol within [from, to].
func (r *PriceRepository) GetSeries(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PricePoint, error) {
	query := `
		SELECT symbol, date, open, high, low, close, adj_close, volume
		FROM market.sector_prices
		WHERE symbol = $1 AND date BETWEEN $2 AND $3
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []contracts.PricePoint
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.AdjClose, &p.Volume); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// GetAsOf retrieves the latest price at or before date.
func (r *PriceRepository) GetAsOf(ctx context.Context, symbol string, date time.Time) (*contracts.PricePoint, error) {
	query := `
		SELECT symbol, date, open, high, low, close, adj_close, volume
		FROM market.sector_prices
		WHERE symbol = $1 AND date <= $2
		ORDER BY date DESC
		LIMIT 1
	`

	var p contracts.PricePoint
	err := r.pool.QueryRow(ctx, query, symbol, date).Scan(
		&p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.AdjClose, &p.Volume,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetFirstAfter retrieves the first price in (after, until].
func (r *PriceRepository) GetFirstAfter(ctx context.Context, symbol string, after, until time.Time) (*contracts.PricePoint, error) {
	query := `
		SELECT symbol, date, open, high, low, close, adj_close, volume
		FROM market.sector_prices
		WHERE symbol = $1 AND date > $2 AND date <= $3
		ORDER BY date ASC
		LIMIT 1
	`

	var p contracts.PricePoint
	err := r.pool.QueryRow(ctx, query, symbol, after, until).Scan(
		&p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.AdjClose, &p.Volume,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveBatch upserts price points one by one inside a transaction.
func (r *PriceRepository) SaveBatch(ctx context.Context, points []contracts.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	query := `
		INSERT INTO market.sector_prices (symbol, date, open, high, low, close, adj_close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			adj_close = EXCLUDED.adj_close,
			volume = EXCLUDED.volume
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, p := range points {
		if _, err := tx.Exec(ctx, query,
			p.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.AdjClose, p.Volume,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
