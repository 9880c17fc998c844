package contracts

import (
	"context"
	"errors"
	"time"
)

// Repository interfaces are defined here and nowhere else. Implementations
// live in internal/store.

// ErrNotFound is returned when a keyed lookup matches nothing. Range and
// series queries return empty slices instead, never this error.
var ErrNotFound = errors.New("not found")

// PriceRepository manages sector instrument price data.
type PriceRepository interface {
	// GetSeries returns the ordered (ascending by date) price series for a
	// symbol within [from, to]. No match returns an empty slice.
	GetSeries(ctx context.Context, symbol string, from, to time.Time) ([]PricePoint, error)

	// GetAsOf returns the latest known price at or before date.
	// Returns ErrNotFound when the symbol has no observation by then.
	GetAsOf(ctx context.Context, symbol string, date time.Time) (*PricePoint, error)

	// GetFirstAfter returns the first available price in (after, until].
	// Returns ErrNotFound when no observation falls in the window.
	GetFirstAfter(ctx context.Context, symbol string, after, until time.Time) (*PricePoint, error)

	SaveBatch(ctx context.Context, points []PricePoint) error
}

// MacroRepository manages macro economic series data.
type MacroRepository interface {
	// GetSeries returns the ordered observations of a series up to and
	// including date. No match returns an empty slice.
	GetSeries(ctx context.Context, seriesID string, until time.Time) ([]MacroObservation, error)

	SaveBatch(ctx context.Context, observations []MacroObservation) error
}

// ScoreRepository persists sector scores with upsert semantics:
// recomputation for the same (date, symbol) replaces the prior row.
type ScoreRepository interface {
	// GetLatest returns the rankings for the most recent scored date at or
	// before date, ordered by rank. No scores returns an empty slice.
	GetLatest(ctx context.Context, date time.Time) ([]SectorScore, error)

	// GetAll returns every stored score ordered by date then symbol.
	GetAll(ctx context.Context) ([]SectorScore, error)

	// Upsert writes one date's full ranking.
	Upsert(ctx context.Context, scores []SectorScore) error
}

// CycleRepository persists detected business cycle phases.
type CycleRepository interface {
	Upsert(ctx context.Context, phase CyclePhase) error

	// GetHistory returns the most recent phases, newest first.
	GetHistory(ctx context.Context, limit int) ([]CyclePhase, error)
}

// BacktestRepository persists immutable backtest result snapshots keyed by
// an opaque identifier.
type BacktestRepository interface {
	SaveResult(ctx context.Context, id string, result *BacktestResult) error

	// GetResult returns ErrNotFound for unknown ids.
	GetResult(ctx context.Context, id string) (*BacktestResult, error)
}
