package backtest

import (
	"context"

	"github.com/google/uuid"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// Service runs backtests and persists their immutable result snapshots.
type Service struct {
	engine *Engine
	repo   contracts.BacktestRepository
	logger *logger.Logger
}

// NewService creates a backtest service.
func NewService(engine *Engine, repo contracts.BacktestRepository, log *logger.Logger) *Service {
	return &Service{
		engine: engine,
		repo:   repo,
		logger: log,
	}
}

// Run executes a backtest and saves the result under a fresh short id.
func (s *Service) Run(ctx context.Context, cfg contracts.BacktestConfig) (string, *contracts.BacktestResult, error) {
	result, err := s.engine.Run(ctx, cfg)
	if err != nil {
		return "", nil, err
	}

	id := NewRunID()
	if err := s.repo.SaveResult(ctx, id, result); err != nil {
		return "", nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"id":         id,
		"rebalances": result.RebalanceCount,
		"return":     result.Performance.TotalReturn,
	}).Info("Backtest complete")

	return id, result, nil
}

// Result loads a stored result snapshot.
func (s *Service) Result(ctx context.Context, id string) (*contracts.BacktestResult, error) {
	return s.repo.GetResult(ctx, id)
}

// NewRunID returns the 8-character result identifier.
func NewRunID() string {
	return uuid.NewString()[:8]
}
