// Package backtest replays the sector rotation strategy over historical
// rebalance dates and derives risk/return statistics, and validates stored
// scores against realized forward returns.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/rotor/backend/internal/contracts"
	"github.com/wonny/rotor/backend/internal/tables"
	"github.com/wonny/rotor/backend/pkg/logger"
)

// ScoreComputer recomputes a date's ranking when no stored snapshot
// exists. Computed scores are used for the step but not persisted.
type ScoreComputer interface {
	ComputeScores(ctx context.Context, date time.Time) ([]contracts.SectorScore, *contracts.CyclePhase, error)
}

// Engine runs walk-forward simulations of the ranking strategy.
type Engine struct {
	prices   contracts.PriceRepository
	scores   contracts.ScoreRepository
	computer ScoreComputer // optional
	tables   *tables.Tables
	logger   *logger.Logger
}

// NewEngine creates a backtest engine. computer may be nil, in which case
// steps without stored scores are skipped.
func NewEngine(prices contracts.PriceRepository, scores contracts.ScoreRepository, computer ScoreComputer, tbl *tables.Tables, log *logger.Logger) *Engine {
	return &Engine{
		prices:   prices,
		scores:   scores,
		computer: computer,
		tables:   tbl,
		logger:   log,
	}
}

// Run executes the walk-forward simulation described by cfg.
// A missing benchmark price at the window start is fatal; every other data
// gap degrades to skipping the affected step or symbol.
func (e *Engine) Run(ctx context.Context, cfg contracts.BacktestConfig) (*contracts.BacktestResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start, _ := time.Parse("2006-01-02", cfg.StartDate)
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if cfg.EndDate != "" {
		end, _ = time.Parse("2006-01-02", cfg.EndDate)
	}

	dates := rebalanceDates(start, end, cfg.RebalanceFrequency)
	e.logger.WithFields(map[string]interface{}{
		"start":      cfg.StartDate,
		"end":        end.Format("2006-01-02"),
		"rebalances": len(dates),
	}).Info("Running backtest")

	// The benchmark must have a price at the window start: without it
	// there is no return baseline.
	if _, err := e.prices.GetAsOf(ctx, cfg.Benchmark, start); err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, fmt.Errorf("no data for benchmark %s at %s", cfg.Benchmark, cfg.StartDate)
		}
		return nil, err
	}

	portfolioValue := cfg.InitialCapital
	benchmarkValue := cfg.InitialCapital

	var (
		equityCurve    []contracts.EquityPoint
		monthlyReturns []contracts.MonthlyReturn
		allocations    []contracts.AllocationEntry
	)

	prevPortfolioValue := portfolioValue
	prevBenchmarkValue := benchmarkValue
	prevMonth := ""

	for i := 0; i+1 < len(dates); i++ {
		current, next := dates[i], dates[i+1]

		pricesStart, err := e.pricesAsOf(ctx, cfg.Benchmark, current)
		if err != nil {
			return nil, err
		}
		pricesEnd, err := e.pricesAsOf(ctx, cfg.Benchmark, next)
		if err != nil {
			return nil, err
		}
		if len(pricesStart) == 0 || len(pricesEnd) == 0 {
			continue
		}

		scores, err := e.scoresAsOf(ctx, current)
		if err != nil {
			return nil, err
		}
		if len(scores) == 0 {
			continue
		}

		selected := topN(scores, cfg.TopNSectors)
		weight := 1.0 / float64(len(selected))

		// Symbols with a missing end price contribute zero return but
		// keep their slot in the weight denominator.
		portfolioReturn := 0.0
		entry := contracts.AllocationEntry{
			Date:        current,
			Allocations: make(map[string]float64, len(selected)),
			Scores:      make(map[string]float64, len(selected)),
		}
		for _, symbol := range selected {
			entry.Allocations[symbol] = weight
			entry.Scores[symbol] = scores[symbol]

			startPrice, okStart := pricesStart[symbol]
			endPrice, okEnd := pricesEnd[symbol]
			if okStart && okEnd && startPrice != 0 {
				portfolioReturn += weight * (endPrice/startPrice - 1)
			}
		}

		benchmarkReturn := 0.0
		if bs, ok := pricesStart[cfg.Benchmark]; ok && bs != 0 {
			if be, ok := pricesEnd[cfg.Benchmark]; ok {
				benchmarkReturn = be/bs - 1
			}
		}

		portfolioValue *= 1 + portfolioReturn
		benchmarkValue *= 1 + benchmarkReturn

		equityCurve = append(equityCurve, contracts.EquityPoint{
			Date:            next,
			PortfolioValue:  round2(portfolioValue),
			BenchmarkValue:  round2(benchmarkValue),
			PortfolioReturn: round2(portfolioReturn * 100),
			BenchmarkReturn: round2(benchmarkReturn * 100),
		})
		allocations = append(allocations, entry)

		currentMonth := next.Format("2006-01")
		if prevMonth != "" && currentMonth != prevMonth {
			monthlyPortfolio := (portfolioValue/prevPortfolioValue - 1) * 100
			monthlyBenchmark := (benchmarkValue/prevBenchmarkValue - 1) * 100
			monthlyReturns = append(monthlyReturns, contracts.MonthlyReturn{
				Month:           prevMonth,
				PortfolioReturn: round2(monthlyPortfolio),
				BenchmarkReturn: round2(monthlyBenchmark),
				ExcessReturn:    round2(monthlyPortfolio - monthlyBenchmark),
			})
			prevPortfolioValue = portfolioValue
			prevBenchmarkValue = benchmarkValue
		}
		prevMonth = currentMonth
	}

	result := &contracts.BacktestResult{
		Config:         cfg,
		Performance:    ComputeMetrics(equityCurve, cfg.InitialCapital),
		EquityCurve:    equityCurve,
		MonthlyReturns: monthlyReturns,
		RebalanceCount: len(allocations),
	}
	if len(allocations) > 20 {
		allocations = allocations[len(allocations)-20:]
	}
	result.AllocationsHistory = allocations

	return result, nil
}

// rebalanceDates steps from start by a fixed delta until exceeding end.
// Monthly uses a fixed 30-day delta, drifting from calendar months over
// long windows.
func rebalanceDates(start, end time.Time, frequency string) []time.Time {
	var deltaDays int
	switch frequency {
	case contracts.RebalanceDaily:
		deltaDays = 1
	case contracts.RebalanceWeekly:
		deltaDays = 7
	default:
		deltaDays = 30
	}

	var dates []time.Time
	for current := start; !current.After(end); current = current.AddDate(0, 0, deltaDays) {
		dates = append(dates, current)
	}
	return dates
}

// pricesAsOf returns the as-of adjusted close for every universe symbol
// plus the benchmark. Symbols without history are simply absent.
func (e *Engine) pricesAsOf(ctx context.Context, benchmark string, date time.Time) (map[string]float64, error) {
	symbols := append(e.tables.Symbols(), benchmark)

	prices := make(map[string]float64, len(symbols))
	for _, symbol := range symbols {
		point, err := e.prices.GetAsOf(ctx, symbol, date)
		if errors.Is(err, contracts.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		prices[symbol] = point.AdjClose
	}
	return prices, nil
}

// scoresAsOf reads the stored ranking snapshot as of date, computing one
// on demand when storage is empty and a computer is available.
func (e *Engine) scoresAsOf(ctx context.Context, date time.Time) (map[string]float64, error) {
	stored, err := e.scores.GetLatest(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 && e.computer != nil {
		stored, _, err = e.computer.ComputeScores(ctx, date)
		if err != nil {
			return nil, err
		}
	}

	scores := make(map[string]float64, len(stored))
	for _, s := range stored {
		scores[s.Symbol] = s.CompositeScore
	}
	return scores, nil
}

// topN selects the n highest-scoring symbols, descending by score with
// symbol order breaking exact ties.
func topN(scores map[string]float64, n int) []string {
	symbols := make([]string, 0, len(scores))
	for symbol := range scores {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool {
		if scores[symbols[i]] != scores[symbols[j]] {
			return scores[symbols[i]] > scores[symbols[j]]
		}
		return symbols[i] < symbols[j]
	})

	if n < len(symbols) {
		symbols = symbols[:n]
	}
	return symbols
}
