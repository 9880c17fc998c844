package contracts

import (
	"fmt"
	"time"
)

// Rebalance frequencies accepted by BacktestConfig.
const (
	RebalanceDaily   = "daily"
	RebalanceWeekly  = "weekly"
	RebalanceMonthly = "monthly"
)

// BacktestConfig is the immutable configuration of one backtest run.
type BacktestConfig struct {
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date,omitempty"` // empty = today
	InitialCapital     float64 `json:"initial_capital"`
	RebalanceFrequency string  `json:"rebalance_frequency"`
	TopNSectors        int     `json:"top_n_sectors"`
	Benchmark          string  `json:"benchmark"`
}

// DefaultBacktestConfig returns the standard run configuration.
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		StartDate:          "2005-01-01",
		InitialCapital:     100000,
		RebalanceFrequency: RebalanceMonthly,
		TopNSectors:        3,
		Benchmark:          "SPY",
	}
}

// Validate rejects invalid configuration at the boundary, before the
// engine runs.
func (c BacktestConfig) Validate() error {
	if _, err := time.Parse("2006-01-02", c.StartDate); err != nil {
		return fmt.Errorf("invalid start_date %q: %w", c.StartDate, err)
	}
	if c.EndDate != "" {
		if _, err := time.Parse("2006-01-02", c.EndDate); err != nil {
			return fmt.Errorf("invalid end_date %q: %w", c.EndDate, err)
		}
	}
	if c.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %v", c.InitialCapital)
	}
	switch c.RebalanceFrequency {
	case RebalanceDaily, RebalanceWeekly, RebalanceMonthly:
	default:
		return fmt.Errorf("unsupported rebalance_frequency %q", c.RebalanceFrequency)
	}
	if c.TopNSectors < 1 {
		return fmt.Errorf("top_n_sectors must be at least 1, got %d", c.TopNSectors)
	}
	if c.Benchmark == "" {
		return fmt.Errorf("benchmark symbol is required")
	}
	return nil
}

// EquityPoint is one entry of the backtest equity curve.
type EquityPoint struct {
	Date            time.Time `json:"date"`
	PortfolioValue  float64   `json:"portfolio_value"`
	BenchmarkValue  float64   `json:"benchmark_value"`
	PortfolioReturn float64   `json:"portfolio_return"` // step return, pct
	BenchmarkReturn float64   `json:"benchmark_return"` // step return, pct
}

// MonthlyReturn summarizes one calendar month of the simulation.
type MonthlyReturn struct {
	Month           string  `json:"month"` // YYYY-MM
	PortfolioReturn float64 `json:"portfolio_return"`
	BenchmarkReturn float64 `json:"benchmark_return"`
	ExcessReturn    float64 `json:"excess_return"`
}

// AllocationEntry records one rebalance decision.
type AllocationEntry struct {
	Date        time.Time          `json:"date"`
	Allocations map[string]float64 `json:"allocations"`
	Scores      map[string]float64 `json:"scores"`
}

// PerformanceMetrics holds the derived risk/return statistics of a run.
// All percentage fields are expressed as percent (x100).
type PerformanceMetrics struct {
	TotalReturn         float64 `json:"total_return"`
	BenchmarkReturn     float64 `json:"benchmark_return"`
	ExcessReturn        float64 `json:"excess_return"`
	AnnualizedReturn    float64 `json:"annualized_return"`
	BenchmarkAnnualized float64 `json:"benchmark_annualized"`
	Volatility          float64 `json:"volatility"`
	SharpeRatio         float64 `json:"sharpe_ratio"`
	MaxDrawdown         float64 `json:"max_drawdown"` // always <= 0
	WinRate             float64 `json:"win_rate"`
	Alpha               float64 `json:"alpha"`
	Beta                float64 `json:"beta"`
	TrackingError       float64 `json:"tracking_error"`
	InformationRatio    float64 `json:"information_ratio"`
	FinalPortfolioValue float64 `json:"final_portfolio_value"`
	FinalBenchmarkValue float64 `json:"final_benchmark_value"`
}

// BacktestResult is the immutable snapshot produced by one run.
type BacktestResult struct {
	Config             BacktestConfig     `json:"config"`
	Performance        PerformanceMetrics `json:"performance"`
	EquityCurve        []EquityPoint      `json:"equity_curve"`
	MonthlyReturns     []MonthlyReturn    `json:"monthly_returns"`
	AllocationsHistory []AllocationEntry  `json:"allocations_history"`
	RebalanceCount     int                `json:"rebalance_count"`
}

// CorrelationReport measures historical predictive validity of stored
// scores against realized forward returns.
type CorrelationReport struct {
	OverallCorrelation float64             `json:"overall_correlation"`
	BySector           map[string]float64  `json:"by_sector"`
	SampleSize         int                 `json:"sample_size"`
	ScatterData        []CorrelationSample `json:"scatter_data"`
}

// CorrelationSample is one (predicted score, realized return) pair.
type CorrelationSample struct {
	Predicted float64 `json:"predicted"`
	Actual    float64 `json:"actual"`
}
