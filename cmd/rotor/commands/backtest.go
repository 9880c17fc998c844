package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/rotor/backend/internal/contracts"
)

// backtestCmd groups backtest commands
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Strategy backtesting",
	Long: `Runs the rotation strategy over stored history and reports
performance against the benchmark.

Subcommands:
  run          - run a backtest with the given configuration
  result       - print a stored result by id
  correlation  - score vs realized forward return correlation

Example:
  go run ./cmd/rotor backtest run --start 2005-01-01 --rebalance monthly --top 3
  go run ./cmd/rotor backtest result 1a2b3c4d
  go run ./cmd/rotor backtest correlation`,
}

var (
	btStart     string
	btEnd       string
	btCapital   float64
	btRebalance string
	btTopN      int
	btBenchmark string

	backtestRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Run a backtest",
		RunE:  runBacktest,
	}

	backtestResultCmd = &cobra.Command{
		Use:   "result [id]",
		Short: "Print a stored backtest result",
		Args:  cobra.ExactArgs(1),
		RunE:  showBacktestResult,
	}

	backtestCorrelationCmd = &cobra.Command{
		Use:   "correlation",
		Short: "Score vs realized forward return correlation",
		RunE:  runCorrelation,
	}
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.AddCommand(backtestRunCmd)
	backtestCmd.AddCommand(backtestResultCmd)
	backtestCmd.AddCommand(backtestCorrelationCmd)

	defaults := contracts.DefaultBacktestConfig()
	backtestRunCmd.Flags().StringVar(&btStart, "start", defaults.StartDate, "start date YYYY-MM-DD")
	backtestRunCmd.Flags().StringVar(&btEnd, "end", "", "end date YYYY-MM-DD (default today)")
	backtestRunCmd.Flags().Float64Var(&btCapital, "capital", defaults.InitialCapital, "initial capital")
	backtestRunCmd.Flags().StringVar(&btRebalance, "rebalance", defaults.RebalanceFrequency, "rebalance frequency (daily|weekly|monthly)")
	backtestRunCmd.Flags().IntVar(&btTopN, "top", defaults.TopNSectors, "number of sectors to hold")
	backtestRunCmd.Flags().StringVar(&btBenchmark, "benchmark", defaults.Benchmark, "benchmark symbol")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := contracts.BacktestConfig{
		StartDate:          btStart,
		EndDate:            btEnd,
		InitialCapital:     btCapital,
		RebalanceFrequency: btRebalance,
		TopNSectors:        btTopN,
		Benchmark:          btBenchmark,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	id, result, err := c.service.Run(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	fmt.Printf("Backtest %s completed\n\n", id)
	printPerformance(result.Performance)
	return nil
}

func showBacktestResult(cmd *cobra.Command, args []string) error {
	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.service.Result(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("load backtest result: %w", err)
	}

	fmt.Printf("Backtest %s (%s to %s, %s, top %d)\n\n",
		args[0], result.Config.StartDate, result.Config.EndDate,
		result.Config.RebalanceFrequency, result.Config.TopNSectors)
	printPerformance(result.Performance)
	return nil
}

func runCorrelation(cmd *cobra.Command, args []string) error {
	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	report, err := c.analyzer.Analyze(cmd.Context())
	if err != nil {
		return fmt.Errorf("correlation analysis: %w", err)
	}

	fmt.Printf("Overall correlation: %.3f (n=%d)\n", report.OverallCorrelation, report.SampleSize)
	for symbol, corr := range report.BySector {
		fmt.Printf("  %-6s %.3f\n", symbol, corr)
	}
	return nil
}

func printPerformance(p contracts.PerformanceMetrics) {
	fmt.Printf("Total return:       %8.2f%%  (benchmark %.2f%%)\n", p.TotalReturn, p.BenchmarkReturn)
	fmt.Printf("Annualized return:  %8.2f%%  (benchmark %.2f%%)\n", p.AnnualizedReturn, p.BenchmarkAnnualized)
	fmt.Printf("Excess return:      %8.2f%%\n", p.ExcessReturn)
	fmt.Printf("Volatility:         %8.2f%%\n", p.Volatility)
	fmt.Printf("Sharpe ratio:       %8.2f\n", p.SharpeRatio)
	fmt.Printf("Max drawdown:       %8.2f%%\n", p.MaxDrawdown)
	fmt.Printf("Win rate:           %8.2f\n", p.WinRate)
	fmt.Printf("Alpha:              %8.2f   Beta: %.2f\n", p.Alpha, p.Beta)
	fmt.Printf("Information ratio:  %8.2f\n", p.InformationRatio)
	fmt.Printf("Final value:        %8.2f   (benchmark %.2f)\n", p.FinalPortfolioValue, p.FinalBenchmarkValue)
}
