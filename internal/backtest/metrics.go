package backtest

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/wonny/rotor/backend/internal/contracts"
)

const (
	tradingDaysPerYear = 252
	riskFreeRate       = 0.02
)

// ComputeMetrics derives the risk/return statistics from an equity curve.
// Zero-length and single-point curves produce a neutral metrics object
// instead of failing.
func ComputeMetrics(curve []contracts.EquityPoint, initialCapital float64) contracts.PerformanceMetrics {
	if len(curve) == 0 {
		return contracts.PerformanceMetrics{}
	}

	portfolioValues := make([]float64, 0, len(curve)+1)
	benchmarkValues := make([]float64, 0, len(curve)+1)
	portfolioValues = append(portfolioValues, initialCapital)
	benchmarkValues = append(benchmarkValues, initialCapital)
	for _, p := range curve {
		portfolioValues = append(portfolioValues, p.PortfolioValue)
		benchmarkValues = append(benchmarkValues, p.BenchmarkValue)
	}

	portfolioReturns := stepReturns(portfolioValues)
	benchmarkReturns := stepReturns(benchmarkValues)

	totalReturn := (portfolioValues[len(portfolioValues)-1]/initialCapital - 1) * 100
	benchmarkTotal := (benchmarkValues[len(benchmarkValues)-1]/initialCapital - 1) * 100

	years := float64(len(curve)) / tradingDaysPerYear
	annualized := annualize(totalReturn, years)
	benchmarkAnnualized := annualize(benchmarkTotal, years)

	volatility := stat.PopStdDev(portfolioReturns, nil) * math.Sqrt(tradingDaysPerYear) * 100

	sharpe := 0.0
	if volatility > 0 {
		sharpe = (annualized/100 - riskFreeRate) / (volatility / 100)
	}

	maxDrawdown := drawdown(portfolioValues)

	excess := make([]float64, len(portfolioReturns))
	wins := 0
	for i := range portfolioReturns {
		excess[i] = portfolioReturns[i] - benchmarkReturns[i]
		if excess[i] > 0 {
			wins++
		}
	}
	winRate := 0.0
	if len(excess) > 0 {
		winRate = float64(wins) / float64(len(excess)) * 100
	}

	beta := 1.0
	if benchVar := stat.Variance(benchmarkReturns, nil); benchVar != 0 && !math.IsNaN(benchVar) {
		beta = stat.Covariance(portfolioReturns, benchmarkReturns, nil) / benchVar
	}
	alpha := annualized - beta*benchmarkAnnualized

	trackingError := stat.PopStdDev(excess, nil) * math.Sqrt(tradingDaysPerYear) * 100
	informationRatio := 0.0
	if trackingError > 0 {
		informationRatio = (annualized - benchmarkAnnualized) / trackingError
	}

	return contracts.PerformanceMetrics{
		TotalReturn:         round2(totalReturn),
		BenchmarkReturn:     round2(benchmarkTotal),
		ExcessReturn:        round2(totalReturn - benchmarkTotal),
		AnnualizedReturn:    round2(annualized),
		BenchmarkAnnualized: round2(benchmarkAnnualized),
		Volatility:          round2(volatility),
		SharpeRatio:         round2(sharpe),
		MaxDrawdown:         round2(maxDrawdown),
		WinRate:             round2(winRate),
		Alpha:               round2(alpha),
		Beta:                round2(beta),
		TrackingError:       round2(trackingError),
		InformationRatio:    round2(informationRatio),
		FinalPortfolioValue: round2(portfolioValues[len(portfolioValues)-1]),
		FinalBenchmarkValue: round2(benchmarkValues[len(benchmarkValues)-1]),
	}
}

func stepReturns(values []float64) []float64 {
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, values[i]/values[i-1]-1)
	}
	return returns
}

func annualize(totalReturnPct, years float64) float64 {
	if years <= 0 {
		return 0
	}
	return (math.Pow(1+totalReturnPct/100, 1/years) - 1) * 100
}

// drawdown returns the deepest peak-to-trough decline, in percent, <= 0.
func drawdown(values []float64) float64 {
	runningMax := math.Inf(-1)
	worst := 0.0
	for _, v := range values {
		runningMax = math.Max(runningMax, v)
		if runningMax > 0 {
			dd := (v - runningMax) / runningMax
			worst = math.Min(worst, dd)
		}
	}
	return worst * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
