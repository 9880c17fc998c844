package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rotor",
	Short: "Sector rotation scoring and backtesting engine",
	Long: `Rotor CLI

Scores the eleven US sector ETFs daily from macro data, a return
forecast, momentum and the business cycle, and backtests the
rotation strategy those scores imply.

Usage:
  go run ./cmd/rotor [command]

Examples:
  go run ./cmd/rotor api
  go run ./cmd/rotor score update
  go run ./cmd/rotor backtest run --start 2005-01-01
  go run ./cmd/rotor scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}
