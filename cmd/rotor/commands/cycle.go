package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cycleCmd groups business cycle commands
var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Business cycle detection",
	Long: `Detects the current business cycle phase from macro data.

Subcommands:
  detect   - detect and print the phase for a date
  history  - print recently stored phases

Example:
  go run ./cmd/rotor cycle detect
  go run ./cmd/rotor cycle history --limit 30`,
}

var (
	cycleDate  string
	cycleLimit int

	cycleDetectCmd = &cobra.Command{
		Use:   "detect",
		Short: "Detect the business cycle phase",
		RunE:  runCycleDetect,
	}

	cycleHistoryCmd = &cobra.Command{
		Use:   "history",
		Short: "Print recently stored phases",
		RunE:  runCycleHistory,
	}
)

func init() {
	rootCmd.AddCommand(cycleCmd)
	cycleCmd.AddCommand(cycleDetectCmd)
	cycleCmd.AddCommand(cycleHistoryCmd)

	cycleDetectCmd.Flags().StringVar(&cycleDate, "date", "", "detection date YYYY-MM-DD (default today)")
	cycleHistoryCmd.Flags().IntVar(&cycleLimit, "limit", 30, "number of phases to show")
}

func runCycleDetect(cmd *cobra.Command, args []string) error {
	date := time.Now().UTC()
	if cycleDate != "" {
		parsed, err := time.Parse("2006-01-02", cycleDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		date = parsed
	}

	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	phase, err := c.detector.Detect(cmd.Context(), date)
	if err != nil {
		return fmt.Errorf("detect phase: %w", err)
	}

	fmt.Printf("Date:       %s\n", phase.Date.Format("2006-01-02"))
	fmt.Printf("Phase:      %s\n", phase.Phase)
	fmt.Printf("Confidence: %.0f%%\n", phase.Confidence*100)
	return nil
}

func runCycleHistory(cmd *cobra.Command, args []string) error {
	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	phases, err := c.cycles.GetHistory(cmd.Context(), cycleLimit)
	if err != nil {
		return fmt.Errorf("get phase history: %w", err)
	}

	for _, p := range phases {
		fmt.Printf("%s  %-12s %.0f%%\n", p.Date.Format("2006-01-02"), p.Phase, p.Confidence*100)
	}
	return nil
}
