package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rotor/backend/internal/contracts"
)

// scoreCmd groups scoring commands
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Sector score management",
	Long: `Computes or inspects sector scores.

Subcommands:
  update    - recompute and persist scores for a date
  rankings  - print the current ranking

Example:
  go run ./cmd/rotor score update
  go run ./cmd/rotor score update --date 2026-08-28
  go run ./cmd/rotor score rankings`,
}

var (
	scoreDate string

	scoreUpdateCmd = &cobra.Command{
		Use:   "update",
		Short: "Recompute and persist scores for a date",
		RunE:  runScoreUpdate,
	}

	scoreRankingsCmd = &cobra.Command{
		Use:   "rankings",
		Short: "Print the current sector ranking",
		RunE:  runScoreRankings,
	}
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.AddCommand(scoreUpdateCmd)
	scoreCmd.AddCommand(scoreRankingsCmd)

	scoreCmd.PersistentFlags().StringVar(&scoreDate, "date", "", "score date YYYY-MM-DD (default today)")
}

func resolveScoreDate() (time.Time, error) {
	if scoreDate == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", scoreDate)
}

func runScoreUpdate(cmd *cobra.Command, args []string) error {
	date, err := resolveScoreDate()
	if err != nil {
		return fmt.Errorf("invalid --date: %w", err)
	}

	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()

	scores, err := c.scorer.UpdateDailyScores(ctx, date)
	if err != nil {
		return fmt.Errorf("update daily scores: %w", err)
	}
	if err := c.rankings.Invalidate(ctx, date); err != nil {
		c.log.WithError(err).Warn("Failed to invalidate cached rankings")
	}

	fmt.Printf("Scored %d sectors for %s\n\n", len(scores), date.Format("2006-01-02"))
	printRanking(c, scores)
	return nil
}

func runScoreRankings(cmd *cobra.Command, args []string) error {
	date, err := resolveScoreDate()
	if err != nil {
		return fmt.Errorf("invalid --date: %w", err)
	}

	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	scores, err := c.rankings.Rankings(cmd.Context(), date)
	if err != nil {
		return fmt.Errorf("get rankings: %w", err)
	}

	printRanking(c, scores)
	return nil
}

func printRanking(c *components, scores []contracts.SectorScore) {
	fmt.Printf("%-4s %-6s %-24s %9s %9s %9s %9s %9s\n",
		"Rank", "Symbol", "Sector", "Forecast", "Cycle", "Momentum", "Macro", "Composite")
	for _, s := range scores {
		fmt.Printf("%-4d %-6s %-24s %9.2f %9.2f %9.2f %9.2f %9.2f\n",
			s.Rank, s.Symbol, c.tables.SectorName(s.Symbol),
			s.ForecastScore, s.CycleScore, s.MomentumScore,
			s.MacroSensitivityScore, s.CompositeScore)
	}
}
