package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/rotor/backend/internal/api"
	"github.com/wonny/rotor/backend/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                       - Health check
  GET  /api/scores/rankings          - Current sector rankings
  GET  /api/scores/rankings/history  - Historical rankings
  POST /api/scores/update            - Recompute today's scores
  GET  /api/cycle                    - Business cycle phase and history
  POST /api/backtest/run             - Run a backtest
  GET  /api/backtest/results/{id}    - Stored backtest result
  GET  /api/backtest/correlation     - Score vs forward return correlation

Example:
  go run ./cmd/rotor api
  go run ./cmd/rotor api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	if apiPort != "" {
		c.cfg.Port = apiPort
	}

	scoreHandler := handlers.NewScoreHandler(c.rankings, c.scorer, c.scores, c.tables, c.log)
	cycleHandler := handlers.NewCycleHandler(c.detector, c.cycles, c.log)
	backtestHandler := handlers.NewBacktestHandler(c.service, c.analyzer, c.log)

	router := api.NewRouter(scoreHandler, cycleHandler, backtestHandler, c.log)
	server := api.New(c.cfg, c.log, router)

	go func() {
		if err := server.Start(); err != nil {
			c.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", c.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
