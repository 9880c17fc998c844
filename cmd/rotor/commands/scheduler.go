package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/rotor/backend/internal/scheduler"
	"github.com/wonny/rotor/backend/internal/scheduler/jobs"
)

// schedulerCmd groups scheduler commands
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Scheduler management",
	Long: `Starts the scheduler daemon or triggers jobs manually.

Registered jobs:
  daily_scores - 6 PM daily, recompute cycle phase and sector scores

Subcommands:
  start  - start the scheduler daemon
  list   - list registered jobs
  run    - run a job immediately

Example:
  go run ./cmd/rotor scheduler start
  go run ./cmd/rotor scheduler run daily_scores`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	c, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer c.Close()

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	c, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer c.Close()

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.Jobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	c, err := initComponents()
	if err != nil {
		return err
	}
	defer c.Close()

	registered := []scheduler.Job{
		jobs.NewDailyScoresJob(c.scorer, c.rankings, c.log),
	}

	for _, job := range registered {
		if job.Name() != jobName {
			continue
		}
		fmt.Printf("Running job: %s\n", jobName)
		if err := job.Run(cmd.Context()); err != nil {
			return fmt.Errorf("job %s failed: %w", jobName, err)
		}
		fmt.Println("Job completed")
		return nil
	}

	return fmt.Errorf("job %s not found", jobName)
}

func initScheduler() (*components, *scheduler.Scheduler, error) {
	c, err := initComponents()
	if err != nil {
		return nil, nil, err
	}

	sched := scheduler.New(c.log)
	if err := sched.AddJob(jobs.NewDailyScoresJob(c.scorer, c.rankings, c.log)); err != nil {
		c.Close()
		return nil, nil, err
	}

	return c, sched, nil
}
