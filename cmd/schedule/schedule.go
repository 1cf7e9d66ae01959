// Package schedule implements the schedule command: recurring
// crawl-and-merge runs on a cron expression.
package schedule

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/foerderdata/fundwatch/cmd/common"
	"github.com/foerderdata/fundwatch/internal/pipeline"
)

// defaultCronSpec runs one crawl every night at 03:00.
const defaultCronSpec = "0 3 * * *"

// Command returns the schedule command for use in the root command.
func Command() *cobra.Command {
	var cronSpec string
	var runNow bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run crawls on a recurring schedule",
		Long: `Runs crawl-and-merge on a cron schedule until interrupted. Runs never
overlap: a tick that fires while a run is still in progress is skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			storage, err := common.OpenStorage(ctx, deps)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer storage.Close()

			runner := pipeline.NewRunner(deps.Config.Crawler, deps.Logger, storage.Versions, storage.Runs)
			log := deps.Logger.WithComponent("schedule")

			running := make(chan struct{}, 1)
			runOnce := func() {
				select {
				case running <- struct{}{}:
					defer func() { <-running }()
				default:
					log.Warn("previous run still in progress, skipping tick")
					return
				}

				if _, runErr := runner.Run(ctx); runErr != nil && ctx.Err() == nil {
					log.Error("scheduled run failed", "error", runErr)
				}
			}

			scheduler := cron.New()
			if _, addErr := scheduler.AddFunc(cronSpec, runOnce); addErr != nil {
				return fmt.Errorf("invalid cron expression %q: %w", cronSpec, addErr)
			}

			if runNow {
				go runOnce()
			}

			log.Info("scheduler started", "cron", cronSpec)
			scheduler.Start()

			<-ctx.Done()

			log.Info("scheduler stopping")
			<-scheduler.Stop().Done()

			return nil
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", defaultCronSpec,
		"cron expression for crawl runs")
	cmd.Flags().BoolVar(&runNow, "run-now", false,
		"run one crawl immediately in addition to the schedule")

	return cmd
}
