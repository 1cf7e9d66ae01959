// Package crawl implements the crawl command: one full crawl of the
// source merged as one atomic batch.
package crawl

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foerderdata/fundwatch/cmd/common"
	"github.com/foerderdata/fundwatch/internal/pipeline"
	"github.com/foerderdata/fundwatch/internal/temporal"
)

// Command returns the crawl command for use in the root command.
func Command() *cobra.Command {
	var dryRun bool
	var maxListPages int

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the funding database and merge the batch",
		Long: `Crawls every funding program reachable from the configured search
results, fingerprints the extracted records and merges them into the
versioned store as a single atomic batch.

With --dry-run the batch is merged into a throwaway in-memory store and
the merge summary is printed; the database is not touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return fmt.Errorf("failed to initialize dependencies: %w", err)
			}

			if maxListPages > 0 {
				deps.Config.Crawler.MaxListPages = maxListPages
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if dryRun {
				runner := pipeline.NewRunner(deps.Config.Crawler, deps.Logger, temporal.NewMemStore(), nil)
				result, runErr := runner.Run(ctx)
				if runErr != nil {
					return runErr
				}
				return printResult(result)
			}

			storage, err := common.OpenStorage(ctx, deps)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer storage.Close()

			runner := pipeline.NewRunner(deps.Config.Crawler, deps.Logger, storage.Versions, storage.Runs)
			result, runErr := runner.Run(ctx)
			if runErr != nil {
				return runErr
			}

			return printResult(result)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"crawl and merge into an in-memory store without touching the database")
	cmd.Flags().IntVar(&maxListPages, "max-list-pages", 0,
		"override the max_list_pages setting (0 means use config)")

	return cmd
}

// printResult writes the run summary to stdout.
func printResult(result pipeline.Result) error {
	fmt.Printf("run %s: %d new, %d changed, %d unchanged, %d removed\n",
		result.RunID, result.Merge.New, result.Merge.Changed,
		result.Merge.Unchanged, result.Merge.Removed)
	fmt.Printf("pages: %d list, %d detail; skipped: %d duplicates, %d rejected, %d degenerate ids, %d fetch errors\n",
		result.Stats.ListPages, result.Stats.DetailPages,
		result.Stats.Duplicates, result.Stats.Rejected,
		result.Stats.DegenerateIDs, result.Stats.FetchErrors)
	return nil
}
