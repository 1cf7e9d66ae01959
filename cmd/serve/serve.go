// Package serve implements the serve command: the read-only HTTP API
// over the snapshot reconstructor.
package serve

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/foerderdata/fundwatch/cmd/common"
	"github.com/foerderdata/fundwatch/internal/api"
	"github.com/foerderdata/fundwatch/internal/temporal"
)

// Command returns the serve command for use in the root command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the snapshot API over HTTP",
		Long: `Starts the read-only HTTP API. Snapshots are reconstructed per request,
so the API always reflects the last committed batch.`,
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

			server := api.NewServer(
				deps.Config.Server,
				deps.Logger,
				temporal.NewReconstructor(storage.Versions),
				storage.Runs,
			)

			return server.Start(ctx)
		},
	}
}
