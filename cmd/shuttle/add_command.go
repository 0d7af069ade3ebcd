package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shuttle/internal/config"
	"shuttle/internal/daemon"
	"shuttle/internal/logging"
	"shuttle/internal/queue"
	"shuttle/internal/workflow"
)

func newAddCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Queue media files, archives, or directories for organizing",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				logger := logging.NewNop()
				d, err := daemon.New(cfg, store, logger, workflow.NewManager(cfg, store, logger), nil)
				if err != nil {
					return err
				}
				for _, arg := range args {
					item, inserted, err := d.AddSource(cmd.Context(), arg)
					if err != nil {
						return fmt.Errorf("add %s: %w", arg, err)
					}
					if inserted {
						fmt.Fprintf(cmd.OutOrStdout(), "queued %s (item %d)\n", item.SourcePath, item.ID)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "already queued %s (item %d)\n", item.SourcePath, item.ID)
					}
				}
				return nil
			})
		},
	}
}
