package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shuttle/internal/daemon"
	"shuttle/internal/drives"
	"shuttle/internal/logging"
	"shuttle/internal/queue"
	"shuttle/internal/workflow"
)

func newDaemonCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the organizing daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			store, err := queue.Open(cfg)
			if err != nil {
				return fmt.Errorf("open queue: %w", err)
			}

			manager := workflow.NewManager(cfg, store, logger)
			monitor := drives.NewMonitor(logger, drives.RescanOnChange(logger))

			d, err := daemon.New(cfg, store, logger, manager, monitor)
			if err != nil {
				store.Close()
				return err
			}
			defer d.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := d.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shuttle daemon running, log: %s\n", d.LogPath())

			<-ctx.Done()
			d.Stop()
			return nil
		},
	}
}
