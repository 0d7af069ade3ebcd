package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shuttle/internal/drives"
	"shuttle/internal/logging"
	"shuttle/internal/services"
)

func newDrivesCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "drives",
		Short: "List mounted removable drives and the selected destination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			detected, err := drives.Detect()
			if err != nil {
				return err
			}
			if len(detected) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no removable drives mounted")
			} else {
				rows := make([][]string, 0, len(detected))
				for _, drive := range detected {
					rows = append(rows, []string{drive.Device, drive.MountPoint, drive.Filesystem})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Device", "Mount Point", "Filesystem"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}

			selector := drives.NewSelector(cfg, logging.NewNop())
			destination, err := selector.Destination(cmd.Context())
			switch {
			case services.IsUnavailable(err):
				fmt.Fprintln(cmd.OutOrStdout(), "destination: unavailable")
			case err != nil:
				return err
			default:
				source := "auto-detected"
				if strings.TrimSpace(cfg.Paths.DestinationDir) != "" {
					source = "configured"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "destination: %s (%s)\n", destination, source)
			}
			return nil
		},
	}
}
