package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	appLog "carelog/internal/log"
)

// NewRestoreCommand creates the restore command.
func NewRestoreCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Overwrite the local copy with the remote document",
		Long: `Download the record document from the remote store and replace the
local copy with it, even when a local copy already exists.

Example:
  carelog restore --config ./config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(rootOpts, cmd.OutOrStdout())
		},
	}
}

func runRestore(opts *RootOptions, out io.Writer) error {
	a, err := loadApp(opts)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	recs, err := a.gateway.Restore(ctx)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	appLog.Info("restore complete", "records", len(recs), "path", a.cfg.DataPath())
	_, err = fmt.Fprintf(out, "restored %d records into %s\n", len(recs), a.cfg.DataPath())
	return err
}
