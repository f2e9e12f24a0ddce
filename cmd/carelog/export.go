package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"carelog/internal/export"
)

type exportOptions struct {
	*RootOptions
	Format string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &exportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the record list as CSV or iCalendar",
		Long: `Load the record list the same way serve does and print it to stdout.

Example:
  carelog export --format csv > records.csv
  carelog export --format ics > schedule.ics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Format, "format", "csv", "output format (csv|ics)")
	return cmd
}

func runExport(opts *exportOptions, out io.Writer) error {
	if opts.Format != "csv" && opts.Format != "ics" {
		return fmt.Errorf("invalid format %q: must be csv or ics", opts.Format)
	}

	a, err := loadApp(opts.RootOptions)
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()
	a.svc.Open(ctx)

	if opts.Format == "ics" {
		_, err := io.WriteString(out, export.Calendar(a.svc.List(), a.loc, time.Now()))
		return err
	}
	return export.WriteCSV(out, a.svc.List())
}
