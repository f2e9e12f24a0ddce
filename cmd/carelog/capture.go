package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"carelog/internal/capture"
)

type captureOptions struct {
	*RootOptions
	URL       string
	Out       string
	Landscape bool
	Timeout   time.Duration
}

// NewCaptureCommand creates the capture command.
func NewCaptureCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &captureOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Save the printable roster of a running server as PDF",
		Long: `Open the /print view of a running carelog server in headless Chromium
and save it as a PDF.

Example:
  carelog capture --url http://127.0.0.1:8080/print --out roster.pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.URL, "url", "http://127.0.0.1:8080/print", "print view URL")
	cmd.Flags().StringVar(&opts.Out, "out", "roster.pdf", "output PDF path")
	cmd.Flags().BoolVar(&opts.Landscape, "landscape", false, "landscape orientation")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "overall capture timeout")
	return cmd
}

func runCapture(opts *captureOptions, out io.Writer) error {
	ctx, stop := signalContext()
	defer stop()

	err := capture.CapturePDF(ctx, capture.Options{
		URL:        opts.URL,
		OutputPath: opts.Out,
		Landscape:  opts.Landscape,
		Timeout:    opts.Timeout,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "wrote %s\n", opts.Out)
	return err
}
