package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"carelog/internal/i18n"
	appLog "carelog/internal/log"
	"carelog/internal/scheduler"
	"carelog/internal/web"
)

type serveOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &serveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form and API",
		Long: `Load the record list (local copy, else the remote mirror), start the
daily expiry refresh and serve the web form and JSON API.

Example:
  carelog serve --config ./config.yaml --listen :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

func runServe(opts *serveOptions) error {
	appLog.Info("carelog starting", "version", version)

	a, err := loadApp(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.Listen != "" {
		a.cfg.Listen = opts.Listen
	}

	appLog.Info("effective config",
		"listen", a.cfg.Listen,
		"timezone", a.loc.String(),
		"data", a.cfg.DataPath(),
		"remote", a.cfg.Remote.BaseURL != "",
		"refresh", a.cfg.RefreshCron,
		"language", a.cfg.Language,
	)

	ctx, stop := signalContext()
	defer stop()

	status := a.svc.Open(ctx)
	tr := i18n.New(a.cfg.Language)
	appLog.Info("startup status", "status", status, "message", tr.Default("status."+string(status), nil))

	sched, err := scheduler.New(a.cfg.RefreshCron, a.loc, a.svc)
	if err != nil {
		return err
	}

	srv := web.NewServer(a.cfg, a.svc, tr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched.Run(gctx)
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})

	err = g.Wait()
	appLog.Info("carelog exiting")
	return err
}
