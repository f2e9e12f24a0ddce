package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"carelog/internal/care"
	"carelog/internal/clock"
	"carelog/internal/config"
	appLog "carelog/internal/log"
	"carelog/internal/persist"
	"carelog/internal/remote"
)

const version = "0.1.0"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// NewRootCommand creates the root command for the carelog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "carelog",
		Short:         "Track care appointments and next eligible dates",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "/etc/carelog/config.yaml", "path to config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewRestoreCommand(opts))
	cmd.AddCommand(NewCaptureCommand(opts))

	return cmd
}

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	loc     *time.Location
	gateway *persist.Gateway
	svc     *care.Service
}

// loadApp reads the config, applies logging settings and wires the gateway
// and service. The service is not opened yet.
func loadApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", opts.ConfigPath)
		if cfg == nil {
			return nil, err
		}
	}

	level := appLog.ParseLevel(cfg.LogLevel)
	if opts.Verbose {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)

	loc, err := cfg.Location()
	if err != nil {
		appLog.Error("unknown timezone; using UTC", err, "timezone", cfg.Timezone)
	}

	rc := remote.NewClient(cfg.Remote.BaseURL, cfg.Remote.Timeout())
	gw := persist.NewGateway(persist.NewLocalFile(cfg.DataPath()), rc, cfg.Remote.Timeout())
	svc := care.NewService(gw, clock.NewZoned(loc), cfg.RecentCount)

	return &app{cfg: cfg, loc: loc, gateway: gw, svc: svc}, nil
}

// signalContext is canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
