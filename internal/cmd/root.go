// Package cmd wires the pipeline stages into the peoplesync CLI.
package cmd

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/logging"
)

type rootOptions struct {
	dryRun bool
	debug  bool

	// storageDir is where local blob artifacts live.
	storageDir string
}

// Run executes the CLI with the given args (without the binary name).
func Run(ctx context.Context, args ...string) error {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "peoplesync",
		Short:         "Synchronise an HR directory with TimeCamp",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity := 0
			if opts.debug {
				verbosity = 1
			}
			if _, err := logging.Initialize(verbosity); err != nil {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "compute and log the plan without writing")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&opts.storageDir, "storage-dir", "var", "directory for local artifacts")

	root.AddCommand(newPrepareCmd(opts))
	root.AddCommand(newSyncCmd(opts))

	return root
}

// loadConfig resolves the environment once and starts crash reporting
// when configured.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logging.S.Warnf("sentry init failed: %v", err)
		}
	}

	return cfg, nil
}

// reportPanic forwards a panic to sentry before re-raising it.
func reportPanic() {
	if err := recover(); err != nil {
		sentry.CurrentHub().Recover(err)
		sentry.Flush(5 * time.Second)
		panic(err)
	}
}
