package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/timecamphq/peoplesync/internal/blob"
	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/models"
	"github.com/timecamphq/peoplesync/internal/sync"
	"github.com/timecamphq/peoplesync/internal/timecamp"
	"github.com/timecamphq/peoplesync/internal/timer"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	var (
		input    string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Converge TimeCamp on the desired user set",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer reportPanic()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := blob.Open(cfg.Storage, opts.storageDir)
			if err != nil {
				return err
			}

			client := timecamp.NewClient(cfg.TimeCamp)
			engine := sync.NewEngine(client, cfg.TimeCamp, opts.dryRun)

			runOnce := func(ctx context.Context) error {
				raw, err := store.GetJSON(ctx, input)
				if err != nil {
					return fmt.Errorf("read %s: %w", input, err)
				}

				var desired []models.DesiredUser
				if err := json.Unmarshal(raw, &desired); err != nil {
					return fmt.Errorf("decode %s: %w", input, err)
				}

				summary, err := engine.Run(ctx, desired)

				// The summary is part of the contract even on failure.
				logging.S.Infof("summary: %s", summary)

				return err
			}

			ctx := cmd.Context()

			if interval <= 0 {
				return runOnce(ctx)
			}

			// Scheduled mode: repeat until the context is cancelled.
			runner := timer.NewRunner(interval)
			runner.Start(func() {
				if err := runOnce(ctx); err != nil {
					logging.S.Errorf("sync failed: %v", err)
				}
			})
			<-ctx.Done()
			runner.Stop()

			logging.S.Infof("stopped after %d runs", runner.Runs())

			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "timecamp_users.json", "desired-state artifact key")
	cmd.Flags().DurationVar(&interval, "interval", 0, "re-run on a fixed interval (0 runs once)")

	return cmd
}
