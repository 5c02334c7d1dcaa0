package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timecamphq/peoplesync/internal/blob"
	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/models"
	"github.com/timecamphq/peoplesync/internal/prepare"
)

func newPrepareCmd(opts *rootOptions) *cobra.Command {
	var (
		input  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Derive the desired TimeCamp users from the fetched directory",
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

			ctx := cmd.Context()

			raw, err := store.GetJSON(ctx, input)
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}

			var source models.SourceFile
			if err := json.Unmarshal(raw, &source); err != nil {
				return fmt.Errorf("decode %s: %w", input, err)
			}

			logging.S.Infof("loaded %d persons from %s", len(source.Users), input)

			desired := prepare.NewEngine(cfg.TimeCamp).Run(source)

			active := 0
			for _, u := range desired {
				if u.Active() {
					active++
				}
			}
			logging.S.Infof("prepared %d users (%d active, %d inactive)", len(desired), active, len(desired)-active)

			encoded, err := json.MarshalIndent(desired, "", "  ")
			if err != nil {
				return err
			}

			if opts.dryRun {
				logging.S.Infof("[dry run] would write %d bytes to %s", len(encoded), output)
				return nil
			}

			if err := store.PutJSON(ctx, output, encoded); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}

			logging.S.Infof("wrote %s", output)

			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "users.json", "source artifact key")
	cmd.Flags().StringVar(&output, "output", "timecamp_users.json", "desired-state artifact key")

	return cmd
}
