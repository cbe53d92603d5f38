package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/verdantia/storefront-backend/internal/scheduler"
)

// PurgerFactory opens a purger and returns a func releasing it.
type PurgerFactory func() (scheduler.BlobPurger, func(), error)

type PurgeResult struct {
	Cutoff  time.Time `json:"cutoff"`
	Deleted int64     `json:"deleted"`
	DryRun  bool      `json:"dry_run"`
}

// NewPurgeCommand deletes SQL-stored carts not written within --older-than.
func NewPurgeCommand(opts *RootOptions, purgers PurgerFactory) *cobra.Command {
	var (
		olderThan time.Duration
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:           "purge",
		Short:         "Delete stale carts from the SQL cart store",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			result := PurgeResult{Cutoff: time.Now().Add(-olderThan).UTC(), DryRun: dryRun}

			if !dryRun {
				purger, release, err := purgers()
				if err != nil {
					return fmt.Errorf("failed to open cart store: %w", err)
				}
				defer release()

				result.Deleted, err = purger.DeleteOlderThan(result.Cutoff)
				if err != nil {
					return fmt.Errorf("purge failed: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				return json.NewEncoder(out).Encode(result)
			}
			if dryRun {
				fmt.Fprintf(out, "dry run: would delete carts last written before %s\n", result.Cutoff.Format(time.RFC3339))
				return nil
			}
			fmt.Fprintf(out, "deleted %d cart(s) last written before %s\n", result.Deleted, result.Cutoff.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of the last write after which a cart is deleted")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the cutoff without deleting")
	return cmd
}
