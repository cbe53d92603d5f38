package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/verdantia/storefront-backend/internal/cart"
)

// RepairResult summarizes one repaired blob.
type RepairResult struct {
	Parsed   bool            `json:"parsed"`
	Lines    int             `json:"lines"`
	Merged   int             `json:"merged"`
	Dropped  int             `json:"dropped"`
	Total    float64         `json:"total"`
	Repaired json.RawMessage `json:"repaired"`
}

// NewRepairCommand runs a stored cart through the same repair path the
// engine uses on load and prints the clean blob.
func NewRepairCommand(opts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "repair <file|->",
		Short: "Repair a persisted cart blob",
		Long: `Decode a persisted cart, drop invalid lines, merge duplicates and
recompute totals. The coupon is always dropped. Use "-" to read stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepair(opts, cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the repaired blob to this file")
	return cmd
}

func runRepair(opts *RootOptions, cmd *cobra.Command, input, output string) error {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	blob := cart.Decode(data)
	state, stats := cart.RepairWithStats(blob)
	repaired, err := cart.Encode(state)
	if err != nil {
		return fmt.Errorf("failed to encode repaired cart: %w", err)
	}

	if output != "" {
		if err := os.WriteFile(output, repaired, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	}

	result := RepairResult{
		Parsed:   blob != nil,
		Lines:    stats.Kept,
		Merged:   stats.Merged,
		Dropped:  stats.Dropped,
		Total:    state.Total,
		Repaired: repaired,
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !result.Parsed {
		fmt.Fprintln(out, "input was not a readable cart; repaired to an empty cart")
	} else {
		fmt.Fprintf(out, "kept %d line(s), merged %d duplicate(s), dropped %d invalid, total %.2f\n",
			result.Lines, result.Merged, result.Dropped, result.Total)
	}
	if output == "" || opts.Verbose {
		fmt.Fprintln(out, string(repaired))
	}
	return nil
}
