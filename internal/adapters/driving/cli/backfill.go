package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var backfillJSON bool

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed stored chunks that have no embedding",
	Long: `Selects every stored chunk without an embedding, embeds its content with
the configured provider, and saves the vector. Chunks that fail are counted
and left for the next run.`,
	Args: cobra.NoArgs,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().BoolVar(&backfillJSON, "json", false, "output counts as JSON")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	if backfillService == nil {
		return errors.New("backfill service not configured")
	}

	res, err := backfillService.Backfill(cmd.Context())
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}

	if backfillJSON {
		return printJSON(cmd, res)
	}

	if res.Candidates == 0 {
		cmd.Println("Nothing to embed.")
		return nil
	}
	cmd.Printf("Embedded %d of %d chunks", res.Updated, res.Candidates)
	if res.Failed > 0 {
		cmd.Printf(" (%d failed)", res.Failed)
	}
	cmd.Println()
	return nil
}
