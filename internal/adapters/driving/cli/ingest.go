package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

var (
	ingestDump string
	ingestJSON bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [query]",
	Short: "Fetch and store papers for a research query",
	Long: `Expands the query into up to three research topics with the configured
LLM, fetches matching arXiv papers for each topic, extracts and chunks the
full text of each PDF, and stores the chunks without embeddings.

Use --dump to also write the fetched paper metadata to a JSON file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDump, "dump", "", "write fetched paper metadata to this JSON file")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the run summary as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	query := strings.Join(args, " ")
	res, err := ingestService.Ingest(cmd.Context(), query)
	if res != nil && ingestDump != "" {
		if dumpErr := dumpPapers(ingestDump, res.Papers); dumpErr != nil {
			return errors.Join(err, dumpErr)
		}
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return printJSON(cmd, res)
	}

	cmd.Printf("Topics (%d):\n", len(res.Topics))
	for i, t := range res.Topics {
		cmd.Printf("  %d. %s\n", i+1, t)
	}
	cmd.Println()
	cmd.Printf("Papers fetched: %d\n", len(res.Papers))
	if res.SkippedPapers > 0 {
		cmd.Printf("Papers skipped (no text): %d\n", res.SkippedPapers)
	}
	cmd.Printf("Chunks stored:  %d\n", res.Records)
	if ingestDump != "" {
		cmd.Printf("Paper metadata written to %s\n", ingestDump)
	}
	if res.Records > 0 {
		cmd.Println()
		cmd.Println("Run 'papertrail backfill' to embed the new chunks.")
	}
	return nil
}

func dumpPapers(path string, papers []domain.PaperDescriptor) error {
	if papers == nil {
		papers = []domain.PaperDescriptor{}
	}
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("encode papers: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
