package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the paper store holds",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	stats, err := statusService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading store: %w", err)
	}

	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			cmd.Printf("Backend:            %s\n", settings.Storage.Backend)
		}
	}
	cmd.Printf("Chunks stored:      %d\n", stats.Records)
	cmd.Printf("Pending embeddings: %d\n", stats.PendingEmbeddings)
	return nil
}
