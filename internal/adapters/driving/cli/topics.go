package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics [query]",
	Short: "Preview the topics a query expands into",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTopics,
}

func init() {
	rootCmd.AddCommand(topicsCmd)
}

func runTopics(cmd *cobra.Command, args []string) error {
	if topicService == nil {
		return errors.New("topic service not configured")
	}

	topics, err := topicService.Expand(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("topic expansion failed: %w", err)
	}

	if len(topics) == 0 {
		cmd.Println("No topics derived.")
		return nil
	}
	for i, t := range topics {
		cmd.Printf("%d. %s\n", i+1, t)
	}
	return nil
}
