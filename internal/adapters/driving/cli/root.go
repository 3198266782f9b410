// Package cli provides the papertrail command-line interface.
package cli

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=1.2.3".
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Services used by commands. They are wired by the root pre-run, or set
// directly by tests.
var (
	ingestService   driving.IngestService
	topicService    driving.TopicService
	searchService   driving.SearchService
	backfillService driving.BackfillService
	statusService   driving.StatusService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler

	// promptWatcher reloads prompts while serve runs. May be nil.
	promptWatcher interface {
		Run(ctx context.Context) error
	}

	// servicesReady skips wiring when services were provided externally.
	servicesReady bool

	// cleanup releases what wiring opened.
	cleanup func()
)

// skipWiring marks commands that run without services.
const skipWiring = "skip-wiring"

var rootCmd = &cobra.Command{
	Use:   "papertrail",
	Short: "Ingest arXiv papers and search them by meaning",
	Long: `papertrail turns a research question into a searchable library.

It expands a query into research topics with a language model, fetches
matching papers from arXiv, extracts and chunks their full text, and stores
the chunks. Embeddings are filled in by a backfill pass, after which the
chunks can be searched by similarity.`,
	SilenceUsage:      true,
	PersistentPreRunE: wireCommand,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.papertrail)")
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func wireCommand(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if servicesReady || cmd.Annotations[skipWiring] == "true" {
		return nil
	}

	// A missing .env is fine.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded environment from .env")
	}

	app, err := wireServices(cmd.Context(), configDir)
	if err != nil {
		return err
	}
	app.install()
	return nil
}
