package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpapi "github.com/custodia-labs/papertrail/internal/adapters/driving/http"
	"github.com/custodia-labs/papertrail/internal/logger"
)

var (
	serveAddr        string
	serveNoScheduler bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serves the JSON API until interrupted:

  GET  /               liveness text
  GET  /api/health     status and store counts
  POST /api/search     {"query": "...", "limit": 10}
  POST /api/ingest     {"query": "..."}
  POST /api/backfill

The scheduler runs alongside unless --no-scheduler is given, and edits to
prompt files are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr, :3000)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "do not run scheduled tasks")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if ingestService == nil || searchService == nil || backfillService == nil {
		return errors.New("services not configured")
	}

	addr := serveAddr
	if addr == "" && settingsService != nil {
		if settings, err := settingsService.Get(); err == nil {
			addr = settings.Server.Addr
		}
	}

	server, err := httpapi.NewServer(httpapi.Services{
		Ingest:   ingestService,
		Search:   searchService,
		Backfill: backfillService,
		Status:   statusService,
	}, addr)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(cmd.Context())

	g.Go(func() error {
		if err := server.Run(ctx); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if scheduler != nil && !serveNoScheduler {
		g.Go(func() error {
			return scheduler.Start(ctx)
		})
	}

	if promptWatcher != nil {
		g.Go(func() error {
			// Serving continues without hot reload.
			if err := promptWatcher.Run(ctx); err != nil {
				logger.Warn("Prompt watcher stopped: %v", err)
			}
			return nil
		})
	}

	cmd.Printf("Listening on %s\n", server.Addr())
	return g.Wait()
}
