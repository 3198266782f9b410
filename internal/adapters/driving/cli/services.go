package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/papertrail/internal/adapters/driven/ai"
	"github.com/custodia-labs/papertrail/internal/adapters/driven/arxiv"
	"github.com/custodia-labs/papertrail/internal/adapters/driven/config/file"
	"github.com/custodia-labs/papertrail/internal/adapters/driven/httpfetch"
	"github.com/custodia-labs/papertrail/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papertrail/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/papertrail/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/core/services"
	"github.com/custodia-labs/papertrail/internal/logger"
	"github.com/custodia-labs/papertrail/internal/normalisers/pdf"
	"github.com/custodia-labs/papertrail/internal/postprocessors/chunker"
)

// application holds every wired component and the functions that release them.
type application struct {
	ingest   *services.IngestService
	topics   *services.TopicExpander
	search   *services.SearchService
	backfill *services.BackfillService
	status   *services.StatusService
	settings *services.SettingsService
	sched    *services.Scheduler
	watcher  *file.PromptWatcher

	closers []func() error
}

// install publishes the application's services to the command globals.
func (a *application) install() {
	ingestService = a.ingest
	topicService = a.topics
	searchService = a.search
	backfillService = a.backfill
	statusService = a.status
	settingsService = a.settings
	scheduler = a.sched
	promptWatcher = a.watcher
	cleanup = a.close
}

// close runs closers in reverse order and logs failures.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Closing resources: %v", err)
		}
	}
	a.closers = nil
}

// wireServices builds the full component graph from the configuration in dir.
func wireServices(ctx context.Context, dir string) (*application, error) {
	if dir == "" {
		d, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	app := &application{settings: settingsSvc}

	aiServices := ai.NewServices(settings)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}
	app.closers = append(app.closers, func() error {
		aiServices.Close()
		return nil
	})

	paperStore, schedulerStore, closeStores, err := openStores(ctx, settings, dir)
	if err != nil {
		app.close()
		return nil, err
	}
	app.closers = append(app.closers, closeStores)

	promptStore, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		app.close()
		return nil, err
	}
	app.watcher = file.NewPromptWatcher(promptStore, promptStore.Dir())

	source := arxiv.NewClient(arxiv.Config{
		BaseURL:         settings.Arxiv.BaseURL,
		RequestInterval: settings.Arxiv.RequestInterval,
	})
	content := services.NewContentExtractor(httpfetch.New(httpfetch.Config{}), pdf.New())
	textChunker := newChunker(settings.Ingest)

	app.topics = services.NewTopicExpander(aiServices.LLM, promptStore)
	app.ingest = services.NewIngestService(
		app.topics, source, content, textChunker, paperStore, settings.IngestOptions())
	app.search = services.NewSearchService(aiServices.Embedding, paperStore)
	app.backfill = services.NewBackfillService(aiServices.Embedding, paperStore)
	app.status = services.NewStatusService(paperStore)
	app.sched = services.NewScheduler(settingsSvc.GetSchedulerConfig(), schedulerStore, app.backfill, app.ingest)

	logger.Debug("Wired %s store, embedding=%s llm=%s",
		settings.Storage.Backend, settings.Embedding.Provider, settings.LLM.Provider)
	return app, nil
}

// openStores opens the paper store for the configured backend and a
// scheduler store beside it. The returned function closes both.
func openStores(
	ctx context.Context, settings *domain.AppSettings, dir string,
) (driven.PaperStore, driven.SchedulerStore, func() error, error) {
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(dir, "data")
	}

	switch settings.Storage.Backend {
	case domain.StorageMemory:
		papers := memory.NewPaperStore()
		return papers, memory.NewSchedulerStore(), papers.Close, nil

	case domain.StorageRedis:
		papers, err := redis.NewPaperStore(ctx, redis.Config{
			Addr:       settings.Storage.RedisAddr,
			Password:   settings.Storage.RedisPassword,
			DB:         settings.Storage.RedisDB,
			Index:      settings.Storage.RedisIndex,
			Dimensions: domain.EmbeddingDimensions()[settings.Embedding.Model],
		})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open redis store: %w", err)
		}
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			papers.Close()
			return nil, nil, nil, fmt.Errorf("open scheduler store: %w", err)
		}
		closeBoth := func() error {
			return errors.Join(papers.Close(), db.Close())
		}
		return papers, db.SchedulerStore(), closeBoth, nil

	default:
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Debug("Database: %s", db.Path())
		return db.PaperStore(), db.SchedulerStore(), db.Close, nil
	}
}

// newChunker builds the chunker from the ingest settings, the only place the
// chunk length is configured.
func newChunker(ingest domain.IngestSettings) *chunker.Chunker {
	return chunker.New(chunker.WithMaxLength(ingest.MaxChunkLength))
}
