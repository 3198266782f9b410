package cli

import (
	"context"

	"github.com/custodia-labs/papertrail/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/services"
)

type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context, _ string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

type mockIngestService struct {
	result    *domain.IngestResult
	err       error
	lastQuery string
}

func (m *mockIngestService) Ingest(_ context.Context, query string) (*domain.IngestResult, error) {
	m.lastQuery = query
	return m.result, m.err
}

type mockTopicService struct {
	topics []string
	err    error
}

func (m *mockTopicService) Expand(_ context.Context, _ string) ([]string, error) {
	return m.topics, m.err
}

type mockBackfillService struct {
	result *domain.BackfillResult
	err    error
}

func (m *mockBackfillService) Backfill(_ context.Context) (*domain.BackfillResult, error) {
	return m.result, m.err
}

type mockStatusService struct {
	stats domain.StoreStats
	err   error
}

func (m *mockStatusService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

// testServices exposes the mocks installed by setupTestServices.
type testServices struct {
	search   *mockSearchService
	ingest   *mockIngestService
	topics   *mockTopicService
	backfill *mockBackfillService
	status   *mockStatusService
	config   *memory.ConfigStore
}

// setupTestServices installs mocks and an in-memory settings service.
// The returned function restores the previous state and resets flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		search: &mockSearchService{results: []domain.SearchResult{{
			ID:         "rec-1",
			Title:      "Deep Residual Learning",
			Content:    "Deeper neural networks are more difficult to train.",
			Similarity: 0.1234,
			Link:       "http://arxiv.org/abs/1512.03385v1",
			ChunkOrder: 1,
		}}},
		ingest: &mockIngestService{result: &domain.IngestResult{
			Topics:  []string{"residual networks", "image recognition"},
			Papers:  []domain.PaperDescriptor{{Title: "Deep Residual Learning", Link: "http://arxiv.org/abs/1512.03385v1"}},
			Records: 4,
		}},
		topics:   &mockTopicService{topics: []string{"residual networks", "image recognition"}},
		backfill: &mockBackfillService{result: &domain.BackfillResult{Candidates: 4, Updated: 3, Failed: 1}},
		status:   &mockStatusService{stats: domain.StoreStats{Records: 4, PendingEmbeddings: 1}},
		config:   memory.NewConfigStore(),
	}

	prevReady := servicesReady

	searchService = ts.search
	ingestService = ts.ingest
	topicService = ts.topics
	backfillService = ts.backfill
	statusService = ts.status
	settingsService = services.NewSettingsService(ts.config, nil)
	scheduler = nil
	promptWatcher = nil
	servicesReady = true

	return ts, func() {
		searchService = nil
		ingestService = nil
		topicService = nil
		backfillService = nil
		statusService = nil
		settingsService = nil
		servicesReady = prevReady

		searchLimit = domain.DefaultSearchLimit
		searchJSON = false
		ingestDump = ""
		ingestJSON = false
		backfillJSON = false
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}
