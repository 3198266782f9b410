package mcp

import (
	"context"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	result *domain.IngestResult
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, _ string) (*domain.IngestResult, error) {
	return m.result, m.err
}

// mockTopicService is a mock implementation of driving.TopicService.
type mockTopicService struct {
	topics []string
	err    error
}

func (m *mockTopicService) Expand(_ context.Context, _ string) ([]string, error) {
	return m.topics, m.err
}

// mockBackfillService is a mock implementation of driving.BackfillService.
type mockBackfillService struct {
	result *domain.BackfillResult
	err    error
}

func (m *mockBackfillService) Backfill(_ context.Context) (*domain.BackfillResult, error) {
	return m.result, m.err
}

// mockStatusService is a mock implementation of driving.StatusService.
type mockStatusService struct {
	stats domain.StoreStats
	err   error
}

func (m *mockStatusService) Stats(_ context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}
