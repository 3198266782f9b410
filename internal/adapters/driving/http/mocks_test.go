package http

import (
	"context"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

type mockIngestService struct {
	result    *domain.IngestResult
	err       error
	lastQuery string
}

func (m *mockIngestService) Ingest(_ context.Context, query string) (*domain.IngestResult, error) {
	m.lastQuery = query
	return m.result, m.err
}

type mockSearchService struct {
	results   []domain.SearchResult
	err       error
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	return m.results, m.err
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
