package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService answers nearest-neighbour queries over stored chunks.
type SearchService struct {
	embedder driven.EmbeddingService
	store    driven.PaperStore
}

// NewSearchService creates a new search service.
func NewSearchService(embedder driven.EmbeddingService, store driven.PaperStore) *SearchService {
	return &SearchService{
		embedder: embedder,
		store:    store,
	}
}

// Search embeds query and returns the closest chunks, nearest first.
// Similarity carries the raw distance.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("search: %w", domain.ErrEmbeddingUnavailable)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	logger.Debug("Limit: %d", limit)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbeddingProvider) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbeddingProvider, err)
		}
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Query vector: %d dimensions", len(vector))

	neighbors, err := s.store.NearestNeighbors(ctx, vector, limit)
	if err != nil {
		logger.Warn("Nearest-neighbour query failed: %v", err)
		return nil, fmt.Errorf("search: %w", err)
	}

	results := make([]domain.SearchResult, len(neighbors))
	for i, n := range neighbors {
		results[i] = domain.NewSearchResult(n)
	}
	logger.Info("Final results: %d", len(results))

	return results, nil
}
