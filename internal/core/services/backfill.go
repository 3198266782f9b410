package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// Ensure BackfillService implements the interface.
var _ driving.BackfillService = (*BackfillService)(nil)

// BackfillService embeds records that were stored without an embedding.
type BackfillService struct {
	embedder driven.EmbeddingService
	store    driven.PaperStore
}

// NewBackfillService creates a new backfill service.
func NewBackfillService(embedder driven.EmbeddingService, store driven.PaperStore) *BackfillService {
	return &BackfillService{
		embedder: embedder,
		store:    store,
	}
}

// Backfill embeds each pending record one at a time. A record that fails
// is logged and counted, and the pass moves on to the next one.
func (s *BackfillService) Backfill(ctx context.Context) (*domain.BackfillResult, error) {
	logger.Section("Embedding Backfill")

	if s.embedder == nil {
		return nil, fmt.Errorf("backfill: %w", domain.ErrEmbeddingUnavailable)
	}

	pending, err := s.store.SelectMissingEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("backfill: select pending: %w", err)
	}

	result := &domain.BackfillResult{Candidates: len(pending)}
	logger.Info("Found %d records without embeddings", len(pending))

	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("backfill: %w", err)
		}

		vector, err := s.embedder.Embed(ctx, p.Content)
		if err != nil {
			logger.Error("Embedding record %s: %v", p.ID, err)
			result.Failed++
			continue
		}

		if err := s.store.UpdateEmbedding(ctx, p.ID, vector); err != nil {
			logger.Error("Updating record %s: %v", p.ID, err)
			result.Failed++
			continue
		}

		logger.Debug("Updated record %s", p.ID)
		result.Updated++
	}

	logger.Info("Backfill complete: %d updated, %d failed", result.Updated, result.Failed)
	return result, nil
}
