package services

import (
	"context"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService reports store statistics.
type StatusService struct {
	store driven.PaperStore
}

// NewStatusService creates a new status service.
func NewStatusService(store driven.PaperStore) *StatusService {
	return &StatusService{store: store}
}

// Stats returns the number of records and how many still lack embeddings.
func (s *StatusService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.store.Stats(ctx)
}
