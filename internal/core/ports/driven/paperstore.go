package driven

import (
	"context"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// PaperStore persists chunk records and answers nearest-neighbour queries.
// Implementations must be safe for concurrent use.
type PaperStore interface {
	// InsertBatch writes records in groups of batchSize (500 when <= 0),
	// preserving order. Each group commits on its own. On failure it returns
	// the number of records committed so far and a *domain.PersistenceBatchError
	// carrying the failing group's offset. Empty IDs are assigned.
	InsertBatch(ctx context.Context, records []domain.ChunkRecord, batchSize int) (int, error)

	// SelectMissingEmbeddings returns every record whose embedding is unset.
	SelectMissingEmbeddings(ctx context.Context) ([]domain.PendingEmbedding, error)

	// UpdateEmbedding sets a record's embedding and refreshes its search vector.
	// Returns domain.ErrNotFound for an unknown id.
	UpdateEmbedding(ctx context.Context, id string, vector domain.Embedding) error

	// NearestNeighbors returns embedded records ordered by ascending distance
	// from vector, at most limit (10 when <= 0). A query whose length differs
	// from the stored vectors fails with domain.ErrDimensionMismatch.
	NearestNeighbors(ctx context.Context, vector domain.Embedding, limit int) ([]domain.Neighbor, error)

	// Stats returns record counts.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// Close releases resources.
	Close() error
}
