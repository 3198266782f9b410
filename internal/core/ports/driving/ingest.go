package driving

import (
	"context"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// IngestService runs the end-to-end ingestion flow for a user query.
type IngestService interface {
	// Ingest expands the query into topics, fetches and chunks the matching
	// papers, and persists the chunks. A blank query fails with domain.ErrEmptyQuery.
	Ingest(ctx context.Context, query string) (*domain.IngestResult, error)
}

// TopicService derives research topics from a free-form query.
type TopicService interface {
	// Expand returns at most domain.MaxTopics topics.
	Expand(ctx context.Context, query string) ([]string, error)
}

// BackfillService fills in embeddings for records stored without one.
type BackfillService interface {
	// Backfill embeds every pending record. Per-record failures are counted,
	// not returned.
	Backfill(ctx context.Context) (*domain.BackfillResult, error)
}

// StatusService reports what the paper store holds.
type StatusService interface {
	Stats(ctx context.Context) (domain.StoreStats, error)
}
