package driving

import (
	"context"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// SearchService answers similarity queries over ingested chunks.
type SearchService interface {
	// Search embeds the query and returns the nearest stored chunks,
	// closest first. A blank query fails with domain.ErrEmptyQuery.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
