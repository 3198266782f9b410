package driven

import (
	"context"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// PaperSource queries an external literature search API.
type PaperSource interface {
	// Search returns up to maxResults papers for a topic, in API order.
	// Any failure is reported as domain.ErrUpstreamUnavailable.
	Search(ctx context.Context, topic string, maxResults int) ([]domain.PaperDescriptor, error)

	// Name identifies the source in logs (e.g., "arxiv").
	Name() string
}
