package domain

// DefaultSearchLimit is the number of neighbours returned when no limit is given.
const DefaultSearchLimit = 10

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int
}

// Neighbor is a stored record together with its distance from a query vector.
type Neighbor struct {
	// Record is the matched chunk record.
	Record ChunkRecord

	// Distance is the Euclidean distance from the query vector.
	Distance float64
}

// SearchResult represents a single retrieval hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`

	// Similarity carries the raw distance: lower means closer.
	Similarity float64 `json:"similarity"`

	Link       string `json:"link,omitempty"`
	ChunkOrder int    `json:"chunk_order,omitempty"`
}

// NewSearchResult maps a neighbour to the result shape returned to callers.
func NewSearchResult(n Neighbor) SearchResult {
	return SearchResult{
		ID:         n.Record.ID,
		Title:      n.Record.Title,
		Content:    n.Record.Content,
		Similarity: n.Distance,
		Link:       n.Record.Link,
		ChunkOrder: n.Record.ChunkOrder,
	}
}
