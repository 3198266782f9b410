package driven

import "github.com/custodia-labs/papertrail/internal/core/domain"

// TextChunker splits extracted text into ordered chunks.
// Implementations must be pure: no I/O, deterministic output.
type TextChunker interface {
	// Name returns the chunker name for logging.
	Name() string

	// Chunk splits text into chunks with orders starting at 1.
	Chunk(text string) []domain.TextChunk
}
