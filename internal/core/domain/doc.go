// Package domain defines the core business entities for papertrail.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PaperDescriptor: A paper returned by the literature source
//   - ChunkRecord: A persisted slice of a paper's full text
//   - Embedding: A fixed-length vector for a chunk or query
//   - SearchResult: A nearest-neighbour hit returned to callers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
