package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Topic expansion, and therefore ingestion, is disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Retrieval and backfill are disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates an upstream rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Pipeline Errors.

	// ErrEmptyQuery indicates the user query was empty or whitespace.
	ErrEmptyQuery = errors.New("empty query")

	// ErrUpstreamUnavailable indicates the literature source could not be queried.
	ErrUpstreamUnavailable = errors.New("literature source unavailable")

	// ErrExtractionFailure indicates a paper's document could not be turned into text.
	// It is logged and absorbed; callers see empty content instead.
	ErrExtractionFailure = errors.New("content extraction failed")

	// ErrTopicExpansionFailure indicates a language-model stage failed
	// while deriving topics from the user query.
	ErrTopicExpansionFailure = errors.New("topic expansion failed")

	// ErrEmbeddingProvider indicates the embedding provider returned an error.
	ErrEmbeddingProvider = errors.New("embedding provider error")

	// ErrPersistenceBatch indicates a batch insert group failed.
	// Concrete failures are reported as *PersistenceBatchError.
	ErrPersistenceBatch = errors.New("persistence batch failed")

	// ErrDimensionMismatch indicates two vectors of different length were compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// PersistenceBatchError reports the group that failed during a batch insert.
// Groups before Offset are committed and stay committed.
type PersistenceBatchError struct {
	// Offset is the index of the first record of the failing group.
	Offset int

	// Size is the number of records in the failing group.
	Size int

	// Err is the underlying storage error.
	Err error
}

// Error implements the error interface.
func (e *PersistenceBatchError) Error() string {
	return fmt.Sprintf("%s at offset %d (group of %d): %v", ErrPersistenceBatch, e.Offset, e.Size, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *PersistenceBatchError) Unwrap() error {
	return e.Err
}

// Is reports ErrPersistenceBatch as a match so callers can use errors.Is.
func (e *PersistenceBatchError) Is(target error) bool {
	return target == ErrPersistenceBatch
}
