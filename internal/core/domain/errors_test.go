package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrLLMUnavailable", ErrLLMUnavailable},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrEmptyQuery", ErrEmptyQuery},
		{"ErrUpstreamUnavailable", ErrUpstreamUnavailable},
		{"ErrExtractionFailure", ErrExtractionFailure},
		{"ErrTopicExpansionFailure", ErrTopicExpansionFailure},
		{"ErrEmbeddingProvider", ErrEmbeddingProvider},
		{"ErrPersistenceBatch", ErrPersistenceBatch},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrors_Distinct(t *testing.T) {
	assert.False(t, errors.Is(ErrEmptyQuery, ErrInvalidInput))
	assert.False(t, errors.Is(ErrUpstreamUnavailable, ErrExtractionFailure))
	assert.False(t, errors.Is(ErrEmbeddingProvider, ErrEmbeddingUnavailable))
}

func TestPersistenceBatchError(t *testing.T) {
	cause := errors.New("disk full")
	err := &PersistenceBatchError{Offset: 1000, Size: 200, Err: cause}

	t.Run("matches sentinel", func(t *testing.T) {
		assert.ErrorIs(t, err, ErrPersistenceBatch)
	})

	t.Run("unwraps to cause", func(t *testing.T) {
		assert.ErrorIs(t, err, cause)
	})

	t.Run("message carries offset", func(t *testing.T) {
		assert.Contains(t, err.Error(), "offset 1000")
		assert.Contains(t, err.Error(), "disk full")
	})

	t.Run("survives wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("ingest: %w", err)

		var batchErr *PersistenceBatchError
		require.ErrorAs(t, wrapped, &batchErr)
		assert.Equal(t, 1000, batchErr.Offset)
		assert.ErrorIs(t, wrapped, ErrPersistenceBatch)
	})
}
