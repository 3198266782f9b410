// Package chunker splits extracted paper text into ordered, word-boundary chunks.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

// DefaultMaxLength is the default maximum chunk length in bytes.
const DefaultMaxLength = domain.DefaultMaxChunkLength

// Chunker splits text into chunks of at most maxLength bytes.
type Chunker struct {
	maxLength int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxLength sets the maximum chunk length in bytes.
func WithMaxLength(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxLength = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the processor name.
func (c *Chunker) Name() string {
	return "chunker"
}

// MaxLength returns the configured maximum chunk length.
func (c *Chunker) MaxLength() int {
	return c.maxLength
}

// Chunk splits text using the configured maximum length.
func (c *Chunker) Chunk(text string) []domain.TextChunk {
	return Split(text, c.maxLength)
}

// Split cuts text into chunks of at most maxLength bytes.
//
// When a cut would land inside the text, it is moved back to the last space
// after the cursor so words stay whole; the space opens the next chunk.
// A run with no space is cut at maxLength (never inside a UTF-8 rune).
// Null bytes are removed from every chunk, and chunks left empty are dropped.
// Orders start at 1 and are contiguous.
func Split(text string, maxLength int) []domain.TextChunk {
	if text == "" {
		return nil
	}
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	chunks := make([]domain.TextChunk, 0, len(text)/maxLength+1)
	order := 1

	for cursor := 0; cursor < len(text); {
		end := cursor + maxLength
		if end < len(text) {
			// The space at end itself counts, like a right-inclusive search.
			if i := strings.LastIndexByte(text[cursor:end+1], ' '); i > 0 {
				end = cursor + i
			} else {
				end = runeBoundary(text, cursor, end)
			}
		} else {
			end = len(text)
		}

		content := strings.ReplaceAll(text[cursor:end], "\x00", "")
		if content != "" {
			chunks = append(chunks, domain.TextChunk{Order: order, Content: content})
			order++
		}
		cursor = end
	}

	return chunks
}

// runeBoundary moves end back to the start of the rune it falls in.
// If that would leave an empty chunk, it moves forward past the rune instead.
func runeBoundary(text string, cursor, end int) int {
	b := end
	for b > cursor && !utf8.RuneStart(text[b]) {
		b--
	}
	if b > cursor {
		return b
	}
	_, size := utf8.DecodeRuneInString(text[cursor:])
	return cursor + size
}
