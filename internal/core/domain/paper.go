package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
)

// PaperDescriptor describes one paper returned by the literature source.
// It is produced by the fetcher and never mutated afterwards.
type PaperDescriptor struct {
	// Title is the paper title with whitespace collapsed.
	Title string `json:"title"`

	// Authors lists author names in feed order.
	Authors []string `json:"authors"`

	// Link is the canonical abstract page URL.
	Link string `json:"link"`

	// Published is the first publication timestamp.
	Published time.Time `json:"published"`

	// DocumentURL is where the full-text binary (PDF) lives.
	DocumentURL string `json:"document_url"`
}

// TextChunk is one ordered slice of a paper's text.
type TextChunk struct {
	// Order is the 1-based position of the chunk within the text.
	Order int

	// Content is the chunk text, free of null bytes.
	Content string
}

// ChunkRecord is the persisted unit: one chunk of one paper plus its metadata.
type ChunkRecord struct {
	// ID is assigned by the store on insert when empty.
	ID string `json:"id"`

	Title       string    `json:"title"`
	Authors     []string  `json:"authors"`
	Link        string    `json:"link"`
	Published   time.Time `json:"published"`
	DocumentURL string    `json:"document_url"`

	// Content is the chunk text.
	Content string `json:"content"`

	// ChunkOrder is the 1-based position of Content within the paper.
	ChunkOrder int `json:"chunk_order"`

	// Embedding is nil until the backfill pass fills it in.
	Embedding Embedding `json:"embedding,omitempty"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`
}

// HasEmbedding reports whether the record has been embedded.
func (r ChunkRecord) HasEmbedding() bool {
	return len(r.Embedding) > 0
}

// Validate checks the invariants every stored record must satisfy.
func (r ChunkRecord) Validate() error {
	if r.ChunkOrder < 1 {
		return fmt.Errorf("%w: chunk order %d must be positive", ErrInvalidInput, r.ChunkOrder)
	}
	if r.Content == "" {
		return fmt.Errorf("%w: chunk content is empty", ErrInvalidInput)
	}
	if strings.ContainsRune(r.Content, 0) {
		return fmt.Errorf("%w: chunk content contains null bytes", ErrInvalidInput)
	}
	return nil
}

// NewChunkRecords builds one record per chunk, copying paper metadata into each.
// Records carry no ID and no embedding.
func NewChunkRecords(paper PaperDescriptor, chunks []TextChunk, now time.Time) []ChunkRecord {
	records := make([]ChunkRecord, 0, len(chunks))
	for _, c := range chunks {
		authors := make([]string, len(paper.Authors))
		copy(authors, paper.Authors)
		records = append(records, ChunkRecord{
			Title:       paper.Title,
			Authors:     authors,
			Link:        paper.Link,
			Published:   paper.Published,
			DocumentURL: paper.DocumentURL,
			Content:     c.Content,
			ChunkOrder:  c.Order,
			CreatedAt:   now,
		})
	}
	return records
}

// PendingEmbedding is a stored record that still lacks an embedding.
type PendingEmbedding struct {
	ID      string
	Content string
}

// StoreStats summarises the contents of a paper store.
type StoreStats struct {
	// Records is the total number of chunk records.
	Records int `json:"records"`

	// PendingEmbeddings is the number of records without an embedding.
	PendingEmbeddings int `json:"pending_embeddings"`
}

// SearchVector derives the full-text search representation of content:
// lower-cased terms of two or more letters or digits, deduplicated and sorted.
func SearchVector(content string) string {
	fields := strings.FieldsFunc(strings.ToLower(content), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	sort.Strings(terms)
	return strings.Join(terms, " ")
}
