package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
	"github.com/custodia-labs/papertrail/internal/core/ports/driving"
	"github.com/custodia-labs/papertrail/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// textSource returns a paper's plain text, or "" when it cannot be obtained.
type textSource interface {
	Extract(ctx context.Context, documentURL string) string
}

// topicHarvest holds what one topic produced before the batch insert.
type topicHarvest struct {
	papers  []domain.PaperDescriptor
	records []domain.ChunkRecord
	skipped int
}

// IngestService runs the ingestion pipeline: topics, papers, text, chunks, store.
type IngestService struct {
	topics  driving.TopicService
	source  driven.PaperSource
	content textSource
	chunker driven.TextChunker
	store   driven.PaperStore
	opts    domain.IngestOptions
	now     func() time.Time
}

// NewIngestService creates an ingestion service. Zero options take defaults.
func NewIngestService(
	topics driving.TopicService,
	source driven.PaperSource,
	content textSource,
	chunker driven.TextChunker,
	store driven.PaperStore,
	opts domain.IngestOptions,
) *IngestService {
	return &IngestService{
		topics:  topics,
		source:  source,
		content: content,
		chunker: chunker,
		store:   store,
		opts:    opts.WithDefaults(),
		now:     time.Now,
	}
}

// Ingest runs the full pipeline for query and reports what was written.
// Groups committed before a persistence failure stay committed.
func (s *IngestService) Ingest(ctx context.Context, query string) (*domain.IngestResult, error) {
	logger.Section("Ingestion")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	logger.Debug("Query: %q", query)

	// 1. Expand the query into topics
	topics, err := s.topics.Expand(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	// 2. Fetch, extract and chunk per topic with bounded parallelism
	harvests := make([]topicHarvest, len(topics))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, topic := range topics {
		g.Go(func() error {
			h, err := s.harvest(gctx, topic)
			if err != nil {
				return err
			}
			harvests[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	// 3. Accumulate in topic order
	result := &domain.IngestResult{Topics: topics}
	var records []domain.ChunkRecord
	for _, h := range harvests {
		result.Papers = append(result.Papers, h.papers...)
		result.SkippedPapers += h.skipped
		records = append(records, h.records...)
	}
	logger.Info("Collected %d chunk records from %d papers (%d skipped)",
		len(records), len(result.Papers), result.SkippedPapers)

	if len(records) == 0 {
		return result, nil
	}

	// 4. Persist in groups
	written, err := s.store.InsertBatch(ctx, records, s.opts.BatchSize)
	if err != nil {
		logger.Error("Ingest persisted %d of %d records before failing: %v", written, len(records), err)
		return nil, fmt.Errorf("ingest: %w", err)
	}
	result.Records = written
	logger.Info("Persisted %d records", written)

	return result, nil
}

// harvest fetches one topic's papers and turns their text into records.
func (s *IngestService) harvest(ctx context.Context, topic string) (topicHarvest, error) {
	var h topicHarvest

	papers, err := s.source.Search(ctx, topic, s.opts.MaxResults)
	if err != nil {
		return h, fmt.Errorf("topic %q: %w", topic, err)
	}
	logger.Debug("Topic %q: %d papers from %s", topic, len(papers), s.source.Name())
	h.papers = papers

	for _, paper := range papers {
		if err := ctx.Err(); err != nil {
			return h, err
		}

		text := s.content.Extract(ctx, paper.DocumentURL)
		if text == "" {
			logger.Debug("Skipping %q: no content", paper.Title)
			h.skipped++
			continue
		}

		chunks := s.chunker.Chunk(text)
		h.records = append(h.records, domain.NewChunkRecords(paper, chunks, s.now())...)
	}

	return h, nil
}
