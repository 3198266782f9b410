package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papertrail/internal/core/domain"
)

func paper(title, pdf string) domain.PaperDescriptor {
	return domain.PaperDescriptor{
		Title:       title,
		Authors:     []string{"A. Author"},
		Link:        "http://arxiv.org/abs/" + title,
		Published:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DocumentURL: pdf,
	}
}

func newTestIngest(
	topics *mockTopicService, source *mockPaperSource, texts map[string]string, store *mockPaperStore,
) *IngestService {
	return NewIngestService(topics, source, &mockTextSource{texts: texts}, wordChunker{}, store, domain.IngestOptions{})
}

func TestIngestService_Ingest(t *testing.T) {
	topics := &mockTopicService{topics: []string{"t1", "t2"}}
	source := &mockPaperSource{papers: map[string][]domain.PaperDescriptor{
		"t1": {paper("p1", "pdf1"), paper("p2", "pdf2")},
		"t2": {paper("p3", "pdf3")},
	}}
	texts := map[string]string{
		"pdf1": "alpha beta",
		"pdf2": "gamma",
		"pdf3": "delta epsilon",
	}
	store := &mockPaperStore{}

	result, err := newTestIngest(topics, source, texts, store).Ingest(context.Background(), "  query  ")

	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, result.Topics)
	assert.Len(t, result.Papers, 3)
	assert.Equal(t, 5, result.Records)
	assert.Zero(t, result.SkippedPapers)
	assert.Equal(t, domain.DefaultBatchSize, store.batchSize)
	assert.Equal(t, domain.DefaultMaxResults, source.max)

	// Records keep topic order, then paper order, then chunk order.
	var contents []string
	for _, r := range store.records {
		contents = append(contents, r.Content)
	}
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta", "epsilon"}, contents)

	first := store.records[0]
	assert.Equal(t, "p1", first.Title)
	assert.Equal(t, 1, first.ChunkOrder)
	assert.Nil(t, first.Embedding)
	assert.Equal(t, 2, store.records[1].ChunkOrder)
}

func TestIngestService_Ingest_EmptyQuery(t *testing.T) {
	topics := &mockTopicService{}
	source := &mockPaperSource{}
	store := &mockPaperStore{}

	_, err := newTestIngest(topics, source, nil, store).Ingest(context.Background(), " \t ")

	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	assert.Zero(t, topics.calls)
	assert.Empty(t, source.queried)
	assert.Zero(t, store.inserted)
}

func TestIngestService_Ingest_SkipsPapersWithoutText(t *testing.T) {
	topics := &mockTopicService{topics: []string{"t1"}}
	source := &mockPaperSource{papers: map[string][]domain.PaperDescriptor{
		"t1": {paper("p1", "pdf1"), paper("p2", "missing")},
	}}
	store := &mockPaperStore{}

	result, err := newTestIngest(topics, source, map[string]string{"pdf1": "text"}, store).
		Ingest(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, 1, result.SkippedPapers)
	assert.Equal(t, 1, result.Records)
	assert.Len(t, result.Papers, 2)
}

func TestIngestService_Ingest_NoRecordsSkipsInsert(t *testing.T) {
	topics := &mockTopicService{topics: []string{"t1"}}
	source := &mockPaperSource{papers: map[string][]domain.PaperDescriptor{}}
	store := &mockPaperStore{}

	result, err := newTestIngest(topics, source, nil, store).Ingest(context.Background(), "q")

	require.NoError(t, err)
	assert.Zero(t, result.Records)
	assert.Zero(t, store.inserted)
}

func TestIngestService_Ingest_TopicFailure(t *testing.T) {
	topics := &mockTopicService{err: domain.ErrTopicExpansionFailure}

	_, err := newTestIngest(topics, &mockPaperSource{}, nil, &mockPaperStore{}).
		Ingest(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrTopicExpansionFailure)
}

func TestIngestService_Ingest_UpstreamFailure(t *testing.T) {
	topics := &mockTopicService{topics: []string{"t1", "t2"}}
	source := &mockPaperSource{
		papers: map[string][]domain.PaperDescriptor{"t1": {paper("p1", "pdf1")}},
		errs:   map[string]error{"t2": domain.ErrUpstreamUnavailable},
	}
	store := &mockPaperStore{}

	_, err := newTestIngest(topics, source, map[string]string{"pdf1": "x"}, store).
		Ingest(context.Background(), "q")

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Zero(t, store.inserted)
}

func TestIngestService_Ingest_PersistenceFailure(t *testing.T) {
	topics := &mockTopicService{topics: []string{"t1"}}
	source := &mockPaperSource{papers: map[string][]domain.PaperDescriptor{"t1": {paper("p1", "pdf1")}}}
	store := &mockPaperStore{insertErr: &domain.PersistenceBatchError{Offset: 0, Size: 1, Err: errMock}}

	result, err := newTestIngest(topics, source, map[string]string{"pdf1": "x"}, store).
		Ingest(context.Background(), "q")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrPersistenceBatch)

	var batchErr *domain.PersistenceBatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 0, batchErr.Offset)
}

func TestIngestService_Ingest_CustomOptions(t *testing.T) {
	topics := &mockTopicService{topics: []string{"t1"}}
	source := &mockPaperSource{papers: map[string][]domain.PaperDescriptor{"t1": {paper("p1", "pdf1")}}}
	store := &mockPaperStore{}
	svc := NewIngestService(topics, source, &mockTextSource{texts: map[string]string{"pdf1": "x"}},
		wordChunker{}, store, domain.IngestOptions{MaxResults: 2, BatchSize: 7})

	_, err := svc.Ingest(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, 2, source.max)
	assert.Equal(t, 7, store.batchSize)
}
