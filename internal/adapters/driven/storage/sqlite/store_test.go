package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
)

// setupTestStore opens a store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testRecord(title string, order int) domain.ChunkRecord {
	return domain.ChunkRecord{
		Title:       title,
		Authors:     []string{"Ada Lovelace", "Alan Turing"},
		Link:        "http://arxiv.org/abs/" + title,
		Published:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		DocumentURL: "http://arxiv.org/pdf/" + title,
		Content:     fmt.Sprintf("%s chunk %d", title, order),
		ChunkOrder:  order,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	_, err = first.PaperStore().InsertBatch(context.Background(), []domain.ChunkRecord{testRecord("2401.0001", 1)}, 0)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var versions int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 2, versions)

	stats, err := second.PaperStore().Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Records)
}

func TestStore_CloseTwice(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}

// ==================== PaperStore Tests ====================

func TestPaperStore_InsertBatch_AssignsIDs(t *testing.T) {
	papers := setupTestStore(t).PaperStore()
	ctx := context.Background()

	records := []domain.ChunkRecord{testRecord("2401.0001", 1), testRecord("2401.0001", 2)}
	n, err := papers.InsertBatch(ctx, records, 0)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NotEmpty(t, records[0].ID)
	assert.NotEqual(t, records[0].ID, records[1].ID)

	pending, err := papers.SelectMissingEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, records[0].ID, pending[0].ID)
	assert.Equal(t, "2401.0001 chunk 1", pending[0].Content)
}

func TestPaperStore_InsertBatch_PartialFailure(t *testing.T) {
	papers := setupTestStore(t).PaperStore()
	ctx := context.Background()

	records := make([]domain.ChunkRecord, 1200)
	for i := range records {
		records[i] = testRecord(fmt.Sprintf("2401.%04d", i), 1)
	}
	records[1100].ChunkOrder = 0

	n, err := papers.InsertBatch(ctx, records, 500)

	assert.Equal(t, 1000, n)
	require.ErrorIs(t, err, domain.ErrPersistenceBatch)

	var batchErr *domain.PersistenceBatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 1000, batchErr.Offset)
	assert.Equal(t, 200, batchErr.Size)

	assert.NotEmpty(t, records[999].ID)
	for _, r := range records[1000:] {
		assert.Empty(t, r.ID, "rolled back record kept an id")
	}

	stats, err := papers.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, stats.Records)
}

func TestPaperStore_InsertBatch_RejectsNullBytes(t *testing.T) {
	papers := setupTestStore(t).PaperStore()

	bad := testRecord("2401.0001", 1)
	bad.Content = "nul\x00byte"

	n, err := papers.InsertBatch(context.Background(), []domain.ChunkRecord{bad}, 10)

	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPaperStore_InsertBatch_Empty(t *testing.T) {
	papers := setupTestStore(t).PaperStore()

	n, err := papers.InsertBatch(context.Background(), nil, 0)

	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPaperStore_UpdateEmbedding(t *testing.T) {
	store := setupTestStore(t)
	papers := store.PaperStore()
	ctx := context.Background()

	records := []domain.ChunkRecord{testRecord("2401.0001", 1), testRecord("2401.0002", 1)}
	_, err := papers.InsertBatch(ctx, records, 0)
	require.NoError(t, err)

	require.NoError(t, papers.UpdateEmbedding(ctx, records[0].ID, domain.Embedding{0.1, 0.2, 0.3}))

	pending, err := papers.SelectMissingEmbeddings(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, records[1].ID, pending[0].ID)

	var searchVector string
	require.NoError(t, store.db.QueryRow("SELECT search_vector FROM papers WHERE id = ?", records[0].ID).Scan(&searchVector))
	assert.Equal(t, domain.SearchVector(records[0].Content), searchVector)

	stats, err := papers.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StoreStats{Records: 2, PendingEmbeddings: 1}, stats)
}

func TestPaperStore_UpdateEmbedding_Errors(t *testing.T) {
	papers := setupTestStore(t).PaperStore()
	ctx := context.Background()

	err := papers.UpdateEmbedding(ctx, "missing", domain.Embedding{1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = papers.UpdateEmbedding(ctx, "missing", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func seedEmbedded(t *testing.T, papers driven.PaperStore, vectors map[string]domain.Embedding) map[string]string {
	t.Helper()
	ctx := context.Background()

	ids := make(map[string]string, len(vectors))
	for title, vec := range vectors {
		records := []domain.ChunkRecord{testRecord(title, 1)}
		_, err := papers.InsertBatch(ctx, records, 0)
		require.NoError(t, err)
		require.NoError(t, papers.UpdateEmbedding(ctx, records[0].ID, vec))
		ids[title] = records[0].ID
	}
	return ids
}

func TestPaperStore_NearestNeighbors(t *testing.T) {
	papers := setupTestStore(t).PaperStore()
	ctx := context.Background()

	seedEmbedded(t, papers, map[string]domain.Embedding{
		"near":  {1, 0},
		"mid":   {3, 0},
		"far":   {10, 0},
		"exact": {0, 0},
	})
	_, err := papers.InsertBatch(ctx, []domain.ChunkRecord{testRecord("unembedded", 1)}, 0)
	require.NoError(t, err)

	neighbors, err := papers.NearestNeighbors(ctx, domain.Embedding{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, neighbors, 3)

	assert.Equal(t, "exact", neighbors[0].Record.Title)
	assert.Equal(t, "near", neighbors[1].Record.Title)
	assert.Equal(t, "mid", neighbors[2].Record.Title)
	assert.InDelta(t, 0.0, neighbors[0].Distance, 1e-9)
	assert.InDelta(t, 3.0, neighbors[2].Distance, 1e-9)

	got := neighbors[1].Record
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, got.Authors)
	assert.True(t, got.Published.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, domain.Embedding{1, 0}, got.Embedding)
}

func TestPaperStore_NearestNeighbors_DefaultLimit(t *testing.T) {
	papers := setupTestStore(t).PaperStore()

	vectors := make(map[string]domain.Embedding, 12)
	for i := range 12 {
		vectors[fmt.Sprintf("p%02d", i)] = domain.Embedding{float32(i)}
	}
	seedEmbedded(t, papers, vectors)

	neighbors, err := papers.NearestNeighbors(context.Background(), domain.Embedding{0}, 0)
	require.NoError(t, err)
	assert.Len(t, neighbors, domain.DefaultSearchLimit)
}

func TestPaperStore_NearestNeighbors_DimensionMismatch(t *testing.T) {
	papers := setupTestStore(t).PaperStore()
	seedEmbedded(t, papers, map[string]domain.Embedding{"a": {1, 2, 3}})

	_, err := papers.NearestNeighbors(context.Background(), domain.Embedding{1, 2}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestPaperStore_NearestNeighbors_Empty(t *testing.T) {
	papers := setupTestStore(t).PaperStore()

	neighbors, err := papers.NearestNeighbors(context.Background(), domain.Embedding{1}, 5)
	require.NoError(t, err)
	assert.Empty(t, neighbors)
}

func TestFloat32Roundtrip(t *testing.T) {
	vec := domain.Embedding{0, -1.5, 3.25, 1e-7}
	assert.Equal(t, vec, bytesToFloat32Slice(float32SliceToBytes(vec)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
	assert.Nil(t, nullableVector(nil))
}
