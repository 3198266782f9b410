package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
)

// Ensure PaperStore implements the interface.
var _ driven.PaperStore = (*PaperStore)(nil)

// PaperStore is an in-memory implementation of driven.PaperStore.
// Records are lost when the process exits.
type PaperStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.ChunkRecord
}

// NewPaperStore creates an empty in-memory paper store.
func NewPaperStore() *PaperStore {
	return &PaperStore{
		records: make(map[string]domain.ChunkRecord),
	}
}

// InsertBatch validates each group before storing it, so a failing group
// leaves nothing behind. Empty IDs are assigned in place once their group
// is stored.
func (s *PaperStore) InsertBatch(ctx context.Context, records []domain.ChunkRecord, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}

	committed := 0
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		group := records[start:end]

		if err := s.insertGroup(ctx, group); err != nil {
			return committed, &domain.PersistenceBatchError{Offset: start, Size: len(group), Err: err}
		}
		committed += len(group)
	}
	return committed, nil
}

func (s *PaperStore) insertGroup(ctx context.Context, group []domain.ChunkRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range group {
		if err := group[i].Validate(); err != nil {
			return err
		}
		if group[i].ID != "" {
			if _, exists := s.records[group[i].ID]; exists {
				return fmt.Errorf("%w: duplicate id %s", domain.ErrInvalidInput, group[i].ID)
			}
		}
	}

	now := time.Now().UTC()
	for i := range group {
		r := &group[i]
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		s.records[r.ID] = cloneRecord(*r)
		s.order = append(s.order, r.ID)
	}
	return nil
}

// SelectMissingEmbeddings returns records without an embedding in insert order.
func (s *PaperStore) SelectMissingEmbeddings(_ context.Context) ([]domain.PendingEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pending []domain.PendingEmbedding
	for _, id := range s.order {
		r := s.records[id]
		if !r.HasEmbedding() {
			pending = append(pending, domain.PendingEmbedding{ID: r.ID, Content: r.Content})
		}
	}
	return pending, nil
}

// UpdateEmbedding sets a record's embedding.
func (s *PaperStore) UpdateEmbedding(_ context.Context, id string, vector domain.Embedding) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	r.Embedding = append(domain.Embedding(nil), vector...)
	s.records[id] = r
	return nil
}

// NearestNeighbors ranks embedded records by Euclidean distance.
func (s *PaperStore) NearestNeighbors(_ context.Context, vector domain.Embedding, limit int) ([]domain.Neighbor, error) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	neighbors := make([]domain.Neighbor, 0, limit)
	for _, id := range s.order {
		r := s.records[id]
		if !r.HasEmbedding() {
			continue
		}
		d, err := domain.EuclideanDistance(vector, r.Embedding)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, domain.Neighbor{Record: cloneRecord(r), Distance: d})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

// Stats counts records and pending embeddings.
func (s *PaperStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.StoreStats{Records: len(s.records)}
	for _, r := range s.records {
		if !r.HasEmbedding() {
			stats.PendingEmbeddings++
		}
	}
	return stats, nil
}

// Close is a no-op.
func (s *PaperStore) Close() error {
	return nil
}

func cloneRecord(r domain.ChunkRecord) domain.ChunkRecord {
	r.Authors = append([]string(nil), r.Authors...)
	if r.Embedding != nil {
		r.Embedding = append(domain.Embedding(nil), r.Embedding...)
	}
	return r
}
