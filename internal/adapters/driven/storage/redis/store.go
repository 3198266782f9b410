// Package redis stores chunk records in Redis hashes and answers
// nearest-neighbour queries through a RediSearch HNSW vector index.
package redis

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
)

// Ensure PaperStore implements the interface.
var _ driven.PaperStore = (*PaperStore)(nil)

// Hash field names.
const (
	fieldTitle        = "title"
	fieldAuthors      = "authors"
	fieldLink         = "link"
	fieldPublished    = "published"
	fieldDocumentURL  = "document_url"
	fieldContent      = "content"
	fieldChunkOrder   = "chunk_order"
	fieldEmbedding    = "embedding"
	fieldSearchVector = "search_vector"
	fieldCreatedAt    = "created_at"
	fieldScore        = "score"
)

// HNSW build parameters.
const (
	efConstruction = 200
	hnswM          = 16
)

// Config holds Redis connection and index settings.
type Config struct {
	Addr     string
	Password string
	DB       int

	// Index is the RediSearch index name and key namespace (default: papertrail).
	Index string

	// Dimensions creates the index up front when positive. Otherwise the
	// index is created on the first embedding update.
	Dimensions int
}

// PaperStore implements driven.PaperStore on Redis Stack.
type PaperStore struct {
	client *goredis.Client
	index  string

	mu   sync.Mutex
	dims int
}

// NewPaperStore connects to Redis and prepares the vector index.
func NewPaperStore(ctx context.Context, cfg Config) (*PaperStore, error) {
	if cfg.Index == "" {
		cfg.Index = "papertrail"
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		// FT.SEARCH replies are parsed in their RESP2 array form.
		Protocol: 2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	s := &PaperStore{client: client, index: cfg.Index}

	dims, err := client.Get(ctx, s.dimsKey()).Int()
	switch {
	case err == nil:
		s.dims = dims
	case !errors.Is(err, goredis.Nil):
		client.Close()
		return nil, fmt.Errorf("reading index dimensions: %w", err)
	}

	if s.dims == 0 && cfg.Dimensions > 0 {
		if err := s.ensureIndex(ctx, cfg.Dimensions); err != nil {
			client.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *PaperStore) docKey(id string) string { return s.index + ":doc:" + id }
func (s *PaperStore) recordsKey() string      { return s.index + ":records" }
func (s *PaperStore) pendingKey() string      { return s.index + ":pending" }
func (s *PaperStore) dimsKey() string         { return s.index + ":dims" }

// ensureIndex creates the vector index for dims-length vectors once.
// A different length afterwards is a dimension mismatch.
func (s *PaperStore) ensureIndex(ctx context.Context, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dims != 0 {
		if s.dims != dims {
			return fmt.Errorf("%w: index has %d, got %d", domain.ErrDimensionMismatch, s.dims, dims)
		}
		return nil
	}

	if _, err := s.client.Do(ctx, "FT.INFO", s.index).Result(); err != nil {
		if _, err := s.client.Do(ctx, createIndexArgs(s.index, s.index+":doc:", dims)...).Result(); err != nil {
			return fmt.Errorf("creating vector index: %w", err)
		}
	}
	if err := s.client.Set(ctx, s.dimsKey(), dims, 0).Err(); err != nil {
		return fmt.Errorf("saving index dimensions: %w", err)
	}
	s.dims = dims
	return nil
}

func createIndexArgs(index, prefix string, dims int) []any {
	return []any{
		"FT.CREATE", index,
		"ON", "HASH",
		"PREFIX", "1", prefix,
		"SCHEMA",
		fieldEmbedding, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(dims),
		"DISTANCE_METRIC", "L2",
		"EF_CONSTRUCTION", strconv.Itoa(efConstruction),
		"M", strconv.Itoa(hnswM),
		fieldTitle, "TEXT",
		fieldSearchVector, "TEXT",
		fieldChunkOrder, "NUMERIC",
	}
}

// InsertBatch writes each group in one MULTI/EXEC transaction. Embedded
// records must match the index dimension. Empty IDs are assigned in place
// once their group commits.
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
	for i := range group {
		if err := group[i].Validate(); err != nil {
			return err
		}
		if group[i].HasEmbedding() {
			// Vectors the index cannot hold would be stored but never found.
			if err := s.ensureIndex(ctx, len(group[i].Embedding)); err != nil {
				return err
			}
		}
	}

	now := time.Now().UTC()
	staged := make([]domain.ChunkRecord, len(group))
	for i, r := range group {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		staged[i] = r
	}

	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, r := range staged {
			fields, err := recordFields(r)
			if err != nil {
				return err
			}
			score := float64(r.CreatedAt.UnixNano())
			pipe.HSet(ctx, s.docKey(r.ID), fields...)
			pipe.ZAdd(ctx, s.recordsKey(), goredis.Z{Score: score, Member: r.ID})
			if !r.HasEmbedding() {
				pipe.ZAdd(ctx, s.pendingKey(), goredis.Z{Score: score, Member: r.ID})
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("writing group: %w", err)
	}

	for i := range group {
		group[i].ID = staged[i].ID
		group[i].CreatedAt = staged[i].CreatedAt
	}
	return nil
}

// SelectMissingEmbeddings returns pending records, oldest first.
func (s *PaperStore) SelectMissingEmbeddings(ctx context.Context) ([]domain.PendingEmbedding, error) {
	ids, err := s.client.ZRange(ctx, s.pendingKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing pending records: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*goredis.StringCmd, len(ids))
	_, err = s.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGet(ctx, s.docKey(id), fieldContent)
		}
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("reading pending content: %w", err)
	}

	pending := make([]domain.PendingEmbedding, 0, len(ids))
	for i, id := range ids {
		content, err := cmds[i].Result()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %s: %w", id, err)
		}
		pending = append(pending, domain.PendingEmbedding{ID: id, Content: content})
	}
	return pending, nil
}

// UpdateEmbedding stores the vector, refreshes the search vector and clears
// the record from the pending set.
func (s *PaperStore) UpdateEmbedding(ctx context.Context, id string, vector domain.Embedding) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	content, err := s.client.HGet(ctx, s.docKey(id), fieldContent).Result()
	if errors.Is(err, goredis.Nil) {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading record: %w", err)
	}

	if err := s.ensureIndex(ctx, len(vector)); err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, s.docKey(id),
			fieldEmbedding, encodeVector(vector),
			fieldSearchVector, domain.SearchVector(content),
		)
		pipe.ZRem(ctx, s.pendingKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	return nil
}

// NearestNeighbors runs a KNN query against the vector index.
func (s *PaperStore) NearestNeighbors(ctx context.Context, vector domain.Embedding, limit int) ([]domain.Neighbor, error) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	s.mu.Lock()
	dims := s.dims
	s.mu.Unlock()

	if dims == 0 {
		// No embedding has been stored yet.
		return []domain.Neighbor{}, nil
	}
	if len(vector) != dims {
		return nil, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(vector), dims)
	}

	reply, err := s.client.Do(ctx, knnArgs(s.index, vector, limit)...).Slice()
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return parseSearchReply(reply, len(s.index+":doc:"))
}

func knnArgs(index string, vector domain.Embedding, limit int) []any {
	return []any{
		"FT.SEARCH", index,
		fmt.Sprintf("*=>[KNN %d @%s $vec AS %s]", limit, fieldEmbedding, fieldScore),
		"PARAMS", "2", "vec", encodeVector(vector),
		"SORTBY", fieldScore, "ASC",
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	}
}

// Stats counts records and pending embeddings.
func (s *PaperStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	var records, pending *goredis.IntCmd
	_, err := s.client.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		records = pipe.ZCard(ctx, s.recordsKey())
		pending = pipe.ZCard(ctx, s.pendingKey())
		return nil
	})
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("counting records: %w", err)
	}
	return domain.StoreStats{
		Records:           int(records.Val()),
		PendingEmbeddings: int(pending.Val()),
	}, nil
}

// Close closes the Redis client.
func (s *PaperStore) Close() error {
	return s.client.Close()
}

// recordFields flattens a record into HSET field/value pairs.
func recordFields(r domain.ChunkRecord) ([]any, error) {
	authors, err := json.Marshal(r.Authors)
	if err != nil {
		return nil, fmt.Errorf("marshalling authors: %w", err)
	}

	fields := []any{
		fieldTitle, r.Title,
		fieldAuthors, string(authors),
		fieldLink, r.Link,
		fieldDocumentURL, r.DocumentURL,
		fieldContent, r.Content,
		fieldChunkOrder, r.ChunkOrder,
		fieldCreatedAt, r.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !r.Published.IsZero() {
		fields = append(fields, fieldPublished, r.Published.UTC().Format(time.RFC3339))
	}
	if r.HasEmbedding() {
		fields = append(fields,
			fieldEmbedding, encodeVector(r.Embedding),
			fieldSearchVector, domain.SearchVector(r.Content),
		)
	}
	return fields, nil
}

// recordFromFields rebuilds a record from hash fields.
func recordFromFields(id string, fields map[string]string) (domain.ChunkRecord, error) {
	r := domain.ChunkRecord{
		ID:          id,
		Title:       fields[fieldTitle],
		Link:        fields[fieldLink],
		DocumentURL: fields[fieldDocumentURL],
		Content:     fields[fieldContent],
	}

	if v := fields[fieldAuthors]; v != "" {
		if err := json.Unmarshal([]byte(v), &r.Authors); err != nil {
			return r, fmt.Errorf("record %s: authors: %w", id, err)
		}
	}
	if v := fields[fieldChunkOrder]; v != "" {
		order, err := strconv.Atoi(v)
		if err != nil {
			return r, fmt.Errorf("record %s: chunk order: %w", id, err)
		}
		r.ChunkOrder = order
	}
	if v := fields[fieldPublished]; v != "" {
		r.Published, _ = time.Parse(time.RFC3339, v)
	}
	if v := fields[fieldCreatedAt]; v != "" {
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, v)
	}
	if v := fields[fieldEmbedding]; v != "" {
		r.Embedding = decodeVector([]byte(v))
	}
	return r, nil
}

// parseSearchReply decodes an FT.SEARCH RESP2 reply: a total count followed
// by alternating document keys and field/value arrays. RediSearch reports
// squared L2 distance as the score.
func parseSearchReply(reply []any, prefixLen int) ([]domain.Neighbor, error) {
	if len(reply) == 0 {
		return []domain.Neighbor{}, nil
	}

	neighbors := make([]domain.Neighbor, 0, (len(reply)-1)/2)
	for i := 1; i+1 < len(reply); i += 2 {
		key, ok := reply[i].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected document key type %T", reply[i])
		}
		raw, ok := reply[i+1].([]any)
		if !ok {
			return nil, fmt.Errorf("unexpected fields type %T", reply[i+1])
		}

		fields := make(map[string]string, len(raw)/2)
		for j := 0; j+1 < len(raw); j += 2 {
			name, _ := raw[j].(string)
			value, _ := raw[j+1].(string)
			fields[name] = value
		}

		id := key
		if len(key) >= prefixLen {
			id = key[prefixLen:]
		}
		record, err := recordFromFields(id, fields)
		if err != nil {
			return nil, err
		}

		score, err := strconv.ParseFloat(fields[fieldScore], 64)
		if err != nil {
			return nil, fmt.Errorf("record %s: score: %w", id, err)
		}
		neighbors = append(neighbors, domain.Neighbor{
			Record:   record,
			Distance: math.Sqrt(math.Max(score, 0)),
		})
	}
	return neighbors, nil
}

// encodeVector packs a vector as little-endian float32s, the layout
// RediSearch expects for FLOAT32 vector fields.
func encodeVector(v domain.Embedding) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) domain.Embedding {
	if len(data) < 4 {
		return nil
	}
	v := make(domain.Embedding, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
