package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
)

// paperStore implements driven.PaperStore.
type paperStore struct {
	store *Store
}

var _ driven.PaperStore = (*paperStore)(nil)

const insertPaper = `
	INSERT INTO papers (id, title, authors, link, published, document_url, content, chunk_order, embedding, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertBatch writes records group by group, one transaction per group.
// Empty IDs are assigned in place once their group commits; records of a
// failed group are left untouched.
func (s *paperStore) InsertBatch(ctx context.Context, records []domain.ChunkRecord, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = domain.DefaultBatchSize
	}

	committed := 0
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		group := records[start:end]

		if err := s.insertGroup(ctx, group); err != nil {
			return committed, &domain.PersistenceBatchError{
				Offset: start,
				Size:   len(group),
				Err:    err,
			}
		}
		committed += len(group)
	}
	return committed, nil
}

func (s *paperStore) insertGroup(ctx context.Context, group []domain.ChunkRecord) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertPaper)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	ids := make([]string, len(group))
	created := make([]time.Time, len(group))
	for i := range group {
		r := group[i]
		if err := r.Validate(); err != nil {
			return err
		}
		ids[i] = r.ID
		if ids[i] == "" {
			ids[i] = uuid.NewString()
		}
		created[i] = r.CreatedAt
		if created[i].IsZero() {
			created[i] = now
		}

		authors, err := json.Marshal(r.Authors)
		if err != nil {
			return fmt.Errorf("marshalling authors: %w", err)
		}

		if _, err := stmt.ExecContext(ctx,
			ids[i], r.Title, string(authors), r.Link, formatNullableTime(r.Published),
			r.DocumentURL, r.Content, r.ChunkOrder, nullableVector(r.Embedding),
			created[i].UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("inserting record %s: %w", ids[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	for i := range group {
		group[i].ID = ids[i]
		group[i].CreatedAt = created[i]
	}
	return nil
}

// SelectMissingEmbeddings returns records without an embedding, oldest first.
func (s *paperStore) SelectMissingEmbeddings(ctx context.Context) ([]domain.PendingEmbedding, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, content FROM papers
		WHERE embedding IS NULL
		ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying pending embeddings: %w", err)
	}
	defer rows.Close()

	var pending []domain.PendingEmbedding //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.PendingEmbedding
		if err := rows.Scan(&p.ID, &p.Content); err != nil {
			return nil, fmt.Errorf("scanning pending embedding: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pending embeddings: %w", err)
	}
	return pending, nil
}

// UpdateEmbedding stores the vector and the content's search vector.
func (s *paperStore) UpdateEmbedding(ctx context.Context, id string, vector domain.Embedding) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var content string
	err = tx.QueryRowContext(ctx, "SELECT content FROM papers WHERE id = ?", id).Scan(&content)
	if err == sql.ErrNoRows {
		return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("reading record: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE papers SET embedding = ?, search_vector = ? WHERE id = ?",
		float32SliceToBytes(vector), domain.SearchVector(content), id,
	); err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	return tx.Commit()
}

// NearestNeighbors ranks every embedded record by Euclidean distance.
func (s *paperStore) NearestNeighbors(ctx context.Context, vector domain.Embedding, limit int) ([]domain.Neighbor, error) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, title, authors, link, published, document_url, content, chunk_order, embedding, created_at
		FROM papers WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embedded records: %w", err)
	}
	defer rows.Close()

	neighbors := make([]domain.Neighbor, 0, limit)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		distance, err := domain.EuclideanDistance(vector, record.Embedding)
		if err != nil {
			return nil, err
		}
		neighbors = append(neighbors, domain.Neighbor{Record: *record, Distance: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedded records: %w", err)
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Distance < neighbors[j].Distance
	})
	if len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

// Stats counts records and those still awaiting an embedding.
func (s *paperStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats
	err := s.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN embedding IS NULL THEN 1 ELSE 0 END), 0)
		FROM papers
	`).Scan(&stats.Records, &stats.PendingEmbeddings)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("counting records: %w", err)
	}
	return stats, nil
}

// Close closes the shared connection.
func (s *paperStore) Close() error {
	return s.store.Close()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.ChunkRecord, error) {
	var r domain.ChunkRecord
	var authors, createdAt string
	var published sql.NullString
	var embedding []byte

	if err := row.Scan(&r.ID, &r.Title, &authors, &r.Link, &published, &r.DocumentURL,
		&r.Content, &r.ChunkOrder, &embedding, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	if err := json.Unmarshal([]byte(authors), &r.Authors); err != nil {
		return nil, fmt.Errorf("unmarshalling authors: %w", err)
	}
	r.Published = parseNullableTime(published)
	r.Embedding = bytesToFloat32Slice(embedding)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		r.CreatedAt = t
	}
	return &r, nil
}

// float32SliceToBytes encodes a vector as little-endian float32s.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// nullableVector binds an empty vector as NULL rather than an empty blob.
func nullableVector(v domain.Embedding) any {
	if len(v) == 0 {
		return nil
	}
	return float32SliceToBytes(v)
}

func bytesToFloat32Slice(data []byte) domain.Embedding {
	if len(data) == 0 {
		return nil
	}
	floats := make(domain.Embedding, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
