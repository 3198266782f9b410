package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/papertrail/internal/core/domain"
	"github.com/custodia-labs/papertrail/internal/core/ports/driven"
)

var errMock = errors.New("mock failure")

// --- LLM ---

// mockLLMService replies with responses in order and records every call.
type mockLLMService struct {
	mu        sync.Mutex
	responses []string
	errAt     map[int]error
	calls     [][]driven.ChatMessage
	options   []driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := len(m.calls)
	m.calls = append(m.calls, messages)
	m.options = append(m.options, opts)
	if err := m.errAt[idx]; err != nil {
		return "", err
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return "", nil
}

func (m *mockLLMService) ModelName() string           { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error                 { return nil }

// --- Embedding ---

// mockEmbeddingService returns vectors[text], or a fixed vector when unset.
type mockEmbeddingService struct {
	mu      sync.Mutex
	vectors map[string]domain.Embedding
	failOn  map[string]bool
	err     error
	calls   []string
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) (domain.Embedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, text)
	if m.err != nil {
		return nil, m.err
	}
	if m.failOn[text] {
		return nil, errMock
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return domain.Embedding{0.5, 0.5}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([]domain.Embedding, error) {
	out := make([]domain.Embedding, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int              { return 2 }
func (m *mockEmbeddingService) ModelName() string            { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                 { return nil }

// --- Paper store ---

// mockPaperStore keeps records in insertion order.
type mockPaperStore struct {
	mu        sync.Mutex
	records   []domain.ChunkRecord
	inserted  int
	insertErr error
	updateErr map[string]error
	selectErr error
	neighbors []domain.Neighbor
	nnErr     error
	lastLimit int
	batchSize int
}

func (m *mockPaperStore) InsertBatch(_ context.Context, records []domain.ChunkRecord, batchSize int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted++
	m.batchSize = batchSize
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.records = append(m.records, records...)
	return len(records), nil
}

func (m *mockPaperStore) SelectMissingEmbeddings(_ context.Context) ([]domain.PendingEmbedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	var out []domain.PendingEmbedding
	for _, r := range m.records {
		if !r.HasEmbedding() {
			out = append(out, domain.PendingEmbedding{ID: r.ID, Content: r.Content})
		}
	}
	return out, nil
}

func (m *mockPaperStore) UpdateEmbedding(_ context.Context, id string, vector domain.Embedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.updateErr[id]; err != nil {
		return err
	}
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].Embedding = vector
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *mockPaperStore) NearestNeighbors(_ context.Context, _ domain.Embedding, limit int) ([]domain.Neighbor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLimit = limit
	if m.nnErr != nil {
		return nil, m.nnErr
	}
	out := append([]domain.Neighbor(nil), m.neighbors...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPaperStore) Stats(_ context.Context) (domain.StoreStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := domain.StoreStats{Records: len(m.records)}
	for _, r := range m.records {
		if !r.HasEmbedding() {
			stats.PendingEmbeddings++
		}
	}
	return stats, nil
}

func (m *mockPaperStore) Close() error { return nil }

// --- Paper source ---

type mockPaperSource struct {
	mu      sync.Mutex
	papers  map[string][]domain.PaperDescriptor
	errs    map[string]error
	queried []string
	max     int
}

func (m *mockPaperSource) Search(_ context.Context, topic string, maxResults int) ([]domain.PaperDescriptor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queried = append(m.queried, topic)
	m.max = maxResults
	if err := m.errs[topic]; err != nil {
		return nil, err
	}
	return m.papers[topic], nil
}

func (m *mockPaperSource) Name() string { return "mock" }

// --- Content ---

// mockTextSource maps document URLs to text; unknown URLs yield "".
type mockTextSource struct {
	texts map[string]string
}

func (m *mockTextSource) Extract(_ context.Context, documentURL string) string {
	return m.texts[documentURL]
}

type mockFetcher struct {
	data map[string][]byte
	err  error
}

func (m *mockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.data[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

// mockExtractor treats the document bytes as the text.
type mockExtractor struct {
	err error
}

func (m *mockExtractor) Extract(_ context.Context, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return string(data), nil
}

func (m *mockExtractor) MIMEType() string { return "text/plain" }

// --- Chunker ---

// wordChunker emits one chunk per space-separated word.
type wordChunker struct{}

func (wordChunker) Name() string { return "words" }

func (wordChunker) Chunk(text string) []domain.TextChunk {
	var out []domain.TextChunk
	for _, w := range strings.Fields(text) {
		out = append(out, domain.TextChunk{Order: len(out) + 1, Content: w})
	}
	return out
}

// --- Topics ---

type mockTopicService struct {
	topics []string
	err    error
	calls  int
}

func (m *mockTopicService) Expand(_ context.Context, _ string) ([]string, error) {
	m.calls++
	return m.topics, m.err
}

// --- Prompts ---

type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// --- Scheduler store ---

type mockSchedulerStore struct {
	mu      sync.RWMutex
	tasks   map[string]*domain.ScheduledTask
	results map[string][]domain.TaskResult
	getErr  error
	listErr error
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{
		tasks:   make(map[string]*domain.ScheduledTask),
		results: make(map[string][]domain.TaskResult),
	}
}

func (m *mockSchedulerStore) GetTask(_ context.Context, taskID string) (*domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, nil
	}
	taskCopy := *task
	return &taskCopy, nil
}

func (m *mockSchedulerStore) ListTasks(_ context.Context) ([]domain.ScheduledTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	tasks := make([]domain.ScheduledTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (m *mockSchedulerStore) SaveTask(_ context.Context, task *domain.ScheduledTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	taskCopy := *task
	m.tasks[task.ID] = &taskCopy
	return nil
}

func (m *mockSchedulerStore) RecordResult(_ context.Context, result *domain.TaskResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[result.TaskID] = append(m.results[result.TaskID], *result)
	return nil
}

func (m *mockSchedulerStore) GetTaskHistory(_ context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	results := m.results[taskID]
	if len(results) > limit {
		results = results[len(results)-limit:]
	}
	return results, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, _ int) error { return nil }

func (m *mockSchedulerStore) resultsFor(taskID string) []domain.TaskResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.TaskResult(nil), m.results[taskID]...)
}

func (m *mockSchedulerStore) task(taskID string) *domain.ScheduledTask {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.tasks[taskID]; ok {
		taskCopy := *t
		return &taskCopy
	}
	return nil
}

// --- Driving collaborators for the scheduler ---

type mockBackfillService struct {
	mu     sync.Mutex
	calls  int
	result *domain.BackfillResult
	err    error
}

func (m *mockBackfillService) Backfill(_ context.Context) (*domain.BackfillResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.result, m.err
}

func (m *mockBackfillService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockIngestService struct {
	mu      sync.Mutex
	queries []string
	errs    map[string]error
}

func (m *mockIngestService) Ingest(_ context.Context, query string) (*domain.IngestResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	if err := m.errs[query]; err != nil {
		return nil, err
	}
	return &domain.IngestResult{Records: 2}, nil
}

// --- AI validator ---

type mockAIValidator struct {
	embedErr error
	llmErr   error
}

func (m *mockAIValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error { return m.embedErr }
func (m *mockAIValidator) ValidateLLM(_ *domain.LLMSettings) error             { return m.llmErr }
