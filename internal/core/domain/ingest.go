package domain

// Pipeline defaults.
const (
	// DefaultBatchSize is the number of records inserted per group.
	DefaultBatchSize = 500

	// DefaultMaxChunkLength is the maximum chunk length in bytes.
	DefaultMaxChunkLength = 20000

	// DefaultMaxResults is the number of papers fetched per topic.
	DefaultMaxResults = 5

	// DefaultIngestConcurrency bounds how many topics are processed at once.
	DefaultIngestConcurrency = 3

	// MaxTopics caps the topics derived from one query, whatever the model returns.
	MaxTopics = 3
)

// IngestOptions tunes the ingestion pipeline.
type IngestOptions struct {
	// MaxResults is the number of papers fetched per topic.
	MaxResults int

	// BatchSize is the number of records per insert group.
	BatchSize int

	// Concurrency bounds parallel topic processing.
	Concurrency int
}

// WithDefaults returns a copy with zero fields replaced by defaults.
func (o IngestOptions) WithDefaults() IngestOptions {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultIngestConcurrency
	}
	return o
}

// IngestResult summarises one ingestion run.
type IngestResult struct {
	// Topics are the topics derived from the query.
	Topics []string `json:"topics"`

	// Papers lists every paper returned by the literature source, in topic order.
	Papers []PaperDescriptor `json:"papers"`

	// SkippedPapers counts papers whose content came back empty.
	SkippedPapers int `json:"skipped_papers"`

	// Records is the number of chunk records written.
	Records int `json:"records"`
}

// BackfillResult summarises one backfill pass.
type BackfillResult struct {
	// Candidates is the number of records found without an embedding.
	Candidates int `json:"candidates"`

	// Updated is the number of records embedded and saved.
	Updated int `json:"updated"`

	// Failed is the number of records that could not be embedded or saved.
	Failed int `json:"failed"`
}
