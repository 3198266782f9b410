// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the ingestion and retrieval flows:
//
//   - PaperSource: Queries the literature source (arXiv) for a topic
//   - DocumentFetcher: Downloads a paper's full-text binary
//   - TextExtractor: Turns a downloaded binary into plain text
//   - PaperStore: Chunk record persistence and nearest-neighbour search
//   - LLMService: Chat completions used by topic expansion
//   - EmbeddingService: Generates vector embeddings
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - PromptStore: User-editable prompts. Without it, built-in prompts are used.
//   - SchedulerStore: Persisted task state. Without it, the scheduler is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
