// Package sqlite provides the SQLite implementation of the paper store and
// the scheduler store.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Both stores share one database connection:
//
//   - PaperStore: chunk records, embeddings and nearest-neighbour search
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files; applied
// versions are recorded in schema_migrations.
//
// # Vectors
//
// Embeddings are stored as little-endian float32 blobs. SQLite has no vector
// index, so nearest-neighbour queries scan embedded rows and rank them by
// Euclidean distance in Go.
//
// # Data Location
//
// By default, the database is stored at ~/.papertrail/data/papers.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The database runs in WAL mode.
package sqlite
