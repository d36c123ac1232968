// Package sqlite stores passages and scheduler state in a local SQLite file.
//
// It uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database holds:
//
//   - passages: per-index passage rows with little-endian float32 embeddings,
//     searched by exact cosine similarity over a full scan
//   - vector_indexes: the dimension each index was created for
//   - scheduled_jobs and job_runs: scheduler state and re-index history
//
// # Schema
//
// The schema is managed by numbered migrations embedded from migrations/.
// Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.ragdocs/data/ragdocs.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. The store relies on SQLite's
// WAL mode with a busy timeout for locking.
package sqlite
