// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided to answer questions:
//
//   - EmbeddingService: Maps text to a fixed-dimension vector
//   - VectorIndex: Stores passage vectors and answers top-k queries
//   - LLMService: Chat completion for answer generation
//   - PromptStore: System and user prompt templates
//   - ConfigStore: Application configuration
//
// # Ingestion Interfaces
//
// Used only by the offline ingestion job:
//
//   - CorpusSource: Lists cleaned documents keyed by source key
//   - Normaliser: Extracts clean text from one file format
//   - PostProcessor: Turns a document into passages (chunking, truncation)
//   - Pacer: Spaces out embedding calls to respect provider limits
//
// # Optional Interfaces
//
// Adapters may implement these; callers type-assert:
//
//   - IndexProvisioner: Creates and drops the index schema
//   - SchedulerStore: Persists scheduled job state and run history
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
