// Package domain defines the core business entities for ragdocs.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A named source text keyed by a stable source key
//   - Passage: The atomic retrievable unit produced by chunking
//   - Query: A transient question with a result bound
//   - RetrievedPassage: A passage ranked by the vector index
//   - Answer: A generated answer with the sources it was grounded on
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
