package domain

import "errors"

// Sentinel errors for the retrieval core. Collaborator failures are wrapped
// with enough context (which text or chunk) for the caller to retry upstream.
var (
	// ErrInvalidConfiguration indicates bad chunking or retrieval parameters.
	// Rejected at the API boundary before any work begins.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotReady indicates the operation requires an ingested document.
	ErrNotReady = errors.New("no document ingested")

	// ErrEmptyQuery indicates a blank query.
	ErrEmptyQuery = errors.New("empty query")

	// ErrEmbeddingFailure indicates the embedding collaborator errored.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrGenerationFailure indicates the generation collaborator errored.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrIndexCorruption indicates an internal invariant violation between
	// the index and the active document. Fatal; surfaced, never masked.
	ErrIndexCorruption = errors.New("index corruption")
)
