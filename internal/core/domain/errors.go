package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown generator or similarity name.
	ErrUnsupportedType = errors.New("unsupported type")

	// Retrieval Errors.

	// ErrInvalidConfig indicates retrieval settings that can never produce a run.
	// Returned at construction time, before any corpus is processed.
	ErrInvalidConfig = errors.New("invalid retrieval configuration")

	// ErrMalformedChapter indicates a chapter record missing its identity.
	ErrMalformedChapter = errors.New("malformed chapter")

	// ErrUnknownChapter indicates a chapter id that was not part of the indexed corpus.
	ErrUnknownChapter = errors.New("unknown chapter")

	// ErrEnrichmentMismatch indicates books whose chapter text was built
	// with different enrichment versions than a run requires.
	ErrEnrichmentMismatch = errors.New("enrichment version mismatch")

	// ErrVocabularyMismatch indicates a generator and scorer built from different indexing passes.
	ErrVocabularyMismatch = errors.New("vocabulary mismatch")

	// Ingestion Errors.

	// ErrMalformedBook indicates a book manifest entry that cannot be loaded.
	ErrMalformedBook = errors.New("malformed book")
)
