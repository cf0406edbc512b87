package driven

import "github.com/custodia-labs/chaptergraph/internal/core/domain"

// CandidateGenerator bounds the search space before scoring.
// Implementations are read-only after construction and safe for
// concurrent use.
type CandidateGenerator interface {
	// Name returns the generator identifier recorded with runs.
	Name() domain.GeneratorKind

	// Generate returns candidate chapter IDs for the source, sorted
	// ascending and never containing the source itself.
	Generate(sourceID string) ([]string, error)
}

// SimilarityScorer assigns a comparable score to a chapter pair.
// Implementations are read-only after construction and safe for
// concurrent use.
type SimilarityScorer interface {
	// Name returns the scorer identifier recorded with runs.
	Name() domain.SimilarityKind

	// EdgeType returns the type tag of edges produced from this scorer.
	EdgeType() domain.EdgeType

	// Score returns the similarity of two chapters. Must be symmetric.
	Score(sourceID, targetID string) (float64, error)
}

// VocabularyBound is implemented by generators and scorers that read a
// term-weight index. Two components may only be combined when their
// vocabulary IDs match.
type VocabularyBound interface {
	VocabularyID() string
}
