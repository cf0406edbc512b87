package driving

import (
	"context"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// ComputeEdgesRequest selects the corpus and pipeline variant for a run.
// Empty strings and nil pointers fall back to the configured retrieval
// settings; explicit values, zero included, are validated as given.
type ComputeEdgesRequest struct {
	BookIDs    []string
	Generator  domain.GeneratorKind
	Similarity domain.SimilarityKind

	// EnrichmentVersion, when set, must match the version the books
	// were ingested with. The run always records the books' version.
	EnrichmentVersion domain.EnrichmentVersion

	MinScore        *float64
	TopN            *int
	MinSharedTokens *int
	Workers         int
}

// EdgeService runs the retrieval pipeline and records runs.
type EdgeService interface {
	// Compute runs the pipeline over the requested books and persists the
	// run with its edges. Either the full edge list is stored or nothing is.
	Compute(ctx context.Context, req ComputeEdgesRequest) (*domain.Run, []domain.Edge, error)

	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]domain.Run, error)

	// GetRun returns a run and its edges.
	GetRun(ctx context.Context, runID string) (*domain.Run, []domain.Edge, error)
}
