package driving

import (
	"context"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// GraphService reconstructs the visualisation graph of a run.
type GraphService interface {
	// Graph returns the books, chapters and edges of the run.
	Graph(ctx context.Context, runID string) (*domain.Graph, error)
}
