package driven

import (
	"context"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// RunStore persists pipeline runs and the edges they produced.
// Edges are always tagged with their run ID so that runs over
// overlapping books never collide.
type RunStore interface {
	// SaveRun stores a run and all of its edges atomically.
	SaveRun(ctx context.Context, run *domain.Run, edges []domain.Edge) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*domain.Run, error)

	// ListRuns returns all runs, newest first.
	ListRuns(ctx context.Context) ([]domain.Run, error)

	// ListEdges returns a run's edges in the order they were produced.
	ListEdges(ctx context.Context, runID string) ([]domain.Edge, error)
}
