package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu    sync.RWMutex
	runs  map[string]domain.Run
	edges map[string][]domain.Edge
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs:  make(map[string]domain.Run),
		edges: make(map[string][]domain.Edge),
	}
}

// SaveRun stores a run and its edges. Existing run IDs are rejected.
func (s *RunStore) SaveRun(_ context.Context, run *domain.Run, edges []domain.Edge) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := checkEdgeKeys(edges); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; exists {
		return fmt.Errorf("%w: run %q already exists", domain.ErrInvalidInput, run.ID)
	}
	stored := *run
	stored.Config.BookIDs = append([]string(nil), run.Config.BookIDs...)
	stored.EdgeCount = len(edges)
	s.runs[run.ID] = stored
	s.edges[run.ID] = append([]domain.Edge(nil), edges...)
	return nil
}

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(_ context.Context, id string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (s *RunStore) ListRuns(_ context.Context) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Run, 0, len(s.runs))
	for _, run := range s.runs {
		result = append(result, run)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// ListEdges returns a run's edges in production order.
func (s *RunStore) ListEdges(_ context.Context, runID string) ([]domain.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	edges, ok := s.edges[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.Edge(nil), edges...), nil
}

// checkEdgeKeys enforces the (from, to) uniqueness the SQL stores get
// from their primary key.
func checkEdgeKeys(edges []domain.Edge) error {
	seen := make(map[[2]string]struct{}, len(edges))
	for _, e := range edges {
		key := [2]string{e.From, e.To}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate edge %s -> %s", domain.ErrInvalidInput, e.From, e.To)
		}
		seen[key] = struct{}{}
	}
	return nil
}
