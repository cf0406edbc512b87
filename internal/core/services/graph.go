package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
	"github.com/custodia-labs/chaptergraph/internal/logger"
)

// Ensure GraphService implements the interface.
var _ driving.GraphService = (*GraphService)(nil)

// GraphService rebuilds the book/chapter graph of a stored run.
type GraphService struct {
	books driven.BookStore
	runs  driven.RunStore
}

// NewGraphService creates a new graph service.
func NewGraphService(books driven.BookStore, runs driven.RunStore) *GraphService {
	return &GraphService{
		books: books,
		runs:  runs,
	}
}

// Graph returns a node per book and chapter of the run and its edges.
// Edges whose endpoints are not chapter nodes are dropped.
func (s *GraphService) Graph(ctx context.Context, runID string) (*domain.Graph, error) {
	if runID == "" {
		return nil, domain.ErrInvalidInput
	}
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	edges, err := s.runs.ListEdges(ctx, runID)
	if err != nil {
		return nil, err
	}

	graph := &domain.Graph{
		RunID: run.ID,
		Nodes: []domain.GraphNode{},
		Edges: make([]domain.GraphEdge, 0, len(edges)),
	}
	chapters := make(map[string]struct{})

	for _, bookID := range run.Config.BookIDs {
		book, err := s.books.GetBook(ctx, bookID)
		if errors.Is(err, domain.ErrNotFound) {
			logger.Warn("run %s references missing book %q", run.ID, bookID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load book %q: %w", bookID, err)
		}

		graph.Nodes = append(graph.Nodes, domain.GraphNode{
			ID:    book.ID,
			Type:  domain.NodeTypeBook,
			Label: labelOr(book.Title, book.ID),
		})
		for _, ch := range book.Chapters {
			graph.Nodes = append(graph.Nodes, domain.GraphNode{
				ID:     ch.ID,
				Type:   domain.NodeTypeChapter,
				Label:  labelOr(ch.Title, ch.ID),
				BookID: ch.BookID,
			})
			chapters[ch.ID] = struct{}{}
		}
	}

	dropped := 0
	for _, e := range edges {
		_, okFrom := chapters[e.From]
		_, okTo := chapters[e.To]
		if !okFrom || !okTo {
			dropped++
			continue
		}
		graph.Edges = append(graph.Edges, domain.GraphEdge{
			Source: e.From,
			Target: e.To,
			Score:  e.Score,
			Type:   e.Type,
		})
	}
	if dropped > 0 {
		logger.Warn("run %s: dropped %d edges with unknown endpoints", run.ID, dropped)
	}

	return graph, nil
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}
