package mcp

import (
	"context"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
)

// mockEdgeService is a mock implementation of driving.EdgeService.
type mockEdgeService struct {
	run     *domain.Run
	edges   []domain.Edge
	runs    []domain.Run
	err     error
	lastReq driving.ComputeEdgesRequest
}

func (m *mockEdgeService) Compute(
	_ context.Context, req driving.ComputeEdgesRequest,
) (*domain.Run, []domain.Edge, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.run, m.edges, nil
}

func (m *mockEdgeService) ListRuns(_ context.Context) ([]domain.Run, error) {
	return m.runs, m.err
}

func (m *mockEdgeService) GetRun(_ context.Context, _ string) (*domain.Run, []domain.Edge, error) {
	return m.run, m.edges, m.err
}

// mockGraphService is a mock implementation of driving.GraphService.
type mockGraphService struct {
	graph *domain.Graph
	err   error
}

func (m *mockGraphService) Graph(_ context.Context, _ string) (*domain.Graph, error) {
	return m.graph, m.err
}

// mockBookService is a mock implementation of driving.BookService.
type mockBookService struct {
	books []domain.Book
	err   error
}

func (m *mockBookService) Ingest(
	_ context.Context, _ []driven.BookSpec, _ domain.EnrichmentVersion,
) ([]domain.Book, error) {
	return m.books, m.err
}

func (m *mockBookService) List(_ context.Context) ([]domain.Book, error) {
	return m.books, m.err
}

func (m *mockBookService) Get(_ context.Context, _ string) (*domain.Book, error) {
	if len(m.books) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.books[0], m.err
}

func validPorts() *Ports {
	return &Ports{
		Edges: &mockEdgeService{},
		Graph: &mockGraphService{},
	}
}
