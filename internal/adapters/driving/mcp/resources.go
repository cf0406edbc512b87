package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for chaptergraph resources.
	uriScheme = "chaptergraph://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "runs",
		Name:        "runs",
		Description: "All recorded edge runs, newest first",
		MIMEType:    "application/json",
	}, s.handleRunsResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "books",
		Name:        "books",
		Description: "All ingested books",
		MIMEType:    "application/json",
	}, s.handleBooksResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}/graph",
		Name:        "run-graph",
		Description: "Book, chapter and edge graph of a run",
		MIMEType:    "application/json",
	}, s.handleGraphResource)
}

// handleRunsResource returns a list of all runs.
func (s *Server) handleRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	runs, err := s.ports.Edges.ListRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]RunOutput, len(runs))
	for i := range runs {
		infos[i] = toRunOutput(&runs[i])
	}
	return jsonResult(req.Params.URI, infos)
}

// handleBooksResource returns a list of all books.
func (s *Server) handleBooksResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Books == nil {
		return jsonResult(req.Params.URI, []struct{}{})
	}

	books, err := s.ports.Books.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}

	type bookInfo struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	infos := make([]bookInfo, len(books))
	for i := range books {
		infos[i] = bookInfo{ID: books[i].ID, Title: books[i].Title}
	}
	return jsonResult(req.Params.URI, infos)
}

// handleGraphResource returns the graph of a specific run.
func (s *Server) handleGraphResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract runId from URI: chaptergraph://runs/{runId}/graph
	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	graph, err := s.ports.Graph.Graph(ctx, runID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	return jsonResult(req.Params.URI, graph)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like chaptergraph://runs/{runId}/graph.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"
	const suffix = "/graph"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
