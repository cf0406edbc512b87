package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
)

// defaultEdgeLimit caps the edges returned inline by compute_edges.
const defaultEdgeLimit = 50

// ComputeEdgesInput is the input schema for the compute_edges tool.
type ComputeEdgesInput struct {
	BookIDs         []string `json:"book_ids" jsonschema:"ids of the ingested books to link"`
	Generator       string   `json:"generator,omitempty" jsonschema:"candidate generator: tfidf_token or keyword"`
	Similarity      string   `json:"similarity,omitempty" jsonschema:"similarity scorer: tfidf or keyword_overlap"`
	MinScore        *float64 `json:"min_score,omitempty" jsonschema:"inclusive lower bound for edge scores"`
	TopN            *int     `json:"top_n,omitempty" jsonschema:"salient terms kept per chapter"`
	MinSharedTokens *int     `json:"min_shared_tokens,omitempty" jsonschema:"shared salient terms required for a candidate"`
	Enrichment      string   `json:"enrichment_version,omitempty" jsonschema:"required enrichment version of the books"`
	Limit           int      `json:"limit,omitempty" jsonschema:"maximum number of edges to return (default 50)"`
}

// ComputeEdgesOutput is the output schema for the compute_edges tool.
type ComputeEdgesOutput struct {
	Run   RunOutput     `json:"run"`
	Edges []domain.Edge `json:"edges"`
	Count int           `json:"count"`
}

// RunOutput summarises a run.
type RunOutput struct {
	ID              string   `json:"id"`
	BookIDs         []string `json:"book_ids"`
	Enrichment      string   `json:"enrichment_version"`
	Generator       string   `json:"candidate_generator"`
	Similarity      string   `json:"similarity"`
	MinScore        float64  `json:"min_score"`
	TopN            int      `json:"top_n"`
	MinSharedTokens int      `json:"min_shared_tokens"`
	EdgeCount       int      `json:"edge_count"`
	CreatedAt       string   `json:"created_at"`
}

// ListRunsInput is the input schema for the list_runs tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return, newest first"`
}

// ListRunsOutput is the output schema for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunOutput `json:"runs"`
	Count int         `json:"count"`
}

// GetGraphInput is the input schema for the get_graph tool.
type GetGraphInput struct {
	RunID string `json:"run_id" jsonschema:"id of the run to visualise"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compute_edges",
		Description: "Link the chapters of ingested books and record the run",
	}, s.handleComputeEdges)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recorded edge runs, newest first",
	}, s.handleListRuns)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_graph",
		Description: "Get the book, chapter and edge graph of a run",
	}, s.handleGetGraph)
}

// handleComputeEdges handles the compute_edges tool invocation.
func (s *Server) handleComputeEdges(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ComputeEdgesInput,
) (*mcp.CallToolResult, ComputeEdgesOutput, error) {
	if len(input.BookIDs) == 0 {
		return nil, ComputeEdgesOutput{}, errors.New("book_ids is required")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultEdgeLimit
	}

	run, edges, err := s.ports.Edges.Compute(ctx, driving.ComputeEdgesRequest{
		BookIDs:           input.BookIDs,
		Generator:         domain.GeneratorKind(input.Generator),
		Similarity:        domain.SimilarityKind(input.Similarity),
		MinScore:          input.MinScore,
		TopN:              input.TopN,
		MinSharedTokens:   input.MinSharedTokens,
		EnrichmentVersion: domain.EnrichmentVersion(input.Enrichment),
	})
	if err != nil {
		return nil, ComputeEdgesOutput{}, err
	}

	output := ComputeEdgesOutput{
		Run:   toRunOutput(run),
		Edges: topEdges(edges, limit),
		Count: len(edges),
	}
	return nil, output, nil
}

// handleListRuns handles the list_runs tool invocation.
func (s *Server) handleListRuns(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRunsInput,
) (*mcp.CallToolResult, ListRunsOutput, error) {
	runs, err := s.ports.Edges.ListRuns(ctx)
	if err != nil {
		return nil, ListRunsOutput{}, err
	}
	if input.Limit > 0 && input.Limit < len(runs) {
		runs = runs[:input.Limit]
	}

	output := ListRunsOutput{
		Runs:  make([]RunOutput, len(runs)),
		Count: len(runs),
	}
	for i := range runs {
		output.Runs[i] = toRunOutput(&runs[i])
	}
	return nil, output, nil
}

// handleGetGraph handles the get_graph tool invocation.
func (s *Server) handleGetGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetGraphInput,
) (*mcp.CallToolResult, domain.Graph, error) {
	if input.RunID == "" {
		return nil, domain.Graph{}, errors.New("run_id is required")
	}
	graph, err := s.ports.Graph.Graph(ctx, input.RunID)
	if err != nil {
		return nil, domain.Graph{}, err
	}
	return nil, *graph, nil
}

func toRunOutput(run *domain.Run) RunOutput {
	return RunOutput{
		ID:              run.ID,
		BookIDs:         run.Config.BookIDs,
		Enrichment:      run.Config.EnrichmentVersion.String(),
		Generator:       run.Config.Generator.String(),
		Similarity:      run.Config.Similarity.String(),
		MinScore:        run.Config.MinScore,
		TopN:            run.Config.TopN,
		MinSharedTokens: run.Config.MinSharedTokens,
		EdgeCount:       run.EdgeCount,
		CreatedAt:       run.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// topEdges returns at most limit edges, keeping production order.
func topEdges(edges []domain.Edge, limit int) []domain.Edge {
	if edges == nil {
		return []domain.Edge{}
	}
	if len(edges) > limit {
		return edges[:limit]
	}
	return edges
}
