package mcp

import (
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Edges computes and lists runs.
	Edges driving.EdgeService

	// Graph reconstructs run graphs.
	Graph driving.GraphService

	// Books lists ingested books.
	Books driving.BookService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Edges == nil {
		return ErrMissingEdgeService
	}
	if p.Graph == nil {
		return ErrMissingGraphService
	}
	// Books is optional
	return nil
}
