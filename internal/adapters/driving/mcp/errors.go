// Package mcp provides an MCP (Model Context Protocol) server adapter for chaptergraph.
// It lets AI assistants compute chapter edges and read run graphs.
package mcp

import "errors"

// ErrMissingEdgeService is returned when the edge service is not provided.
var ErrMissingEdgeService = errors.New("mcp: edge service is required")

// ErrMissingGraphService is returned when the graph service is not provided.
var ErrMissingGraphService = errors.New("mcp: graph service is required")
