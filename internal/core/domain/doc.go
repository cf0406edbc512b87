// Package domain defines the core business entities for chaptergraph.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Book: A structured document made of ordered chapters
//   - Chapter: The retrievable unit and the node type of the graph
//   - Edge: A scored, typed relationship between two chapters
//   - Run: One reproducible pipeline execution and its configuration
//   - Graph: The node/edge view of a run used for visualisation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
