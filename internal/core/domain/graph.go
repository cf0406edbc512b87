package domain

// NodeType distinguishes book nodes from chapter nodes.
type NodeType string

// Available node types.
const (
	NodeTypeBook    NodeType = "book"
	NodeTypeChapter NodeType = "chapter"
)

// GraphNode is a book or chapter in a run's graph.
type GraphNode struct {
	ID     string   `json:"id"`
	Type   NodeType `json:"type"`
	Label  string   `json:"label"`
	BookID string   `json:"book_id,omitempty"`
}

// GraphEdge is an edge in the shape visualisation clients expect.
type GraphEdge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Score  float64  `json:"score"`
	Type   EdgeType `json:"type"`
}

// Graph is the full node/edge view reconstructed from a run.
type Graph struct {
	RunID string      `json:"run_id"`
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
