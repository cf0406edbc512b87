package domain

// EdgeType tags an edge with the scorer that produced it.
type EdgeType string

// Available edge types.
const (
	// EdgeTypeTFIDF is produced by cosine similarity over TF-IDF vectors.
	EdgeTypeTFIDF EdgeType = "tfidf"

	// EdgeTypeKeywordOverlap is produced by keyword set intersection size.
	EdgeTypeKeywordOverlap EdgeType = "keyword_overlap"
)

// String returns the string representation.
func (t EdgeType) String() string {
	return string(t)
}

// Edge is a scored, typed relationship between two chapters.
// Edges are immutable once produced within a run.
type Edge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Score float64  `json:"score"`
	Type  EdgeType `json:"type"`
}
