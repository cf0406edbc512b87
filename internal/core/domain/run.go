package domain

import "time"

// RunConfig is the configuration a run was produced with.
// Together with the corpus it makes a run reproducible.
type RunConfig struct {
	BookIDs           []string          `json:"book_ids"`
	EnrichmentVersion EnrichmentVersion `json:"enrichment_version"`
	Generator         GeneratorKind     `json:"candidate_generator"`
	Similarity        SimilarityKind    `json:"similarity"`
	MinScore          float64           `json:"min_score"`
	TopN              int               `json:"top_n"`
	MinSharedTokens   int               `json:"min_shared_tokens"`
}

// Run groups one pipeline execution's edges under one identifier.
type Run struct {
	// ID is the unique identifier for the run.
	ID string `json:"id"`

	// Config is the configuration used.
	Config RunConfig `json:"config"`

	// EdgeCount is the number of edges the run produced.
	EdgeCount int `json:"edge_count"`

	// CreatedAt is when the run completed.
	CreatedAt time.Time `json:"created_at"`
}
