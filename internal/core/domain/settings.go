package domain

import (
	"errors"
	"fmt"
)

const unknownDescription = "Unknown"

// GeneratorKind names a candidate generation strategy.
type GeneratorKind string

// Available candidate generators.
const (
	// GeneratorTFIDFToken recalls candidates through shared salient TF-IDF terms.
	GeneratorTFIDFToken GeneratorKind = "tfidf_token"

	// GeneratorKeyword recalls candidates through shared enrichment keywords.
	GeneratorKeyword GeneratorKind = "keyword"
)

// IsValid returns true if the generator is recognised.
func (g GeneratorKind) IsValid() bool {
	switch g {
	case GeneratorTFIDFToken, GeneratorKeyword:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (g GeneratorKind) String() string {
	return string(g)
}

// Description returns a human-readable description of the generator.
func (g GeneratorKind) Description() string {
	switch g {
	case GeneratorTFIDFToken:
		return "TF-IDF token (salient term postings)"
	case GeneratorKeyword:
		return "Keyword (enrichment keyword postings)"
	default:
		return unknownDescription
	}
}

// SimilarityKind names a pair scoring strategy.
type SimilarityKind string

// Available similarity scorers.
const (
	// SimilarityTFIDF is cosine similarity over full TF-IDF vectors.
	SimilarityTFIDF SimilarityKind = "tfidf"

	// SimilarityKeywordOverlap is the size of the keyword set intersection.
	SimilarityKeywordOverlap SimilarityKind = "keyword_overlap"
)

// IsValid returns true if the similarity is recognised.
func (s SimilarityKind) IsValid() bool {
	switch s {
	case SimilarityTFIDF, SimilarityKeywordOverlap:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s SimilarityKind) String() string {
	return string(s)
}

// Description returns a human-readable description of the similarity.
func (s SimilarityKind) Description() string {
	switch s {
	case SimilarityTFIDF:
		return "TF-IDF cosine (normalised, 0-1)"
	case SimilarityKeywordOverlap:
		return "Keyword overlap (intersection size)"
	default:
		return unknownDescription
	}
}

// EnrichmentVersion selects how a chapter's scoring text is assembled.
type EnrichmentVersion string

// Available enrichment versions.
const (
	// EnrichmentBulletsSections joins section titles and bullets.
	EnrichmentBulletsSections EnrichmentVersion = "v1_bullets+sections"

	// EnrichmentBullets uses bullets only.
	EnrichmentBullets EnrichmentVersion = "v1_bullets"
)

// IsValid returns true if the enrichment version is recognised.
func (v EnrichmentVersion) IsValid() bool {
	switch v {
	case EnrichmentBulletsSections, EnrichmentBullets:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (v EnrichmentVersion) String() string {
	return string(v)
}

// RetrievalSettings configures one pipeline construction.
type RetrievalSettings struct {
	// Generator is the candidate generator name.
	Generator GeneratorKind

	// Similarity is the scorer name.
	Similarity SimilarityKind

	// TopN is the number of salient terms kept per chapter.
	TopN int

	// MinSharedTokens is the minimum number of shared salient terms for a candidate.
	MinSharedTokens int

	// MinScore is the inclusive lower bound for keeping an edge.
	MinScore float64

	// Workers bounds per-chapter parallelism. Zero means GOMAXPROCS.
	Workers int

	// EnrichmentVersion is recorded with every run.
	EnrichmentVersion EnrichmentVersion
}

// Validate rejects settings that can never produce a run.
func (s RetrievalSettings) Validate() error {
	var errs []error
	if !s.Generator.IsValid() {
		errs = append(errs, fmt.Errorf("unknown generator %q", s.Generator))
	}
	if !s.Similarity.IsValid() {
		errs = append(errs, fmt.Errorf("unknown similarity %q", s.Similarity))
	}
	if s.TopN <= 0 {
		errs = append(errs, fmt.Errorf("top_n must be positive, got %d", s.TopN))
	}
	if s.MinSharedTokens < 1 {
		errs = append(errs, fmt.Errorf("min_shared_tokens must be at least 1, got %d", s.MinSharedTokens))
	}
	if s.MinScore < 0 || s.MinScore > 1 {
		errs = append(errs, fmt.Errorf("min_score must be within [0, 1], got %g", s.MinScore))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", s.Workers))
	}
	if s.EnrichmentVersion != "" && !s.EnrichmentVersion.IsValid() {
		errs = append(errs, fmt.Errorf("unknown enrichment version %q", s.EnrichmentVersion))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// DefaultRetrievalSettings returns the TF-IDF variant with its usual knobs.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		Generator:         GeneratorTFIDFToken,
		Similarity:        SimilarityTFIDF,
		TopN:              20,
		MinSharedTokens:   2,
		MinScore:          0.1,
		Workers:           0,
		EnrichmentVersion: EnrichmentBulletsSections,
	}
}

// StorageBackend selects the metadata store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite is an embedded database file in the data directory.
	StorageSQLite StorageBackend = "sqlite"

	// StoragePostgres is a PostgreSQL server reached through a DSN.
	StoragePostgres StorageBackend = "postgres"

	// StorageMemory keeps everything in process memory.
	StorageMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// StorageSettings holds persistence configuration.
type StorageSettings struct {
	// Backend is the store implementation.
	Backend StorageBackend

	// DataDir is where the SQLite database lives. Empty means ~/.chaptergraph/data.
	DataDir string

	// PostgresDSN is the connection string for the postgres backend.
	PostgresDSN string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Retrieval holds pipeline defaults.
	Retrieval RetrievalSettings

	// Storage holds persistence settings.
	Storage StorageSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: DefaultRetrievalSettings(),
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
	}
}

// AllGenerators returns all available candidate generators.
func AllGenerators() []GeneratorKind {
	return []GeneratorKind{
		GeneratorTFIDFToken,
		GeneratorKeyword,
	}
}

// AllSimilarities returns all available similarity scorers.
func AllSimilarities() []SimilarityKind {
	return []SimilarityKind{
		SimilarityTFIDF,
		SimilarityKeywordOverlap,
	}
}
