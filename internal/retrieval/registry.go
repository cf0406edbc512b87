package retrieval

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// GeneratorBuilder creates a candidate generator from corpus resources.
type GeneratorBuilder func(c *Corpus, s domain.RetrievalSettings) (driven.CandidateGenerator, error)

// ScorerBuilder creates a similarity scorer from corpus resources.
type ScorerBuilder func(c *Corpus, s domain.RetrievalSettings) (driven.SimilarityScorer, error)

// Registry maps generator and similarity names to their builders.
// It allows pipelines to be assembled from configuration.
type Registry struct {
	generators map[domain.GeneratorKind]GeneratorBuilder
	scorers    map[domain.SimilarityKind]ScorerBuilder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[domain.GeneratorKind]GeneratorBuilder),
		scorers:    make(map[domain.SimilarityKind]ScorerBuilder),
	}
}

// RegisterGenerator adds a generator builder.
func (r *Registry) RegisterGenerator(name domain.GeneratorKind, builder GeneratorBuilder) {
	r.generators[name] = builder
}

// RegisterScorer adds a scorer builder.
func (r *Registry) RegisterScorer(name domain.SimilarityKind, builder ScorerBuilder) {
	r.scorers[name] = builder
}

// Has returns true if both names are registered.
func (r *Registry) Has(generator domain.GeneratorKind, similarity domain.SimilarityKind) bool {
	_, okG := r.generators[generator]
	_, okS := r.scorers[similarity]
	return okG && okS
}

// Generators returns registered generator names, sorted.
func (r *Registry) Generators() []domain.GeneratorKind {
	names := make([]domain.GeneratorKind, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Build assembles a pipeline for the chapters. Settings are validated
// before the corpus is touched.
func (r *Registry) Build(chapters []domain.Chapter, s domain.RetrievalSettings) (*Pipeline, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	genBuilder, ok := r.generators[s.Generator]
	if !ok {
		return nil, fmt.Errorf("%w: generator %q", domain.ErrUnsupportedType, s.Generator)
	}
	scorerBuilder, ok := r.scorers[s.Similarity]
	if !ok {
		return nil, fmt.Errorf("%w: similarity %q", domain.ErrUnsupportedType, s.Similarity)
	}

	corpus, err := NewCorpus(chapters, s.TopN)
	if err != nil {
		return nil, err
	}
	generator, err := genBuilder(corpus, s)
	if err != nil {
		return nil, fmt.Errorf("generator %s: %w", s.Generator, err)
	}
	scorer, err := scorerBuilder(corpus, s)
	if err != nil {
		return nil, fmt.Errorf("similarity %s: %w", s.Similarity, err)
	}
	return NewPipeline(generator, scorer, s.MinScore, WithWorkers(s.Workers))
}
