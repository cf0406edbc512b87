package retrieval

import (
	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// RegisterDefaults registers the built-in generators and scorers.
//
//   - tfidf_token / tfidf: salient-term recall, cosine precision
//   - keyword / keyword_overlap: keyword recall, intersection count
func RegisterDefaults(r *Registry) {
	r.RegisterGenerator(domain.GeneratorTFIDFToken, buildTokenGenerator)
	r.RegisterGenerator(domain.GeneratorKeyword, buildKeywordGenerator)
	r.RegisterScorer(domain.SimilarityTFIDF, buildCosineScorer)
	r.RegisterScorer(domain.SimilarityKeywordOverlap, buildKeywordOverlapScorer)
}

// DefaultRegistry returns a registry with the built-in variants.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

func buildTokenGenerator(c *Corpus, s domain.RetrievalSettings) (driven.CandidateGenerator, error) {
	idx, salient, tokens, err := c.TFIDF()
	if err != nil {
		return nil, err
	}
	return NewTokenCandidateGenerator(idx, salient, tokens, s.MinSharedTokens)
}

func buildKeywordGenerator(c *Corpus, _ domain.RetrievalSettings) (driven.CandidateGenerator, error) {
	return NewKeywordCandidateGenerator(c.Keywords()), nil
}

func buildCosineScorer(c *Corpus, _ domain.RetrievalSettings) (driven.SimilarityScorer, error) {
	idx, _, _, err := c.TFIDF()
	if err != nil {
		return nil, err
	}
	return NewCosineScorer(idx), nil
}

func buildKeywordOverlapScorer(c *Corpus, _ domain.RetrievalSettings) (driven.SimilarityScorer, error) {
	return NewKeywordOverlapScorer(c.Keywords()), nil
}
