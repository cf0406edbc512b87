package retrieval

import (
	"fmt"
	"math"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

var (
	_ driven.SimilarityScorer = (*CosineScorer)(nil)
	_ driven.SimilarityScorer = (*KeywordOverlapScorer)(nil)
)

// CosineScorer scores pairs by cosine similarity of their full TF-IDF
// vectors. It only scores chapters of its own index.
type CosineScorer struct {
	index *Index
}

// NewCosineScorer creates a scorer bound to one index.
func NewCosineScorer(index *Index) *CosineScorer {
	return &CosineScorer{index: index}
}

// Name returns the scorer identifier.
func (s *CosineScorer) Name() domain.SimilarityKind {
	return domain.SimilarityTFIDF
}

// EdgeType returns the tag of edges scored by cosine similarity.
func (s *CosineScorer) EdgeType() domain.EdgeType {
	return domain.EdgeTypeTFIDF
}

// VocabularyID returns the indexing pass the scorer reads.
func (s *CosineScorer) VocabularyID() string {
	return s.index.VocabularyID()
}

// Score returns the cosine in [0, 1]; 0 when either vector is zero.
func (s *CosineScorer) Score(sourceID, targetID string) (float64, error) {
	a, ok := s.index.Vector(sourceID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownChapter, sourceID)
	}
	b, ok := s.index.Vector(targetID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownChapter, targetID)
	}
	return Cosine(a, b), nil
}

// Cosine computes the cosine similarity of two sparse vectors from the
// same vocabulary. The result is symmetric in its arguments.
func Cosine(a, b Vector) float64 {
	if a.IsZero() || b.IsZero() {
		return 0
	}

	var dot float64
	i, j := 0, 0
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] == b.Terms[j]:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		case a.Terms[i] < b.Terms[j]:
			i++
		default:
			j++
		}
	}
	if dot == 0 {
		return 0
	}

	score := dot / math.Sqrt(sumSquares(a.Weights)*sumSquares(b.Weights))
	return math.Max(0, math.Min(1, score))
}

func sumSquares(ws []float64) float64 {
	var s float64
	for _, w := range ws {
		s += w * w
	}
	return s
}

// KeywordOverlapScorer scores pairs by the size of their keyword set
// intersection. Scores are counts, not normalised.
type KeywordOverlapScorer struct {
	sets map[string]map[string]struct{}
}

// NewKeywordOverlapScorer creates a scorer over chapter keywords.
func NewKeywordOverlapScorer(keywords map[string][]string) *KeywordOverlapScorer {
	sets := make(map[string]map[string]struct{}, len(keywords))
	for id, kws := range keywords {
		sets[id] = toSet(kws...)
	}
	return &KeywordOverlapScorer{sets: sets}
}

// Name returns the scorer identifier.
func (s *KeywordOverlapScorer) Name() domain.SimilarityKind {
	return domain.SimilarityKeywordOverlap
}

// EdgeType returns the tag of edges scored by keyword overlap.
func (s *KeywordOverlapScorer) EdgeType() domain.EdgeType {
	return domain.EdgeTypeKeywordOverlap
}

// Score returns |keywords(source) ∩ keywords(target)|.
func (s *KeywordOverlapScorer) Score(sourceID, targetID string) (float64, error) {
	a, ok := s.sets[sourceID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownChapter, sourceID)
	}
	b, ok := s.sets[targetID]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownChapter, targetID)
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for kw := range a {
		if _, ok := b[kw]; ok {
			n++
		}
	}
	return float64(n), nil
}
