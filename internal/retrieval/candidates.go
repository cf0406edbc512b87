package retrieval

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// DefaultMinSharedTokens is the default recall/precision knob.
const DefaultMinSharedTokens = 2

var (
	_ driven.CandidateGenerator = (*TokenCandidateGenerator)(nil)
	_ driven.CandidateGenerator = (*KeywordCandidateGenerator)(nil)
)

// TokenCandidateGenerator recalls chapters sharing salient TF-IDF terms.
//
// The shared-term count is evaluated from the source's own salient set.
// Callers must not assume the candidate relation is symmetric.
type TokenCandidateGenerator struct {
	salient         map[string][]string
	index           *TokenIndex
	minSharedTokens int
	vocabularyID    string
}

// NewTokenCandidateGenerator creates a generator over the salient terms
// extracted from index and their inverted index. Every chapter in salient
// must belong to index.
func NewTokenCandidateGenerator(
	index *Index, salient map[string][]string, tokens *TokenIndex, minSharedTokens int,
) (*TokenCandidateGenerator, error) {
	if minSharedTokens < 1 {
		return nil, fmt.Errorf("%w: min_shared_tokens must be at least 1, got %d",
			domain.ErrInvalidConfig, minSharedTokens)
	}
	if index == nil || salient == nil || tokens == nil {
		return nil, fmt.Errorf("%w: index, salient terms and token index are required", domain.ErrInvalidConfig)
	}
	for id := range salient {
		if _, ok := index.Vector(id); !ok {
			return nil, fmt.Errorf("%w: salient terms for %q are not from index %s",
				domain.ErrVocabularyMismatch, id, index.VocabularyID())
		}
	}
	return &TokenCandidateGenerator{
		salient:         salient,
		index:           tokens,
		minSharedTokens: minSharedTokens,
		vocabularyID:    index.VocabularyID(),
	}, nil
}

// Name returns the generator identifier.
func (g *TokenCandidateGenerator) Name() domain.GeneratorKind {
	return domain.GeneratorTFIDFToken
}

// VocabularyID returns the indexing pass the salient terms came from.
func (g *TokenCandidateGenerator) VocabularyID() string {
	return g.vocabularyID
}

// Generate returns chapters sharing at least minSharedTokens salient terms
// with the source. A source without salient terms has no candidates.
func (g *TokenCandidateGenerator) Generate(sourceID string) ([]string, error) {
	terms, ok := g.salient[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownChapter, sourceID)
	}

	shared := make(map[string]int)
	for _, term := range terms {
		for _, id := range g.index.Postings(term) {
			if id != sourceID {
				shared[id]++
			}
		}
	}

	candidates := make([]string, 0, len(shared))
	for id, n := range shared {
		if n >= g.minSharedTokens {
			candidates = append(candidates, id)
		}
	}
	sort.Strings(candidates)
	return candidates, nil
}

// KeywordCandidateGenerator recalls chapters sharing any enrichment keyword.
type KeywordCandidateGenerator struct {
	keywords map[string][]string
	index    *TokenIndex
}

// NewKeywordCandidateGenerator creates a generator over chapter keywords.
func NewKeywordCandidateGenerator(keywords map[string][]string) *KeywordCandidateGenerator {
	return &KeywordCandidateGenerator{
		keywords: keywords,
		index:    NewTokenIndex(keywords),
	}
}

// Name returns the generator identifier.
func (g *KeywordCandidateGenerator) Name() domain.GeneratorKind {
	return domain.GeneratorKeyword
}

// Generate returns the union of the source keywords' postings minus the source.
func (g *KeywordCandidateGenerator) Generate(sourceID string) ([]string, error) {
	keywords, ok := g.keywords[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownChapter, sourceID)
	}

	union := make(map[string]struct{})
	for _, kw := range keywords {
		for _, id := range g.index.Postings(kw) {
			if id != sourceID {
				union[id] = struct{}{}
			}
		}
	}

	candidates := make([]string, 0, len(union))
	for id := range union {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)
	return candidates, nil
}
