package retrieval

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// DefaultTopN is the default number of salient terms per chapter.
const DefaultTopN = 20

// ExtractSalientTerms returns, per chapter, up to topN terms with strictly
// positive weight ordered by descending weight, ties broken by term.
// Chapters with a zero vector map to an empty slice.
func ExtractSalientTerms(idx *Index, topN int) (map[string][]string, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", domain.ErrInvalidConfig, topN)
	}

	salient := make(map[string][]string, len(idx.ids))
	for i, id := range idx.ids {
		salient[id] = topTerms(idx.vectors[i], idx.vocab, topN)
	}
	return salient, nil
}

func topTerms(vec Vector, vocab *Vocabulary, topN int) []string {
	order := make([]int, 0, len(vec.Terms))
	for i, w := range vec.Weights {
		if w > 0 {
			order = append(order, i)
		}
	}
	// Term IDs are lexical, so the ID tie-break is the term tie-break.
	sort.Slice(order, func(a, b int) bool {
		wa, wb := vec.Weights[order[a]], vec.Weights[order[b]]
		if wa != wb {
			return wa > wb
		}
		return vec.Terms[order[a]] < vec.Terms[order[b]]
	})
	if len(order) > topN {
		order = order[:topN]
	}

	terms := make([]string, len(order))
	for i, o := range order {
		terms[i] = vocab.Term(vec.Terms[o])
	}
	return terms
}
