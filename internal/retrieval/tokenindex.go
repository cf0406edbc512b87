package retrieval

import "sort"

// TokenIndex is an inverted index from term to the chapters holding it.
// It is a pure lookup structure and read-only after construction.
type TokenIndex struct {
	postings map[string][]string
}

// NewTokenIndex builds the inverted index of a chapter → terms mapping
// in a single pass. Postings are sorted ascending.
func NewTokenIndex(terms map[string][]string) *TokenIndex {
	ids := make([]string, 0, len(terms))
	for id := range terms {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	postings := make(map[string][]string)
	for _, id := range ids {
		seen := make(map[string]struct{}, len(terms[id]))
		for _, term := range terms[id] {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			postings[term] = append(postings[term], id)
		}
	}
	return &TokenIndex{postings: postings}
}

// Postings returns the chapters whose term set contains term.
// The returned slice must not be modified.
func (t *TokenIndex) Postings(term string) []string {
	return t.postings[term]
}

// Len returns the number of distinct terms.
func (t *TokenIndex) Len() int {
	return len(t.postings)
}
