// Package retrieval discovers edges between chapters with a two-stage
// pipeline: an inverted index of salient TF-IDF terms narrows the pair
// space to candidates, and cosine similarity over the full vectors
// scores them.
//
//	raw text → weighted vectors → salient terms → token index
//	         → candidate pairs → scored pairs → edges ≥ min_score
//
// Every run rebuilds its indices from the corpus it is given. Components
// built through a Registry share one Corpus and therefore one vocabulary.
package retrieval
