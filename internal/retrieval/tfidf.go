package retrieval

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// Document is one chapter's scoring text as seen by the indexer.
type Document struct {
	ID   string
	Text string
}

// Vocabulary is the shared term space of one indexing pass.
// Term IDs follow lexical order, so ID order is also term order.
type Vocabulary struct {
	id     string
	terms  []string
	lookup map[string]int
}

// ID identifies the indexing pass that produced the vocabulary.
func (v *Vocabulary) ID() string { return v.id }

// Len returns |V|.
func (v *Vocabulary) Len() int { return len(v.terms) }

// Term returns the term for an ID.
func (v *Vocabulary) Term(id int) string { return v.terms[id] }

// Lookup returns the ID of a term.
func (v *Vocabulary) Lookup(term string) (int, bool) {
	id, ok := v.lookup[term]
	return id, ok
}

// Vector is a sparse weighted term vector sorted by term ID.
// Absent terms have weight 0.
type Vector struct {
	Terms   []int
	Weights []float64
}

// IsZero reports whether the vector has no positive weight.
func (v Vector) IsZero() bool {
	return len(v.Terms) == 0
}

// Index holds the TF-IDF vector of every chapter of a corpus.
// It is read-only after BuildIndex returns.
type Index struct {
	vocab   *Vocabulary
	ids     []string
	pos     map[string]int
	vectors []Vector
}

// BuildIndex weights the unigrams and bigrams of every document by raw
// count times smoothed inverse document frequency, ln((1+N)/(1+df))+1,
// and L2-normalises each vector. Empty or stop-word-only text yields a
// zero vector. The result does not depend on map iteration order.
func BuildIndex(docs []Document) (*Index, error) {
	idx := &Index{
		ids:     make([]string, len(docs)),
		pos:     make(map[string]int, len(docs)),
		vectors: make([]Vector, len(docs)),
	}

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		if doc.ID == "" {
			return nil, &StageError{Stage: StageIndex, Err: domain.ErrMalformedChapter}
		}
		if _, dup := idx.pos[doc.ID]; dup {
			return nil, &StageError{Stage: StageIndex, ChapterID: doc.ID, Err: domain.ErrMalformedChapter}
		}
		idx.ids[i] = doc.ID
		idx.pos[doc.ID] = i

		tf := make(map[string]int)
		for _, term := range Terms(doc.Text) {
			tf[term]++
		}
		for term := range tf {
			df[term]++
		}
		counts[i] = tf
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	idx.vocab = &Vocabulary{
		id:     uuid.NewString(),
		terms:  terms,
		lookup: make(map[string]int, len(terms)),
	}
	for id, term := range terms {
		idx.vocab.lookup[term] = id
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for id, term := range terms {
		idf[id] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	for i, tf := range counts {
		idx.vectors[i] = weigh(tf, idx.vocab, idf)
	}
	return idx, nil
}

func weigh(tf map[string]int, vocab *Vocabulary, idf []float64) Vector {
	if len(tf) == 0 {
		return Vector{}
	}
	ids := make([]int, 0, len(tf))
	for term := range tf {
		id, _ := vocab.Lookup(term)
		ids = append(ids, id)
	}
	sort.Ints(ids)

	weights := make([]float64, len(ids))
	var sumSq float64
	for i, id := range ids {
		w := float64(tf[vocab.Term(id)]) * idf[id]
		weights[i] = w
		sumSq += w * w
	}
	norm := math.Sqrt(sumSq)
	for i := range weights {
		weights[i] /= norm
	}
	return Vector{Terms: ids, Weights: weights}
}

// Vocabulary returns the shared vocabulary.
func (idx *Index) Vocabulary() *Vocabulary { return idx.vocab }

// VocabularyID identifies the indexing pass.
func (idx *Index) VocabularyID() string { return idx.vocab.id }

// ChapterIDs returns the indexed chapter IDs in input order.
func (idx *Index) ChapterIDs() []string {
	out := make([]string, len(idx.ids))
	copy(out, idx.ids)
	return out
}

// Vector returns the weighted vector of a chapter.
func (idx *Index) Vector(chapterID string) (Vector, bool) {
	i, ok := idx.pos[chapterID]
	if !ok {
		return Vector{}, false
	}
	return idx.vectors[i], true
}

// Weight returns the weight of a term in a chapter, 0 when absent.
func (idx *Index) Weight(chapterID, term string) float64 {
	vec, ok := idx.Vector(chapterID)
	if !ok {
		return 0
	}
	id, ok := idx.vocab.Lookup(term)
	if !ok {
		return 0
	}
	i := sort.SearchInts(vec.Terms, id)
	if i < len(vec.Terms) && vec.Terms[i] == id {
		return vec.Weights[i]
	}
	return 0
}
