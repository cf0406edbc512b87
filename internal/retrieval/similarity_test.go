package retrieval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

func TestCosineScorer_SymmetricAndBounded(t *testing.T) {
	idx, err := BuildIndex([]Document{
		{ID: "a", Text: "spring boot dependency injection container"},
		{ID: "b", Text: "dependency injection container configuration spring"},
		{ID: "c", Text: "kafka streams consumer groups"},
		{ID: "d", Text: ""},
	})
	require.NoError(t, err)
	s := NewCosineScorer(idx)

	ids := idx.ChapterIDs()
	for _, x := range ids {
		for _, y := range ids {
			xy, err := s.Score(x, y)
			require.NoError(t, err)
			yx, err := s.Score(y, x)
			require.NoError(t, err)

			assert.Equal(t, xy, yx, "%s/%s", x, y)
			assert.GreaterOrEqual(t, xy, 0.0)
			assert.LessOrEqual(t, xy, 1.0)
		}
	}
}

func TestCosineScorer_SelfScoreIsOne(t *testing.T) {
	idx, err := BuildIndex([]Document{
		{ID: "a", Text: "spring boot dependency injection"},
		{ID: "b", Text: "kafka streams"},
	})
	require.NoError(t, err)

	score, err := NewCosineScorer(idx).Score("a", "a")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCosineScorer_ZeroAndDisjointVectors(t *testing.T) {
	idx, err := BuildIndex([]Document{
		{ID: "a", Text: "spring boot"},
		{ID: "b", Text: "kafka streams"},
		{ID: "empty", Text: "the of and"},
	})
	require.NoError(t, err)
	s := NewCosineScorer(idx)

	score, err := s.Score("a", "b")
	require.NoError(t, err)
	assert.Zero(t, score)

	score, err = s.Score("a", "empty")
	require.NoError(t, err)
	assert.Zero(t, score)

	score, err = s.Score("empty", "empty")
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestCosineScorer_UnknownChapter(t *testing.T) {
	idx, err := BuildIndex([]Document{{ID: "a", Text: "spring boot"}})
	require.NoError(t, err)
	s := NewCosineScorer(idx)

	_, err = s.Score("a", "missing")
	assert.True(t, errors.Is(err, domain.ErrUnknownChapter))
	_, err = s.Score("missing", "a")
	assert.True(t, errors.Is(err, domain.ErrUnknownChapter))
}

func TestCosineScorer_Identity(t *testing.T) {
	idx, err := BuildIndex([]Document{{ID: "a", Text: "spring boot"}})
	require.NoError(t, err)
	s := NewCosineScorer(idx)

	assert.Equal(t, domain.SimilarityTFIDF, s.Name())
	assert.Equal(t, domain.EdgeTypeTFIDF, s.EdgeType())
	assert.Equal(t, idx.VocabularyID(), s.VocabularyID())
}

func TestCosine_ManualVectors(t *testing.T) {
	a := Vector{Terms: []int{0, 2}, Weights: []float64{3, 4}}
	b := Vector{Terms: []int{2, 5}, Weights: []float64{1, 0}}

	assert.InDelta(t, 0.8, Cosine(a, b), 1e-12)
	assert.Equal(t, Cosine(a, b), Cosine(b, a))
	assert.Zero(t, Cosine(a, Vector{}))
}

func TestKeywordOverlapScorer(t *testing.T) {
	s := NewKeywordOverlapScorer(map[string][]string{
		"a": {"dependency", "injection"},
		"b": {"injection", "container"},
		"c": {"kafka"},
		"d": nil,
	})

	assert.Equal(t, domain.SimilarityKeywordOverlap, s.Name())
	assert.Equal(t, domain.EdgeTypeKeywordOverlap, s.EdgeType())

	tests := []struct {
		from, to string
		want     float64
	}{
		{"a", "b", 1},
		{"b", "a", 1},
		{"a", "a", 2},
		{"a", "c", 0},
		{"a", "d", 0},
	}
	for _, tt := range tests {
		got, err := s.Score(tt.from, tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s/%s", tt.from, tt.to)
	}

	_, err := s.Score("a", "missing")
	assert.True(t, errors.Is(err, domain.ErrUnknownChapter))
}
