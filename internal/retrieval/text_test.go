package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"stop words only", "the and of to a", nil},
		{"lowercases and splits punctuation", "The Spring-Boot container, v2 and a C++ app!",
			[]string{"spring", "boot", "container", "v2", "app"}},
		{"keeps underscores", "bean_factory", []string{"bean_factory"}},
		{"drops single characters", "x y zz", []string{"zz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestTerms_UnigramsThenBigrams(t *testing.T) {
	assert.Equal(t,
		[]string{"spring", "boot", "dependency", "spring boot", "boot dependency"},
		Terms("spring boot dependency"))
}

func TestTerms_BigramsSkipStopWords(t *testing.T) {
	assert.Equal(t,
		[]string{"injection", "dependencies", "injection dependencies"},
		Terms("injection of the dependencies"))
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("system"))
	assert.False(t, IsStopWord("container"))
}
