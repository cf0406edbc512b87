package retrieval

import (
	"sync"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/logger"
)

// Corpus holds the resources shared by generators and scorers of one
// run. Each resource is built at most once, so every component built
// from a Corpus reads the same vocabulary.
type Corpus struct {
	chapters []domain.Chapter
	topN     int

	tfidfOnce sync.Once
	index     *Index
	salient   map[string][]string
	tokens    *TokenIndex
	tfidfErr  error

	keywordsOnce sync.Once
	keywords     map[string][]string
}

// NewCorpus validates the chapters and wraps them for lazy indexing.
func NewCorpus(chapters []domain.Chapter, topN int) (*Corpus, error) {
	if err := validateChapters(chapters); err != nil {
		return nil, err
	}
	return &Corpus{chapters: chapters, topN: topN}, nil
}

// Chapters returns the corpus chapters in input order.
func (c *Corpus) Chapters() []domain.Chapter {
	return c.chapters
}

// TFIDF returns the term-weight index, salient terms and their inverted index.
func (c *Corpus) TFIDF() (*Index, map[string][]string, *TokenIndex, error) {
	c.tfidfOnce.Do(func() {
		defer logger.Stage("index")()

		docs := make([]Document, len(c.chapters))
		for i, ch := range c.chapters {
			docs[i] = Document{ID: ch.ID, Text: ch.Text}
		}
		idx, err := BuildIndex(docs)
		if err != nil {
			c.tfidfErr = err
			return
		}
		salient, err := ExtractSalientTerms(idx, c.topN)
		if err != nil {
			c.tfidfErr = err
			return
		}
		c.index = idx
		c.salient = salient
		c.tokens = NewTokenIndex(salient)
		logger.Debug("indexed %d chapters, |V|=%d, %d salient terms",
			len(docs), idx.Vocabulary().Len(), c.tokens.Len())
	})
	return c.index, c.salient, c.tokens, c.tfidfErr
}

// Keywords returns chapter ID → enrichment keywords.
func (c *Corpus) Keywords() map[string][]string {
	c.keywordsOnce.Do(func() {
		c.keywords = make(map[string][]string, len(c.chapters))
		for _, ch := range c.chapters {
			c.keywords[ch.ID] = ch.Signals.Features.Keywords
		}
	})
	return c.keywords
}
