package ingestion

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// Ensure KeywordEnricher implements the interface.
var _ driven.Enricher = (*KeywordEnricher)(nil)

// keywordStopWords are dropped from bullet keywords.
var keywordStopWords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "a": {},
}

// minKeywordLen is the shortest word kept as a keyword, in runes.
const minKeywordLen = 5

// KeywordEnricher derives bullet keywords and the scoring text of chapters.
type KeywordEnricher struct{}

// NewKeywordEnricher creates a new keyword enricher.
func NewKeywordEnricher() *KeywordEnricher {
	return &KeywordEnricher{}
}

// Enrich sets Signals.Features.Keywords and Text on every chapter and
// records the version on the book. An empty version means the default,
// sections then bullets.
func (e *KeywordEnricher) Enrich(book *domain.Book, version domain.EnrichmentVersion) error {
	if book == nil {
		return domain.ErrInvalidInput
	}
	if version == "" {
		version = domain.EnrichmentBulletsSections
	}
	if !version.IsValid() {
		return fmt.Errorf("%w: unknown enrichment version %q", domain.ErrInvalidConfig, version)
	}

	book.EnrichmentVersion = version
	for i := range book.Chapters {
		ch := &book.Chapters[i]
		ch.Signals.Features.Keywords = ExtractKeywords(strings.Join(ch.Signals.Bullets, " "))
		ch.Text = chapterText(ch, version)
	}
	return nil
}

// ExtractKeywords returns the lowercase whitespace-separated words of text
// that are longer than four characters and not stop words. Order and
// repeats are kept.
func ExtractKeywords(text string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if _, stop := keywordStopWords[w]; stop {
			continue
		}
		if utf8.RuneCountInString(w) < minKeywordLen {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

func chapterText(ch *domain.Chapter, version domain.EnrichmentVersion) string {
	var parts []string
	if version == domain.EnrichmentBulletsSections {
		parts = append(parts, ch.Sections...)
	}
	parts = append(parts, ch.Signals.Bullets...)
	return strings.Join(parts, "\n")
}
