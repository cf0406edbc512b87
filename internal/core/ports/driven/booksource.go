package driven

import (
	"context"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// BookSpec identifies one book to ingest and where its table of contents lives.
type BookSpec struct {
	// ID is the book identifier used as chapter id prefix.
	ID string

	// Title is the display title. Defaults to ID.
	Title string

	// ChaptersPath is the brief table of contents (one line per chapter).
	ChaptersPath string

	// SectionsPath is the detailed table of contents (chapters, sections, bullets).
	SectionsPath string
}

// BookSource produces structured books from their specs.
// The retrieval core treats it as an opaque data source.
type BookSource interface {
	// Load returns the book with ordered chapters, sections and bullets.
	Load(ctx context.Context, spec BookSpec) (*domain.Book, error)
}

// Enricher attaches derived features and scoring text to chapters.
type Enricher interface {
	// Enrich fills Signals.Features and Text for every chapter of the book.
	Enrich(book *domain.Book, version domain.EnrichmentVersion) error
}
