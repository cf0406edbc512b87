package driving

import (
	"context"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// BookService ingests and lists books.
type BookService interface {
	// Ingest loads, enriches and stores every book. A book that fails to
	// load is skipped; the others are stored and the failures are returned
	// joined together with the ingested books.
	Ingest(ctx context.Context, specs []driven.BookSpec, version domain.EnrichmentVersion) ([]domain.Book, error)

	// List returns all stored books without chapters.
	List(ctx context.Context) ([]domain.Book, error)

	// Get returns a book with its chapters.
	Get(ctx context.Context, id string) (*domain.Book, error)
}
