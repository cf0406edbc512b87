package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
	"github.com/custodia-labs/chaptergraph/internal/logger"
)

// Ensure BookService implements the interface.
var _ driving.BookService = (*BookService)(nil)

// BookService loads books from a source, enriches them and stores them.
type BookService struct {
	source   driven.BookSource
	enricher driven.Enricher
	store    driven.BookStore
}

// NewBookService creates a new book service.
func NewBookService(source driven.BookSource, enricher driven.Enricher, store driven.BookStore) *BookService {
	return &BookService{
		source:   source,
		enricher: enricher,
		store:    store,
	}
}

// Ingest loads, enriches and stores each book. Malformed books are
// skipped and reported together; any other failure stops ingestion.
func (s *BookService) Ingest(
	ctx context.Context, specs []driven.BookSpec, version domain.EnrichmentVersion,
) ([]domain.Book, error) {
	logger.Section("Ingest")
	defer logger.Stage("ingest")()

	var books []domain.Book
	var skipped []error
	for _, spec := range specs {
		book, err := s.source.Load(ctx, spec)
		if err != nil {
			if errors.Is(err, domain.ErrMalformedBook) {
				logger.Warn("skipping book %q: %v", spec.ID, err)
				skipped = append(skipped, err)
				continue
			}
			return books, fmt.Errorf("load book %q: %w", spec.ID, err)
		}

		if err := s.enricher.Enrich(book, version); err != nil {
			return books, fmt.Errorf("enrich book %q: %w", book.ID, err)
		}
		if err := s.store.SaveBook(ctx, book); err != nil {
			return books, fmt.Errorf("save book %q: %w", book.ID, err)
		}

		logger.Debug("ingested %s: %d chapters", book.ID, len(book.Chapters))
		books = append(books, *book)
	}

	return books, errors.Join(skipped...)
}

// List returns all stored books without chapters.
func (s *BookService) List(ctx context.Context) ([]domain.Book, error) {
	return s.store.ListBooks(ctx)
}

// Get returns a book with its chapters.
func (s *BookService) Get(ctx context.Context, id string) (*domain.Book, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.store.GetBook(ctx, id)
}
