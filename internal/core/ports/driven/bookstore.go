package driven

import (
	"context"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// BookStore persists books and their chapters.
type BookStore interface {
	// SaveBook stores or replaces a book together with its chapters.
	SaveBook(ctx context.Context, book *domain.Book) error

	// GetBook retrieves a book and its chapters by ID.
	GetBook(ctx context.Context, id string) (*domain.Book, error)

	// ListBooks returns all books without chapters, ordered by ID.
	ListBooks(ctx context.Context) ([]domain.Book, error)

	// ListChapters returns the chapters of the given books, ordered by
	// book in the order given, then by chapter order.
	// Unknown book IDs yield domain.ErrNotFound.
	ListChapters(ctx context.Context, bookIDs []string) ([]domain.Chapter, error)
}
