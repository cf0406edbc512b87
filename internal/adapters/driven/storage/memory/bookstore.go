package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// Ensure BookStore implements the interface.
var _ driven.BookStore = (*BookStore)(nil)

// BookStore is an in-memory implementation of driven.BookStore.
type BookStore struct {
	mu    sync.RWMutex
	books map[string]domain.Book
}

// NewBookStore creates a new in-memory book store.
func NewBookStore() *BookStore {
	return &BookStore{
		books: make(map[string]domain.Book),
	}
}

// SaveBook stores or replaces a book with its chapters.
func (s *BookStore) SaveBook(_ context.Context, book *domain.Book) error {
	if book == nil || book.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *book
	if existing, ok := s.books[book.ID]; ok && stored.CreatedAt.IsZero() {
		stored.CreatedAt = existing.CreatedAt
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Chapters = copyChapters(book.Chapters)
	sort.SliceStable(stored.Chapters, func(i, j int) bool {
		return stored.Chapters[i].Order < stored.Chapters[j].Order
	})
	s.books[book.ID] = stored
	return nil
}

// GetBook retrieves a book and its chapters by ID.
func (s *BookStore) GetBook(_ context.Context, id string) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	book.Chapters = copyChapters(book.Chapters)
	return &book, nil
}

// ListBooks returns all books without chapters, ordered by ID.
func (s *BookStore) ListBooks(_ context.Context) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Book, 0, len(s.books))
	for _, book := range s.books {
		book.Chapters = nil
		result = append(result, book)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListChapters returns the chapters of the given books in book order.
func (s *BookStore) ListChapters(_ context.Context, bookIDs []string) ([]domain.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chapters []domain.Chapter
	for _, id := range bookIDs {
		book, ok := s.books[id]
		if !ok {
			return nil, fmt.Errorf("book %q: %w", id, domain.ErrNotFound)
		}
		chapters = append(chapters, copyChapters(book.Chapters)...)
	}
	return chapters, nil
}

func copyChapters(src []domain.Chapter) []domain.Chapter {
	if src == nil {
		return nil
	}
	dst := make([]domain.Chapter, len(src))
	copy(dst, src)
	return dst
}
