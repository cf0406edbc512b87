package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/ingestion/toc"
)

// Ensure FileSource implements the interface.
var _ driven.BookSource = (*FileSource)(nil)

// FileSource loads books from table-of-contents files on disk.
type FileSource struct{}

// NewFileSource creates a new file source.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Load parses the brief and detailed files of one book.
// Any problem with the entry is reported as domain.ErrMalformedBook.
func (s *FileSource) Load(ctx context.Context, spec driven.BookSpec) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateSpec(spec); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedBook, err)
	}

	brief, err := os.Open(spec.ChaptersPath)
	if err != nil {
		return nil, fmt.Errorf("%w: book %q: %w", domain.ErrMalformedBook, spec.ID, err)
	}
	defer brief.Close()

	detailed, err := os.Open(spec.SectionsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: book %q: %w", domain.ErrMalformedBook, spec.ID, err)
	}
	defer detailed.Close()

	chapters, err := toc.Parse(brief, detailed, spec.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: book %q: %w", domain.ErrMalformedBook, spec.ID, err)
	}
	if len(chapters) == 0 {
		return nil, fmt.Errorf("%w: book %q has no chapters", domain.ErrMalformedBook, spec.ID)
	}

	title := spec.Title
	if title == "" {
		title = spec.ID
	}
	return &domain.Book{
		ID:       spec.ID,
		Title:    title,
		Chapters: chapters,
	}, nil
}

func validateSpec(spec driven.BookSpec) error {
	var errs []error
	if spec.ID == "" {
		errs = append(errs, errors.New("book_id is required"))
	}
	if spec.ChaptersPath == "" {
		errs = append(errs, fmt.Errorf("book %q: chapters_path is required", spec.ID))
	}
	if spec.SectionsPath == "" {
		errs = append(errs, fmt.Errorf("book %q: sections_path is required", spec.ID))
	}
	return errors.Join(errs...)
}
