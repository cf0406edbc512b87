package domain

import (
	"fmt"
	"time"
)

// Book is a structured document whose chapters are linked by the pipeline.
type Book struct {
	// ID is the unique identifier for the book (e.g. "spring-in-action").
	ID string

	// Title is the human-readable title.
	Title string

	// EnrichmentVersion is how the chapters' Text was assembled at ingest.
	EnrichmentVersion EnrichmentVersion

	// Chapters are the book's chapters in reading order.
	Chapters []Chapter

	// CreatedAt is when the book was first stored.
	CreatedAt time.Time
}

// Chapter is the atomic retrievable unit of a book.
// Chapters are created once by ingestion and are read-only afterwards.
type Chapter struct {
	// ID is globally unique and stable across runs: "<book_id>::ch<order>".
	ID string

	// BookID links to the owning Book.
	BookID string

	// Order is the chapter number within the book.
	Order int

	// Title is the chapter heading.
	Title string

	// Sections are the section titles in order.
	Sections []string

	// Text is the text used for term weighting and scoring.
	// It may be empty; empty text is degenerate, not malformed.
	Text string

	// Signals carries the lexical signals extracted during ingestion.
	Signals Signals
}

// Signals holds the bullets of a chapter and the features derived from them.
type Signals struct {
	// Bullets are short lines listed under the chapter's sections.
	Bullets []string

	// Features are derived by enrichment.
	Features Features
}

// Features are enrichment outputs attached to a chapter.
type Features struct {
	// Keywords is a simple lexical keyword list used by the keyword-overlap variant.
	Keywords []string
}

// ChapterID builds the canonical chapter identifier.
func ChapterID(bookID string, order int) string {
	return fmt.Sprintf("%s::ch%d", bookID, order)
}

// Validate reports whether the chapter carries the identity fields the
// retrieval core depends on.
func (c Chapter) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: missing id (book %q, order %d)", ErrMalformedChapter, c.BookID, c.Order)
	}
	if c.BookID == "" {
		return fmt.Errorf("%w: chapter %q has no book id", ErrMalformedChapter, c.ID)
	}
	return nil
}
