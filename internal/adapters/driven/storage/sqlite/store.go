package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// Store is a SQLite database exposing the book and run stores through
// wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the given data directory.
// If dataDir is empty, defaults to ~/.chaptergraph/data/chaptergraph.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".chaptergraph", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "chaptergraph.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// BookStore returns a BookStore interface backed by this store.
func (s *Store) BookStore() driven.BookStore {
	return &bookStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Book Store ====================

// bookStore implements driven.BookStore.
type bookStore struct {
	store *Store
}

var _ driven.BookStore = (*bookStore)(nil)

// SaveBook stores a book and replaces its chapters in one transaction.
func (s *bookStore) SaveBook(ctx context.Context, book *domain.Book) error {
	if book == nil || book.ID == "" {
		return domain.ErrInvalidInput
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (id, title, enrichment_version, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			enrichment_version = excluded.enrichment_version
	`, book.ID, book.Title, string(book.EnrichmentVersion), book.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving book: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chapters WHERE book_id = ?", book.ID); err != nil {
		return fmt.Errorf("clearing chapters: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chapters (id, book_id, chapter_order, title, sections, bullets, keywords, text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chapter insert: %w", err)
	}
	defer stmt.Close()

	for _, ch := range book.Chapters {
		sections, bullets, keywords, err := marshalSignals(ch)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, ch.ID, book.ID, ch.Order, ch.Title,
			sections, bullets, keywords, ch.Text); err != nil {
			return fmt.Errorf("saving chapter %s: %w", ch.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing book: %w", err)
	}
	return nil
}

// GetBook retrieves a book and its chapters by ID.
func (s *bookStore) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT id, title, enrichment_version, created_at FROM books WHERE id = ?", id)

	var book domain.Book
	var version string
	var createdAt sql.NullTime
	if err := row.Scan(&book.ID, &book.Title, &version, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning book: %w", err)
	}
	book.EnrichmentVersion = domain.EnrichmentVersion(version)
	if createdAt.Valid {
		book.CreatedAt = createdAt.Time
	}

	chapters, err := s.chapters(ctx, id)
	if err != nil {
		return nil, err
	}
	book.Chapters = chapters
	return &book, nil
}

// ListBooks returns all books without chapters, ordered by ID.
func (s *bookStore) ListBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, title, enrichment_version, created_at FROM books ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book //nolint:prealloc // size unknown from query
	for rows.Next() {
		var book domain.Book
		var version string
		var createdAt sql.NullTime
		if err := rows.Scan(&book.ID, &book.Title, &version, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		book.EnrichmentVersion = domain.EnrichmentVersion(version)
		if createdAt.Valid {
			book.CreatedAt = createdAt.Time
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating books: %w", err)
	}
	return books, nil
}

// ListChapters returns the chapters of the given books in book order.
func (s *bookStore) ListChapters(ctx context.Context, bookIDs []string) ([]domain.Chapter, error) {
	var all []domain.Chapter
	for _, id := range bookIDs {
		var exists int
		err := s.store.db.QueryRowContext(ctx, "SELECT 1 FROM books WHERE id = ?", id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("book %q: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("checking book %s: %w", id, err)
		}

		chapters, err := s.chapters(ctx, id)
		if err != nil {
			return nil, err
		}
		all = append(all, chapters...)
	}
	return all, nil
}

func (s *bookStore) chapters(ctx context.Context, bookID string) ([]domain.Chapter, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, book_id, chapter_order, title, sections, bullets, keywords, text
		FROM chapters WHERE book_id = ? ORDER BY chapter_order
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("querying chapters: %w", err)
	}
	defer rows.Close()

	var chapters []domain.Chapter //nolint:prealloc // size unknown from query
	for rows.Next() {
		var ch domain.Chapter
		var sections, bullets, keywords string
		if err := rows.Scan(&ch.ID, &ch.BookID, &ch.Order, &ch.Title,
			&sections, &bullets, &keywords, &ch.Text); err != nil {
			return nil, fmt.Errorf("scanning chapter: %w", err)
		}
		if err := unmarshalSignals(&ch, sections, bullets, keywords); err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chapters: %w", err)
	}
	return chapters, nil
}

// ==================== Run Store ====================

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun stores a run and its edges in one transaction.
func (s *runStore) SaveRun(ctx context.Context, run *domain.Run, edges []domain.Edge) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.EdgeCount = len(edges)

	bookIDs, err := json.Marshal(nonNil(run.Config.BookIDs))
	if err != nil {
		return fmt.Errorf("marshalling book ids: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cfg := run.Config
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, book_ids, enrichment_version, candidate_generator, similarity,
			min_score, top_n, min_shared_tokens, edge_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, string(bookIDs), string(cfg.EnrichmentVersion), string(cfg.Generator), string(cfg.Similarity),
		cfg.MinScore, cfg.TopN, cfg.MinSharedTokens, run.EdgeCount, run.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO edges (run_id, position, from_chapter, to_chapter, score, type)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing edge insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range edges {
		if _, err := stmt.ExecContext(ctx, run.ID, i, e.From, e.To, e.Score, string(e.Type)); err != nil {
			return fmt.Errorf("saving edge %s -> %s: %w", e.From, e.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

const runColumns = `id, book_ids, enrichment_version, candidate_generator, similarity,
	min_score, top_n, min_shared_tokens, edge_count, created_at`

// GetRun retrieves a run by ID.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns all runs, newest first.
func (s *runStore) ListRuns(ctx context.Context) ([]domain.Run, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// ListEdges returns a run's edges in production order.
func (s *runStore) ListEdges(ctx context.Context, runID string) ([]domain.Edge, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT from_chapter, to_chapter, score, type
		FROM edges WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	defer rows.Close()

	var edges []domain.Edge //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.Edge
		var edgeType string
		if err := rows.Scan(&e.From, &e.To, &e.Score, &edgeType); err != nil {
			return nil, fmt.Errorf("scanning edge: %w", err)
		}
		e.Type = domain.EdgeType(edgeType)
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating edges: %w", err)
	}
	return edges, nil
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.Run, error) {
	var run domain.Run
	var bookIDs, enrichment, generator, similarity string
	var createdAt sql.NullTime
	if err := row.Scan(&run.ID, &bookIDs, &enrichment, &generator, &similarity,
		&run.Config.MinScore, &run.Config.TopN, &run.Config.MinSharedTokens,
		&run.EdgeCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	if err := json.Unmarshal([]byte(bookIDs), &run.Config.BookIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling book ids: %w", err)
	}
	run.Config.EnrichmentVersion = domain.EnrichmentVersion(enrichment)
	run.Config.Generator = domain.GeneratorKind(generator)
	run.Config.Similarity = domain.SimilarityKind(similarity)
	if createdAt.Valid {
		run.CreatedAt = createdAt.Time
	}
	return &run, nil
}

func marshalSignals(ch domain.Chapter) (sections, bullets, keywords string, err error) {
	parts := [][]string{ch.Sections, ch.Signals.Bullets, ch.Signals.Features.Keywords}
	out := make([]string, len(parts))
	for i, p := range parts {
		data, err := json.Marshal(nonNil(p))
		if err != nil {
			return "", "", "", fmt.Errorf("marshalling chapter %s: %w", ch.ID, err)
		}
		out[i] = string(data)
	}
	return out[0], out[1], out[2], nil
}

func unmarshalSignals(ch *domain.Chapter, sections, bullets, keywords string) error {
	targets := []struct {
		data string
		dst  *[]string
	}{
		{sections, &ch.Sections},
		{bullets, &ch.Signals.Bullets},
		{keywords, &ch.Signals.Features.Keywords},
	}
	for _, t := range targets {
		var vals []string
		if err := json.Unmarshal([]byte(t.data), &vals); err != nil {
			return fmt.Errorf("unmarshalling chapter %s: %w", ch.ID, err)
		}
		if len(vals) > 0 {
			*t.dst = vals
		}
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
