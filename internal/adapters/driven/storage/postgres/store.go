package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/storage/postgres/migrations"
	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
)

// Store is a Postgres database exposing the book and run stores through
// wrapper types.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and applies pending migrations.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx, migrations.FS); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close releases all pooled connections.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// BookStore returns a BookStore interface backed by this store.
func (s *Store) BookStore() driven.BookStore {
	return &bookStore{pool: s.pool}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{pool: s.pool}
}

func (s *Store) migrate(ctx context.Context, fsys fs.FS) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version integer PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").
		Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
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
		if _, err := s.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.pool.Exec(ctx,
			"INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT DO NOTHING", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// ==================== Book Store ====================

type bookStore struct {
	pool *pgxpool.Pool
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO books (id, title, enrichment_version, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			enrichment_version = EXCLUDED.enrichment_version
	`, book.ID, book.Title, string(book.EnrichmentVersion), book.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving book: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM chapters WHERE book_id = $1", book.ID); err != nil {
		return fmt.Errorf("clearing chapters: %w", err)
	}

	batch := &pgx.Batch{}
	for _, ch := range book.Chapters {
		batch.Queue(`
			INSERT INTO chapters (id, book_id, chapter_order, title, sections, bullets, keywords, text)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, ch.ID, book.ID, ch.Order, ch.Title, nonNil(ch.Sections), nonNil(ch.Signals.Bullets),
			nonNil(ch.Signals.Features.Keywords), ch.Text)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("saving chapters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing book: %w", err)
	}
	return nil
}

// GetBook retrieves a book and its chapters by ID.
func (s *bookStore) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var book domain.Book
	var version string
	err := s.pool.QueryRow(ctx,
		"SELECT id, title, enrichment_version, created_at FROM books WHERE id = $1", id).
		Scan(&book.ID, &book.Title, &version, &book.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning book: %w", err)
	}
	book.EnrichmentVersion = domain.EnrichmentVersion(version)

	chapters, err := s.chapters(ctx, id)
	if err != nil {
		return nil, err
	}
	book.Chapters = chapters
	return &book, nil
}

// ListBooks returns all books without chapters, ordered by ID.
func (s *bookStore) ListBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, title, enrichment_version, created_at FROM books ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	books, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Book, error) {
		var b domain.Book
		var version string
		err := row.Scan(&b.ID, &b.Title, &version, &b.CreatedAt)
		b.EnrichmentVersion = domain.EnrichmentVersion(version)
		return b, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning books: %w", err)
	}
	return books, nil
}

// ListChapters returns the chapters of the given books in book order.
func (s *bookStore) ListChapters(ctx context.Context, bookIDs []string) ([]domain.Chapter, error) {
	var all []domain.Chapter
	for _, id := range bookIDs {
		var exists bool
		if err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM books WHERE id = $1)", id).
			Scan(&exists); err != nil {
			return nil, fmt.Errorf("checking book %s: %w", id, err)
		}
		if !exists {
			return nil, fmt.Errorf("book %q: %w", id, domain.ErrNotFound)
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
	rows, err := s.pool.Query(ctx, `
		SELECT id, book_id, chapter_order, title, sections, bullets, keywords, text
		FROM chapters WHERE book_id = $1 ORDER BY chapter_order
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("querying chapters: %w", err)
	}
	chapters, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Chapter, error) {
		var ch domain.Chapter
		var sections, bullets, keywords []string
		if err := row.Scan(&ch.ID, &ch.BookID, &ch.Order, &ch.Title,
			&sections, &bullets, &keywords, &ch.Text); err != nil {
			return ch, err
		}
		ch.Sections = nilIfEmpty(sections)
		ch.Signals.Bullets = nilIfEmpty(bullets)
		ch.Signals.Features.Keywords = nilIfEmpty(keywords)
		return ch, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning chapters: %w", err)
	}
	if len(chapters) == 0 {
		return nil, nil
	}
	return chapters, nil
}

// ==================== Run Store ====================

type runStore struct {
	pool *pgxpool.Pool
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun stores a run and copies its edges in one transaction.
func (s *runStore) SaveRun(ctx context.Context, run *domain.Run, edges []domain.Edge) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	run.EdgeCount = len(edges)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cfg := run.Config
	_, err = tx.Exec(ctx, `
		INSERT INTO runs (id, book_ids, enrichment_version, candidate_generator, similarity,
			min_score, top_n, min_shared_tokens, edge_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, run.ID, nonNil(cfg.BookIDs), string(cfg.EnrichmentVersion), string(cfg.Generator),
		string(cfg.Similarity), cfg.MinScore, cfg.TopN, cfg.MinSharedTokens, run.EdgeCount, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"edges"},
		[]string{"run_id", "position", "from_chapter", "to_chapter", "score", "type"},
		pgx.CopyFromSlice(len(edges), func(i int) ([]any, error) {
			e := edges[i]
			return []any{run.ID, i, e.From, e.To, e.Score, string(e.Type)}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("saving edges: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	return nil
}

const runColumns = `id, book_ids, enrichment_version, candidate_generator, similarity,
	min_score, top_n, min_shared_tokens, edge_count, created_at`

// GetRun retrieves a run by ID.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	run, err := scanRun(s.pool.QueryRow(ctx, "SELECT "+runColumns+" FROM runs WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (s *runStore) ListRuns(ctx context.Context) ([]domain.Run, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	runs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Run, error) {
		return scanRun(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scanning runs: %w", err)
	}
	return runs, nil
}

// ListEdges returns a run's edges in production order.
func (s *runStore) ListEdges(ctx context.Context, runID string) ([]domain.Edge, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT from_chapter, to_chapter, score, type
		FROM edges WHERE run_id = $1 ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying edges: %w", err)
	}
	edges, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Edge, error) {
		var e domain.Edge
		var edgeType string
		err := row.Scan(&e.From, &e.To, &e.Score, &edgeType)
		e.Type = domain.EdgeType(edgeType)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning edges: %w", err)
	}
	if len(edges) == 0 {
		return nil, nil
	}
	return edges, nil
}

func scanRun(row pgx.Row) (domain.Run, error) {
	var run domain.Run
	var enrichment, generator, similarity string
	err := row.Scan(&run.ID, &run.Config.BookIDs, &enrichment, &generator, &similarity,
		&run.Config.MinScore, &run.Config.TopN, &run.Config.MinSharedTokens,
		&run.EdgeCount, &run.CreatedAt)
	if err != nil {
		return run, err
	}
	run.Config.EnrichmentVersion = domain.EnrichmentVersion(enrichment)
	run.Config.Generator = domain.GeneratorKind(generator)
	run.Config.Similarity = domain.SimilarityKind(similarity)
	return run, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
