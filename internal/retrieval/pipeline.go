package retrieval

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/logger"
)

// DefaultMinScore is the default inclusive lower bound for edges.
const DefaultMinScore = 0.1

// Stage names a step of the retrieval pipeline in errors.
type Stage string

// Pipeline stages.
const (
	StageValidate   Stage = "validate"
	StageIndex      Stage = "index"
	StageCandidates Stage = "candidates"
	StageScoring    Stage = "scoring"
)

// StageError carries the chapter, book and stage a run failed at.
type StageError struct {
	Stage     Stage
	BookID    string
	ChapterID string
	Err       error
}

func (e *StageError) Error() string {
	switch {
	case e.ChapterID != "" && e.BookID != "":
		return fmt.Sprintf("retrieval %s: chapter %q (book %q): %v", e.Stage, e.ChapterID, e.BookID, e.Err)
	case e.ChapterID != "":
		return fmt.Sprintf("retrieval %s: chapter %q: %v", e.Stage, e.ChapterID, e.Err)
	default:
		return fmt.Sprintf("retrieval %s: %v", e.Stage, e.Err)
	}
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline orchestrates candidate generation, scoring and threshold
// filtering over a corpus. A Pipeline is immutable and safe to reuse.
type Pipeline struct {
	generator driven.CandidateGenerator
	scorer    driven.SimilarityScorer
	minScore  float64
	workers   int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds per-chapter parallelism. Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// NewPipeline validates its configuration before any corpus is seen.
func NewPipeline(
	generator driven.CandidateGenerator, scorer driven.SimilarityScorer, minScore float64, opts ...Option,
) (*Pipeline, error) {
	if generator == nil || scorer == nil {
		return nil, fmt.Errorf("%w: generator and scorer are required", domain.ErrInvalidConfig)
	}
	if minScore < 0 || minScore > 1 {
		return nil, fmt.Errorf("%w: min_score must be within [0, 1], got %g", domain.ErrInvalidConfig, minScore)
	}
	if err := sameVocabulary(generator, scorer); err != nil {
		return nil, err
	}

	p := &Pipeline{
		generator: generator,
		scorer:    scorer,
		minScore:  minScore,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = runtime.GOMAXPROCS(0)
	}
	return p, nil
}

func sameVocabulary(generator driven.CandidateGenerator, scorer driven.SimilarityScorer) error {
	g, ok := generator.(driven.VocabularyBound)
	if !ok {
		return nil
	}
	s, ok := scorer.(driven.VocabularyBound)
	if !ok {
		return nil
	}
	if g.VocabularyID() == "" || s.VocabularyID() == "" {
		return fmt.Errorf("%w: generator %s and scorer %s must both report a vocabulary",
			domain.ErrVocabularyMismatch, generator.Name(), scorer.Name())
	}
	if g.VocabularyID() != s.VocabularyID() {
		return fmt.Errorf("%w: generator %s and scorer %s were built from different indexing passes",
			domain.ErrVocabularyMismatch, generator.Name(), scorer.Name())
	}
	return nil
}

// Generator returns the candidate generator.
func (p *Pipeline) Generator() driven.CandidateGenerator { return p.generator }

// Scorer returns the similarity scorer.
func (p *Pipeline) Scorer() driven.SimilarityScorer { return p.scorer }

// MinScore returns the inclusive edge threshold.
func (p *Pipeline) MinScore() float64 { return p.minScore }

// Run produces the edges of the corpus. Edges are emitted in chapter
// order, then in ascending candidate order, whatever the worker count.
// Malformed chapters fail the run before any work starts; on error no
// edges are returned.
func (p *Pipeline) Run(ctx context.Context, chapters []domain.Chapter) ([]domain.Edge, error) {
	defer logger.Stage("pipeline")()

	if err := validateChapters(chapters); err != nil {
		return nil, err
	}

	results := make([][]domain.Edge, len(chapters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range chapters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			edges, err := p.edgesFor(chapters[i])
			if err != nil {
				return err
			}
			results[i] = edges
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	edges := make([]domain.Edge, 0, total)
	for _, r := range results {
		edges = append(edges, r...)
	}

	logger.Debug("pipeline %s/%s: %d chapters, %d edges (min_score=%g)",
		p.generator.Name(), p.scorer.Name(), len(chapters), len(edges), p.minScore)
	return edges, nil
}

func (p *Pipeline) edgesFor(ch domain.Chapter) ([]domain.Edge, error) {
	candidates, err := p.generator.Generate(ch.ID)
	if err != nil {
		return nil, &StageError{Stage: StageCandidates, BookID: ch.BookID, ChapterID: ch.ID, Err: err}
	}

	var edges []domain.Edge
	for _, target := range candidates {
		score, err := p.scorer.Score(ch.ID, target)
		if err != nil {
			return nil, &StageError{Stage: StageScoring, BookID: ch.BookID, ChapterID: ch.ID, Err: err}
		}
		if score >= p.minScore {
			edges = append(edges, domain.Edge{
				From:  ch.ID,
				To:    target,
				Score: score,
				Type:  p.scorer.EdgeType(),
			})
		}
	}
	return edges, nil
}

func validateChapters(chapters []domain.Chapter) error {
	seen := make(map[string]struct{}, len(chapters))
	for _, ch := range chapters {
		if err := ch.Validate(); err != nil {
			return &StageError{Stage: StageValidate, BookID: ch.BookID, ChapterID: ch.ID, Err: err}
		}
		if _, dup := seen[ch.ID]; dup {
			return &StageError{
				Stage: StageValidate, BookID: ch.BookID, ChapterID: ch.ID,
				Err: errors.Join(domain.ErrMalformedChapter, errors.New("duplicate chapter id")),
			}
		}
		seen[ch.ID] = struct{}{}
	}
	return nil
}
