package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
	"github.com/custodia-labs/chaptergraph/internal/logger"
	"github.com/custodia-labs/chaptergraph/internal/retrieval"
)

// Ensure EdgeService implements the interface.
var _ driving.EdgeService = (*EdgeService)(nil)

// EdgeService assembles a retrieval pipeline per request, runs it over
// stored chapters and records the run.
type EdgeService struct {
	books    driven.BookStore
	runs     driven.RunStore
	settings driving.SettingsService
	registry *retrieval.Registry
	now      func() time.Time
}

// NewEdgeService creates a new edge service. A nil registry means the
// built-in variants.
func NewEdgeService(
	books driven.BookStore, runs driven.RunStore, settings driving.SettingsService, registry *retrieval.Registry,
) *EdgeService {
	if registry == nil {
		registry = retrieval.DefaultRegistry()
	}
	return &EdgeService{
		books:    books,
		runs:     runs,
		settings: settings,
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Compute runs the pipeline over the requested books and stores the run.
// Settings are validated before any chapter is read.
func (s *EdgeService) Compute(ctx context.Context, req driving.ComputeEdgesRequest) (*domain.Run, []domain.Edge, error) {
	logger.Section("Compute Edges")

	bookIDs := uniqueIDs(req.BookIDs)
	if len(bookIDs) == 0 {
		return nil, nil, fmt.Errorf("%w: at least one book id is required", domain.ErrInvalidInput)
	}

	rs, err := s.resolve(req)
	if err != nil {
		return nil, nil, err
	}
	if err := rs.Validate(); err != nil {
		return nil, nil, err
	}
	logger.Debug("books=%v generator=%s similarity=%s top_n=%d min_shared=%d min_score=%g",
		bookIDs, rs.Generator, rs.Similarity, rs.TopN, rs.MinSharedTokens, rs.MinScore)

	version, err := s.enrichmentVersion(ctx, bookIDs, req.EnrichmentVersion)
	if err != nil {
		return nil, nil, err
	}

	chapters, err := s.books.ListChapters(ctx, bookIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load chapters: %w", err)
	}

	pipeline, err := s.registry.Build(chapters, rs)
	if err != nil {
		return nil, nil, err
	}
	edges, err := pipeline.Run(ctx, chapters)
	if err != nil {
		return nil, nil, err
	}

	run := &domain.Run{
		ID: uuid.NewString(),
		Config: domain.RunConfig{
			BookIDs:           bookIDs,
			EnrichmentVersion: version,
			Generator:         rs.Generator,
			Similarity:        rs.Similarity,
			MinScore:          rs.MinScore,
			TopN:              rs.TopN,
			MinSharedTokens:   rs.MinSharedTokens,
		},
		EdgeCount: len(edges),
		CreatedAt: s.now(),
	}
	if err := s.runs.SaveRun(ctx, run, edges); err != nil {
		return nil, nil, fmt.Errorf("save run: %w", err)
	}

	logger.Info("run %s: %d chapters, %d edges", run.ID, len(chapters), len(edges))
	return run, edges, nil
}

// ListRuns returns all runs, newest first.
func (s *EdgeService) ListRuns(ctx context.Context) ([]domain.Run, error) {
	return s.runs.ListRuns(ctx)
}

// GetRun returns a run and its edges.
func (s *EdgeService) GetRun(ctx context.Context, runID string) (*domain.Run, []domain.Edge, error) {
	if runID == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	edges, err := s.runs.ListEdges(ctx, runID)
	if err != nil {
		return nil, nil, err
	}
	return run, edges, nil
}

// resolve overlays the request on the configured retrieval settings.
func (s *EdgeService) resolve(req driving.ComputeEdgesRequest) (domain.RetrievalSettings, error) {
	settings, err := s.settings.Get()
	if err != nil {
		return domain.RetrievalSettings{}, fmt.Errorf("load settings: %w", err)
	}
	rs := settings.Retrieval

	if req.Generator != "" {
		rs.Generator = req.Generator
	}
	if req.Similarity != "" {
		rs.Similarity = req.Similarity
	}
	if req.MinScore != nil {
		rs.MinScore = *req.MinScore
	}
	if req.TopN != nil {
		rs.TopN = *req.TopN
	}
	if req.MinSharedTokens != nil {
		rs.MinSharedTokens = *req.MinSharedTokens
	}
	if req.Workers != 0 {
		rs.Workers = req.Workers
	}
	return rs, nil
}

// enrichmentVersion returns the version shared by every requested book.
// Books enriched differently, or differently from want, cannot share a run.
func (s *EdgeService) enrichmentVersion(
	ctx context.Context, bookIDs []string, want domain.EnrichmentVersion,
) (domain.EnrichmentVersion, error) {
	if want != "" && !want.IsValid() {
		return "", fmt.Errorf("%w: unknown enrichment version %q", domain.ErrInvalidConfig, want)
	}

	stored, err := s.books.ListBooks(ctx)
	if err != nil {
		return "", fmt.Errorf("load books: %w", err)
	}
	versions := make(map[string]domain.EnrichmentVersion, len(stored))
	for _, b := range stored {
		versions[b.ID] = b.EnrichmentVersion
	}

	var version domain.EnrichmentVersion
	for _, id := range bookIDs {
		v, ok := versions[id]
		if !ok {
			return "", fmt.Errorf("book %q: %w", id, domain.ErrNotFound)
		}
		if !v.IsValid() {
			return "", fmt.Errorf("%w: book %q has no recorded enrichment version", domain.ErrEnrichmentMismatch, id)
		}
		if version == "" {
			version = v
			continue
		}
		if v != version {
			return "", fmt.Errorf("%w: book %q uses %s, book %q uses %s",
				domain.ErrEnrichmentMismatch, bookIDs[0], version, id, v)
		}
	}
	if want != "" && want != version {
		return "", fmt.Errorf("%w: books were enriched with %s, run requested %s",
			domain.ErrEnrichmentMismatch, version, want)
	}
	return version, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
