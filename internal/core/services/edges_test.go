package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
	"github.com/custodia-labs/chaptergraph/internal/ingestion"
)

// failingRunStore rejects every write.
type failingRunStore struct {
	*memory.RunStore
}

func (f *failingRunStore) SaveRun(_ context.Context, _ *domain.Run, _ []domain.Edge) error {
	return errors.New("constraint violation")
}

type edgeFixture struct {
	books    *memory.BookStore
	runs     *memory.RunStore
	config   *memory.ConfigStore
	settings *SettingsService
	svc      *EdgeService
}

func newEdgeFixture(t *testing.T) *edgeFixture {
	t.Helper()
	t.Setenv(EnvPostgresDSN, "")
	f := &edgeFixture{
		books:  memory.NewBookStore(),
		runs:   memory.NewRunStore(),
		config: memory.NewConfigStore(),
	}
	ingestTestBooks(t, f.books)
	f.settings = NewSettingsService(f.config)
	f.svc = NewEdgeService(f.books, f.runs, f.settings, nil)
	return f
}

func floatPtr(f float64) *float64 { return &f }

func intPtr(n int) *int { return &n }

var bothBooks = []string{"spring-in-action", "spring-boot-up"}

func TestEdgeService_Compute(t *testing.T) {
	f := newEdgeFixture(t)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	run, edges, err := f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{
		BookIDs:         bothBooks,
		MinScore:        floatPtr(0),
		MinSharedTokens: intPtr(1),
	})

	require.NoError(t, err)
	require.NotNil(t, run)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, fixed, run.CreatedAt)
	assert.Equal(t, len(edges), run.EdgeCount)
	assert.Equal(t, domain.RunConfig{
		BookIDs:           bothBooks,
		EnrichmentVersion: domain.EnrichmentBulletsSections,
		Generator:         domain.GeneratorTFIDFToken,
		Similarity:        domain.SimilarityTFIDF,
		MinScore:          0,
		TopN:              20,
		MinSharedTokens:   1,
	}, run.Config)

	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.NotEqual(t, e.From, e.To)
		assert.Equal(t, domain.EdgeTypeTFIDF, e.Type)
		assert.GreaterOrEqual(t, e.Score, 0.0)
		assert.LessOrEqual(t, e.Score, 1.0)
	}

	storedRun, storedEdges, err := f.svc.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Config, storedRun.Config)
	assert.Equal(t, edges, storedEdges)
}

func TestEdgeService_Compute_UsesStoredSettings(t *testing.T) {
	f := newEdgeFixture(t)
	require.NoError(t, f.settings.Set(KeyGenerator, "keyword"))
	require.NoError(t, f.settings.Set(KeySimilarity, "keyword_overlap"))
	require.NoError(t, f.settings.Set(KeyMinScore, "1"))
	require.NoError(t, f.settings.Set(KeyMinSharedTokens, "1"))

	run, edges, err := f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{BookIDs: bothBooks})

	require.NoError(t, err)
	assert.Equal(t, domain.GeneratorKeyword, run.Config.Generator)
	assert.Equal(t, domain.SimilarityKeywordOverlap, run.Config.Similarity)
	assert.Equal(t, 1.0, run.Config.MinScore)
	for _, e := range edges {
		assert.Equal(t, domain.EdgeTypeKeywordOverlap, e.Type)
		assert.GreaterOrEqual(t, e.Score, 1.0)
	}
}

func TestEdgeService_Compute_RequestOverridesSettings(t *testing.T) {
	f := newEdgeFixture(t)
	require.NoError(t, f.settings.Set(KeyTopN, "3"))

	run, _, err := f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{
		BookIDs:         []string{"spring-in-action"},
		TopN:            intPtr(5),
		MinSharedTokens: intPtr(1),
		MinScore:        floatPtr(0.5),
		Workers:         2,
	})

	require.NoError(t, err)
	assert.Equal(t, 5, run.Config.TopN)
	assert.Equal(t, 0.5, run.Config.MinScore)
}

func TestEdgeService_Compute_RecordsBookEnrichmentVersion(t *testing.T) {
	f := newEdgeFixture(t)
	book, err := f.books.GetBook(context.Background(), "spring-in-action")
	require.NoError(t, err)
	require.NoError(t, ingestion.NewKeywordEnricher().Enrich(book, domain.EnrichmentBullets))
	require.NoError(t, f.books.SaveBook(context.Background(), book))

	settings, err := f.settings.Get()
	require.NoError(t, err)
	require.Equal(t, domain.EnrichmentBulletsSections, settings.Retrieval.EnrichmentVersion)

	run, _, err := f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{
		BookIDs: []string{"spring-in-action"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EnrichmentBullets, run.Config.EnrichmentVersion)

	run, _, err = f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{
		BookIDs:           []string{"spring-in-action"},
		EnrichmentVersion: domain.EnrichmentBullets,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EnrichmentBullets, run.Config.EnrichmentVersion)
}

func TestEdgeService_Compute_MixedEnrichmentVersions(t *testing.T) {
	f := newEdgeFixture(t)
	book, err := f.books.GetBook(context.Background(), "spring-boot-up")
	require.NoError(t, err)
	require.NoError(t, ingestion.NewKeywordEnricher().Enrich(book, domain.EnrichmentBullets))
	require.NoError(t, f.books.SaveBook(context.Background(), book))

	run, edges, err := f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{BookIDs: bothBooks})

	assert.ErrorIs(t, err, domain.ErrEnrichmentMismatch)
	assert.Nil(t, run)
	assert.Nil(t, edges)
	runs, err := f.runs.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestEdgeService_Compute_BookWithoutEnrichmentVersion(t *testing.T) {
	f := newEdgeFixture(t)
	book, err := f.books.GetBook(context.Background(), "spring-boot-up")
	require.NoError(t, err)
	book.EnrichmentVersion = ""
	require.NoError(t, f.books.SaveBook(context.Background(), book))

	_, _, err = f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{BookIDs: []string{"spring-boot-up"}})

	assert.ErrorIs(t, err, domain.ErrEnrichmentMismatch)
}

func TestEdgeService_Compute_DedupesBookIDs(t *testing.T) {
	f := newEdgeFixture(t)

	run, _, err := f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{
		BookIDs: []string{"spring-boot-up", "", "spring-boot-up"},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"spring-boot-up"}, run.Config.BookIDs)
}

func TestEdgeService_Compute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     driving.ComputeEdgesRequest
		wantErr error
	}{
		{"no books", driving.ComputeEdgesRequest{}, domain.ErrInvalidInput},
		{"unknown book", driving.ComputeEdgesRequest{BookIDs: []string{"missing"}}, domain.ErrNotFound},
		{"unknown generator", driving.ComputeEdgesRequest{BookIDs: bothBooks, Generator: "bm25"}, domain.ErrInvalidConfig},
		{"min score out of range", driving.ComputeEdgesRequest{BookIDs: bothBooks, MinScore: floatPtr(2)}, domain.ErrInvalidConfig},
		{"negative top n", driving.ComputeEdgesRequest{BookIDs: bothBooks, TopN: intPtr(-1)}, domain.ErrInvalidConfig},
		{"explicit zero top n", driving.ComputeEdgesRequest{BookIDs: bothBooks, TopN: intPtr(0)}, domain.ErrInvalidConfig},
		{"explicit zero min shared", driving.ComputeEdgesRequest{BookIDs: bothBooks, MinSharedTokens: intPtr(0)}, domain.ErrInvalidConfig},
		{"unknown enrichment", driving.ComputeEdgesRequest{BookIDs: bothBooks, EnrichmentVersion: "v9"}, domain.ErrInvalidConfig},
		{"enrichment differs from books", driving.ComputeEdgesRequest{
			BookIDs: bothBooks, EnrichmentVersion: domain.EnrichmentBullets,
		}, domain.ErrEnrichmentMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEdgeFixture(t)

			run, edges, err := f.svc.Compute(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, run)
			assert.Nil(t, edges)

			runs, err := f.runs.ListRuns(context.Background())
			require.NoError(t, err)
			assert.Empty(t, runs, "failed compute must not record a run")
		})
	}
}

func TestEdgeService_Compute_Cancelled(t *testing.T) {
	f := newEdgeFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, edges, err := f.svc.Compute(ctx, driving.ComputeEdgesRequest{BookIDs: bothBooks})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, edges)
}

func TestEdgeService_Compute_SaveError(t *testing.T) {
	f := newEdgeFixture(t)
	svc := NewEdgeService(f.books, &failingRunStore{memory.NewRunStore()}, f.settings, nil)

	run, edges, err := svc.Compute(context.Background(), driving.ComputeEdgesRequest{BookIDs: bothBooks})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save run")
	assert.Nil(t, run)
	assert.Nil(t, edges)
}

func TestEdgeService_ListRuns(t *testing.T) {
	f := newEdgeFixture(t)
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	f.svc.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}

	first, _, err := f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{BookIDs: bothBooks})
	require.NoError(t, err)
	second, _, err := f.svc.Compute(context.Background(), driving.ComputeEdgesRequest{BookIDs: bothBooks})
	require.NoError(t, err)

	runs, err := f.svc.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
}

func TestEdgeService_GetRun_Errors(t *testing.T) {
	f := newEdgeFixture(t)

	_, _, err := f.svc.GetRun(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = f.svc.GetRun(context.Background(), "no-such-run")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, uniqueIDs([]string{"b", "a", "b", "", "a"}))
	assert.Empty(t, uniqueIDs(nil))
}
