package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chaptergraph/internal/core/domain"
)

// failingConfigStore rejects every write.
type failingConfigStore struct {
	*memory.ConfigStore
}

func (f *failingConfigStore) Set(_ string, _ any) error {
	return errors.New("disk full")
}

func TestSettingsService_Get_Defaults(t *testing.T) {
	t.Setenv(EnvPostgresDSN, "")
	svc := NewSettingsService(memory.NewConfigStore())

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_StoredValues(t *testing.T) {
	t.Setenv(EnvPostgresDSN, "")
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(KeyGenerator, "keyword"))
	require.NoError(t, store.Set(KeySimilarity, "keyword_overlap"))
	require.NoError(t, store.Set(KeyTopN, int64(12)))
	require.NoError(t, store.Set(KeyMinSharedTokens, 1))
	require.NoError(t, store.Set(KeyMinScore, 0.0))
	require.NoError(t, store.Set(KeyWorkers, 3))
	require.NoError(t, store.Set(KeyEnrichmentVersion, "v1_bullets"))
	require.NoError(t, store.Set(KeyStorageBackend, "memory"))
	require.NoError(t, store.Set(KeyStorageDataDir, "/tmp/cg"))

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, domain.RetrievalSettings{
		Generator:         domain.GeneratorKeyword,
		Similarity:        domain.SimilarityKeywordOverlap,
		TopN:              12,
		MinSharedTokens:   1,
		MinScore:          0,
		Workers:           3,
		EnrichmentVersion: domain.EnrichmentBullets,
	}, settings.Retrieval)
	assert.Equal(t, domain.StorageMemory, settings.Storage.Backend)
	assert.Equal(t, "/tmp/cg", settings.Storage.DataDir)
}

func TestSettingsService_Get_InvalidValuesFallBack(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(KeyGenerator, "bm25"))
	require.NoError(t, store.Set(KeySimilarity, "jaccard"))
	require.NoError(t, store.Set(KeyEnrichmentVersion, "v9"))
	require.NoError(t, store.Set(KeyStorageBackend, "redis"))

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Retrieval.Generator, settings.Retrieval.Generator)
	assert.Equal(t, defaults.Retrieval.Similarity, settings.Retrieval.Similarity)
	assert.Equal(t, defaults.Retrieval.EnrichmentVersion, settings.Retrieval.EnrichmentVersion)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
}

func TestSettingsService_Get_EnvOverridesDSN(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set(KeyPostgresDSN, "postgres://file"))
	t.Setenv(EnvPostgresDSN, "postgres://env")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, "postgres://env", settings.Storage.PostgresDSN)
}

func TestSettingsService_Save(t *testing.T) {
	t.Setenv(EnvPostgresDSN, "")
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)

	want := domain.DefaultAppSettings()
	want.Retrieval.TopN = 8
	want.Retrieval.MinScore = 0.25
	want.Storage.Backend = domain.StoragePostgres
	want.Storage.PostgresDSN = "postgres://localhost/cg"

	require.NoError(t, svc.Save(&want))

	got, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, want, *got)
	assert.Equal(t, 8, store.GetInt(KeyTopN))
}

func TestSettingsService_Save_Invalid(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)

	assert.ErrorIs(t, svc.Save(nil), domain.ErrInvalidInput)

	bad := domain.DefaultAppSettings()
	bad.Retrieval.TopN = 0
	assert.ErrorIs(t, svc.Save(&bad), domain.ErrInvalidConfig)

	bad = domain.DefaultAppSettings()
	bad.Storage.Backend = "redis"
	assert.ErrorIs(t, svc.Save(&bad), domain.ErrInvalidConfig)

	_, exists := store.Get(KeyTopN)
	assert.False(t, exists, "invalid settings must not be persisted")
}

func TestSettingsService_Save_StoreError(t *testing.T) {
	svc := NewSettingsService(&failingConfigStore{memory.NewConfigStore()})
	settings := domain.DefaultAppSettings()

	err := svc.Save(&settings)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save "+KeyGenerator)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{KeyGenerator, "keyword", "keyword"},
		{KeySimilarity, "keyword_overlap", "keyword_overlap"},
		{KeyTopN, "5", 5},
		{KeyMinSharedTokens, "3", 3},
		{KeyWorkers, "0", 0},
		{KeyMinScore, "0.4", 0.4},
		{KeyEnrichmentVersion, "v1_bullets", "v1_bullets"},
		{KeyStorageBackend, "memory", "memory"},
		{KeyStorageDataDir, "/data", "/data"},
		{KeyPostgresDSN, "postgres://x", "postgres://x"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := memory.NewConfigStore()
			svc := NewSettingsService(store)

			require.NoError(t, svc.Set(tt.key, tt.value))

			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSettingsService_Set_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"unknown key", "retrieval.colour", "blue", domain.ErrInvalidInput},
		{"non-integer top_n", KeyTopN, "many", domain.ErrInvalidInput},
		{"non-number min_score", KeyMinScore, "high", domain.ErrInvalidInput},
		{"zero top_n", KeyTopN, "0", domain.ErrInvalidConfig},
		{"min_score above one", KeyMinScore, "1.5", domain.ErrInvalidConfig},
		{"unknown generator", KeyGenerator, "bm25", domain.ErrInvalidConfig},
		{"unknown backend", KeyStorageBackend, "redis", domain.ErrInvalidConfig},
		{"negative workers", KeyWorkers, "-1", domain.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			svc := NewSettingsService(store)

			err := svc.Set(tt.key, tt.value)

			assert.ErrorIs(t, err, tt.wantErr)
			_, exists := store.Get(tt.key)
			assert.False(t, exists)
		})
	}
}

func TestSettingsService_GetDefaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())
	assert.Equal(t, domain.DefaultAppSettings(), svc.GetDefaults())
}
