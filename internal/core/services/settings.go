package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	KeyGenerator         = "retrieval.generator"
	KeySimilarity        = "retrieval.similarity"
	KeyTopN              = "retrieval.top_n"
	KeyMinSharedTokens   = "retrieval.min_shared_tokens"
	KeyMinScore          = "retrieval.min_score"
	KeyWorkers           = "retrieval.workers"
	KeyEnrichmentVersion = "retrieval.enrichment_version"
	KeyStorageBackend    = "storage.backend"
	KeyStorageDataDir    = "storage.data_dir"
	KeyPostgresDSN       = "storage.postgres_dsn"
)

// EnvPostgresDSN overrides storage.postgres_dsn when set.
const EnvPostgresDSN = "CHAPTERGRAPH_POSTGRES_DSN"

// SettingKeys lists every key accepted by Set, in display order.
var SettingKeys = []string{
	KeyGenerator, KeySimilarity, KeyTopN, KeyMinSharedTokens, KeyMinScore,
	KeyWorkers, KeyEnrichmentVersion, KeyStorageBackend, KeyStorageDataDir, KeyPostgresDSN,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings. Unset or unrecognised
// values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	r := defaults.Retrieval

	settings := &domain.AppSettings{
		Retrieval: domain.RetrievalSettings{
			Generator:         s.getGenerator(r.Generator),
			Similarity:        s.getSimilarity(r.Similarity),
			TopN:              s.getInt(KeyTopN, r.TopN),
			MinSharedTokens:   s.getInt(KeyMinSharedTokens, r.MinSharedTokens),
			MinScore:          s.getFloat(KeyMinScore, r.MinScore),
			Workers:           s.getInt(KeyWorkers, r.Workers),
			EnrichmentVersion: s.getEnrichment(r.EnrichmentVersion),
		},
		Storage: domain.StorageSettings{
			Backend:     s.getBackend(defaults.Storage.Backend),
			DataDir:     s.configStore.GetString(KeyStorageDataDir),
			PostgresDSN: s.configStore.GetString(KeyPostgresDSN),
		},
	}
	if dsn := os.Getenv(EnvPostgresDSN); dsn != "" {
		settings.Storage.PostgresDSN = dsn
	}

	return settings, nil
}

// Save persists application settings after validating them.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if settings == nil {
		return domain.ErrInvalidInput
	}
	if err := settings.Retrieval.Validate(); err != nil {
		return err
	}
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidConfig, settings.Storage.Backend)
	}

	r := settings.Retrieval
	values := []struct {
		key   string
		value any
	}{
		{KeyGenerator, r.Generator.String()},
		{KeySimilarity, r.Similarity.String()},
		{KeyTopN, r.TopN},
		{KeyMinSharedTokens, r.MinSharedTokens},
		{KeyMinScore, r.MinScore},
		{KeyWorkers, r.Workers},
		{KeyEnrichmentVersion, r.EnrichmentVersion.String()},
		{KeyStorageBackend, settings.Storage.Backend.String()},
		{KeyStorageDataDir, settings.Storage.DataDir},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if settings.Storage.PostgresDSN != "" {
		if err := s.configStore.Set(KeyPostgresDSN, settings.Storage.PostgresDSN); err != nil {
			return fmt.Errorf("save %s: %w", KeyPostgresDSN, err)
		}
	}

	return nil
}

// Set parses, validates and persists a single setting.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	r := &settings.Retrieval

	var stored any
	switch key {
	case KeyGenerator:
		r.Generator = domain.GeneratorKind(value)
		stored = value
	case KeySimilarity:
		r.Similarity = domain.SimilarityKind(value)
		stored = value
	case KeyEnrichmentVersion:
		r.EnrichmentVersion = domain.EnrichmentVersion(value)
		stored = value
	case KeyTopN, KeyMinSharedTokens, KeyWorkers:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer: %q", domain.ErrInvalidInput, key, value)
		}
		switch key {
		case KeyTopN:
			r.TopN = n
		case KeyMinSharedTokens:
			r.MinSharedTokens = n
		default:
			r.Workers = n
		}
		stored = n
	case KeyMinScore:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number: %q", domain.ErrInvalidInput, key, value)
		}
		r.MinScore = f
		stored = f
	case KeyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidConfig, value)
		}
		stored = value
	case KeyStorageDataDir, KeyPostgresDSN:
		stored = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getGenerator(defaultVal domain.GeneratorKind) domain.GeneratorKind {
	g := domain.GeneratorKind(s.configStore.GetString(KeyGenerator))
	if !g.IsValid() {
		return defaultVal
	}
	return g
}

func (s *SettingsService) getSimilarity(defaultVal domain.SimilarityKind) domain.SimilarityKind {
	k := domain.SimilarityKind(s.configStore.GetString(KeySimilarity))
	if !k.IsValid() {
		return defaultVal
	}
	return k
}

func (s *SettingsService) getEnrichment(defaultVal domain.EnrichmentVersion) domain.EnrichmentVersion {
	v := domain.EnrichmentVersion(s.configStore.GetString(KeyEnrichmentVersion))
	if !v.IsValid() {
		return defaultVal
	}
	return v
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	b := domain.StorageBackend(s.configStore.GetString(KeyStorageBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}
