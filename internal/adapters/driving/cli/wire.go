package cli

import (
	"context"
	"fmt"

	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/config/file"
	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/core/services"
	"github.com/custodia-labs/chaptergraph/internal/ingestion"
	"github.com/custodia-labs/chaptergraph/internal/logger"
	"github.com/custodia-labs/chaptergraph/internal/retrieval"
)

// wireServices builds the services from the config file and the
// configured storage backend.
func wireServices(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	settingsSvc := services.NewSettingsService(configStore)
	settings, err := settingsSvc.Get()
	if err != nil {
		return err
	}

	books, runs, closer, err := openStorage(ctx, settings.Storage)
	if err != nil {
		return err
	}

	settingsService = settingsSvc
	bookService = services.NewBookService(ingestion.NewFileSource(), ingestion.NewKeywordEnricher(), books)
	edgeService = services.NewEdgeService(books, runs, settingsSvc, retrieval.DefaultRegistry())
	graphService = services.NewGraphService(books, runs)
	closeServices = func() error {
		settingsService, bookService, edgeService, graphService = nil, nil, nil, nil
		return closer()
	}
	return nil
}

func openStorage(
	ctx context.Context, cfg domain.StorageSettings,
) (driven.BookStore, driven.RunStore, func() error, error) {
	logger.Debug("storage backend: %s", cfg.Backend)

	switch cfg.Backend {
	case domain.StorageMemory:
		return memory.NewBookStore(), memory.NewRunStore(), func() error { return nil }, nil

	case domain.StoragePostgres:
		if cfg.PostgresDSN == "" {
			return nil, nil, nil, fmt.Errorf("%w: storage.postgres_dsn is required for the postgres backend",
				domain.ErrInvalidConfig)
		}
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return store.BookStore(), store.RunStore(), store.Close, nil

	default:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		logger.Debug("sqlite database: %s", store.Path())
		return store.BookStore(), store.RunStore(), store.Close, nil
	}
}
