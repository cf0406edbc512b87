package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure retrieval defaults and storage.

Settings are stored in config.toml inside the config directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its key. Values are validated before saving.

Keys:
  retrieval.generator          tfidf_token | keyword
  retrieval.similarity         tfidf | keyword_overlap
  retrieval.top_n              salient terms per chapter (> 0)
  retrieval.min_shared_tokens  shared terms for a candidate (>= 1)
  retrieval.min_score          inclusive edge threshold (0-1)
  retrieval.workers            parallel workers (0 = all CPUs)
  retrieval.enrichment_version v1_bullets+sections | v1_bullets
  storage.backend              sqlite | postgres | memory
  storage.data_dir             directory of the sqlite database
  storage.postgres_dsn         connection string for postgres`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Println(styled(out, headingStyle, "Current Settings"))
	cmd.Println()

	r := settings.Retrieval
	cmd.Println("[Retrieval]")
	cmd.Printf("  Generator: %s\n", r.Generator.Description())
	cmd.Printf("  Similarity: %s\n", r.Similarity.Description())
	cmd.Printf("  Top N: %d\n", r.TopN)
	cmd.Printf("  Min shared tokens: %d\n", r.MinSharedTokens)
	cmd.Printf("  Min score: %g\n", r.MinScore)
	workers := "all CPUs"
	if r.Workers > 0 {
		workers = fmt.Sprintf("%d", r.Workers)
	}
	cmd.Printf("  Workers: %s\n", workers)
	cmd.Printf("  Enrichment: %s\n", r.EnrichmentVersion)
	cmd.Println()

	s := settings.Storage
	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", s.Backend)
	switch s.Backend {
	case domain.StoragePostgres:
		dsn := "(not set)"
		if s.PostgresDSN != "" {
			dsn = maskDSN(s.PostgresDSN)
		}
		cmd.Printf("  DSN: %s\n", dsn)
	case domain.StorageSQLite:
		dir := s.DataDir
		if dir == "" {
			dir = "~/.chaptergraph/data"
		}
		cmd.Printf("  Data dir: %s\n", dir)
	}
	cmd.Println()

	if err := r.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("%w (known keys: %v)", err, services.SettingKeys)
		}
		return err
	}
	if key == services.KeyPostgresDSN {
		value = maskDSN(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

// maskDSN hides everything between the scheme and the host.
func maskDSN(dsn string) string {
	start := 0
	if i := strings.Index(dsn, "://"); i >= 0 {
		start = i + 3
	}
	at := strings.LastIndex(dsn, "@")
	if at < start {
		return dsn
	}
	return dsn[:start] + "****" + dsn[at:]
}
