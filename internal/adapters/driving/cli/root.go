// Package cli provides the cobra command tree for chaptergraph.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
	"github.com/custodia-labs/chaptergraph/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	verbose   bool
	configDir string
)

// Services used by commands. They are wired by PersistentPreRunE unless
// already set, which lets tests inject in-memory implementations.
var (
	settingsService driving.SettingsService
	bookService     driving.BookService
	edgeService     driving.EdgeService
	graphService    driving.GraphService

	closeServices func() error
)

// skipServicesAnnotation marks commands that never touch storage.
const skipServicesAnnotation = "chaptergraph/skip-services"

var rootCmd = &cobra.Command{
	Use:   "chaptergraph",
	Short: "Link chapters across books by lexical similarity",
	Long: `chaptergraph ingests book tables of contents, links related chapters
with a two-stage retrieval pipeline and records every run for inspection.

The pipeline first recalls candidate chapters through shared salient
terms, then scores each candidate pair and keeps edges above a threshold.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Annotations[skipServicesAnnotation] == "true" || servicesReady() {
			return nil
		}
		return wireServices(cmd.Context())
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if closeServices == nil {
			return nil
		}
		err := closeServices()
		closeServices = nil
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline stages to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.chaptergraph)")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func servicesReady() bool {
	return settingsService != nil && bookService != nil && edgeService != nil && graphService != nil
}
