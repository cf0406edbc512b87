package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/chaptergraph/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/services"
	"github.com/custodia-labs/chaptergraph/internal/ingestion"
)

var testdataDir = filepath.Join("..", "..", "..", "ingestion", "testdata")

func testManifest() string {
	return filepath.Join(testdataDir, "books.yaml")
}

// setupTestServices wires services over in-memory stores and restores
// the previous services when the test ends.
func setupTestServices(t *testing.T) {
	t.Helper()
	t.Setenv(services.EnvPostgresDSN, "")
	resetServices(t)

	books := memory.NewBookStore()
	runs := memory.NewRunStore()
	settings := services.NewSettingsService(memory.NewConfigStore())

	settingsService = settings
	bookService = services.NewBookService(ingestion.NewFileSource(), ingestion.NewKeywordEnricher(), books)
	edgeService = services.NewEdgeService(books, runs, settings, nil)
	graphService = services.NewGraphService(books, runs)
}

// setupIngested wires test services and ingests the fixture books.
func setupIngested(t *testing.T) {
	t.Helper()
	setupTestServices(t)
	specs, err := ingestion.LoadManifest(testManifest())
	require.NoError(t, err)
	_, err = bookService.Ingest(context.Background(), specs, domain.EnrichmentBulletsSections)
	require.NoError(t, err)
}

// resetServices clears the wired services for the duration of the test.
func resetServices(t *testing.T) {
	t.Helper()
	oldSettings, oldBook, oldEdge, oldGraph := settingsService, bookService, edgeService, graphService
	oldClose := closeServices
	settingsService, bookService, edgeService, graphService = nil, nil, nil, nil
	closeServices = nil
	t.Cleanup(func() {
		settingsService, bookService, edgeService, graphService = oldSettings, oldBook, oldEdge, oldGraph
		closeServices = oldClose
	})
}

// execute runs the root command with fresh flag values and returns
// everything written to stdout and stderr.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores every flag of cmd and its children to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else if !strings.HasSuffix(f.Value.Type(), "Slice") {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
