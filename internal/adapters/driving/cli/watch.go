package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driven"
	"github.com/custodia-labs/chaptergraph/internal/core/ports/driving"
	"github.com/custodia-labs/chaptergraph/internal/ingestion"
)

var watchDebounce string

var watchCmd = &cobra.Command{
	Use:   "watch [manifest]",
	Short: "Re-ingest and recompute edges when books change",
	Long: `Watches a manifest and the tables of contents it lists. On every change
all books are ingested again and a new run over all of them is recorded
with the current retrieval settings. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDebounce, "debounce", "500ms", "wait for changes to settle before reloading")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if bookService == nil || edgeService == nil || settingsService == nil {
		return errors.New("services not configured")
	}

	debounce, err := time.ParseDuration(watchDebounce)
	if err != nil {
		return fmt.Errorf("invalid --debounce: %w", err)
	}
	watcher, err := ingestion.NewWatcher(args[0], debounce)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return watcher.Run(cmd.Context(), func(ctx context.Context, specs []driven.BookSpec) error {
		return reingest(ctx, cmd, specs)
	})
}

// reingest ingests the books and records a run over the ones that loaded.
func reingest(ctx context.Context, cmd *cobra.Command, specs []driven.BookSpec) error {
	settings, err := settingsService.Get()
	if err != nil {
		return err
	}

	books, err := bookService.Ingest(ctx, specs, settings.Retrieval.EnrichmentVersion)
	if err != nil && !errors.Is(err, domain.ErrMalformedBook) {
		return err
	}
	if err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}
	if len(books) == 0 {
		return errors.New("no books ingested")
	}

	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	run, _, err := edgeService.Compute(ctx, driving.ComputeEdgesRequest{BookIDs: ids})
	if err != nil {
		return err
	}
	cmd.Printf("Run %s: %d books, %d edges\n", run.ID, len(books), run.EdgeCount)
	return nil
}
