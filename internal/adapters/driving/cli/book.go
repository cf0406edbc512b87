package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chaptergraph/internal/core/domain"
	"github.com/custodia-labs/chaptergraph/internal/ingestion"
)

var bookEnrichment string

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage ingested books",
	Long:  `Ingest books from a manifest and inspect the stored chapters.`,
}

var bookIngestCmd = &cobra.Command{
	Use:   "ingest [manifest]",
	Short: "Ingest books listed in a manifest",
	Long: `Ingest every book listed in a YAML manifest.

Each entry names a book and its brief and detailed tables of contents:

  - book_id: spring-in-action
    title: Spring in Action
    chapters_path: spring_brief.txt
    sections_path: spring_detailed.txt

Relative paths are resolved against the manifest's directory. Books that
fail to parse are skipped and reported; the others are stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runBookIngest,
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingested books",
	RunE:  runBookList,
}

var bookShowCmd = &cobra.Command{
	Use:   "show [book-id]",
	Short: "Show a book's chapters",
	Args:  cobra.ExactArgs(1),
	RunE:  runBookShow,
}

func init() {
	bookIngestCmd.Flags().StringVar(&bookEnrichment, "enrichment", "",
		"enrichment version: v1_bullets+sections or v1_bullets (default from settings)")
	bookCmd.AddCommand(bookIngestCmd)
	bookCmd.AddCommand(bookListCmd)
	bookCmd.AddCommand(bookShowCmd)
	rootCmd.AddCommand(bookCmd)
}

func runBookIngest(cmd *cobra.Command, args []string) error {
	if bookService == nil || settingsService == nil {
		return errors.New("book service not configured")
	}

	specs, err := ingestion.LoadManifest(args[0])
	if err != nil {
		return err
	}

	version := domain.EnrichmentVersion(bookEnrichment)
	if version == "" {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		version = settings.Retrieval.EnrichmentVersion
	}

	books, ingestErr := bookService.Ingest(cmd.Context(), specs, version)
	for _, b := range books {
		cmd.Printf("Ingested %s (%d chapters)\n", b.ID, len(b.Chapters))
	}
	if ingestErr != nil {
		if errors.Is(ingestErr, domain.ErrMalformedBook) && len(books) > 0 {
			cmd.PrintErrf("Warning: %v\n", ingestErr)
			return nil
		}
		return fmt.Errorf("ingest failed: %w", ingestErr)
	}
	return nil
}

func runBookList(cmd *cobra.Command, _ []string) error {
	if bookService == nil {
		return errors.New("book service not configured")
	}

	books, err := bookService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}
	if len(books) == 0 {
		cmd.Println("No books ingested.")
		return nil
	}

	out := cmd.OutOrStdout()
	cmd.Println(styled(out, headingStyle, "Books:"))
	for _, b := range books {
		cmd.Printf("  %s  %s\n", b.ID, styled(out, mutedStyle, b.Title))
	}
	return nil
}

func runBookShow(cmd *cobra.Command, args []string) error {
	if bookService == nil {
		return errors.New("book service not configured")
	}

	book, err := bookService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get book: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Println(styled(out, headingStyle, book.Title))
	cmd.Println(styled(out, mutedStyle, book.ID))
	cmd.Println()
	for _, ch := range book.Chapters {
		cmd.Printf("  %d. %s\n", ch.Order, ch.Title)
		for _, s := range ch.Sections {
			cmd.Printf("       %s\n", s)
		}
		if kw := ch.Signals.Features.Keywords; len(kw) > 0 {
			cmd.Printf("       %s\n", styled(out, mutedStyle, "keywords: "+strings.Join(kw, ", ")))
		}
	}
	return nil
}
