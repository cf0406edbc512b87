package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	runShowLimit int
	runShowJSON  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Inspect recorded runs",
}

var runListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	RunE:  runRunList,
}

var runShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a run and its edges",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunShow,
}

func init() {
	runShowCmd.Flags().IntVarP(&runShowLimit, "limit", "n", 20, "maximum number of edges to print (0 = all)")
	runShowCmd.Flags().BoolVar(&runShowJSON, "json", false, "output run and edges as JSON")
	runCmd.AddCommand(runListCmd)
	runCmd.AddCommand(runShowCmd)
	rootCmd.AddCommand(runCmd)
}

func runRunList(cmd *cobra.Command, _ []string) error {
	if edgeService == nil {
		return errors.New("edge service not configured")
	}

	runs, err := edgeService.ListRuns(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	out := cmd.OutOrStdout()
	cmd.Println(styled(out, headingStyle, "Runs:"))
	for _, r := range runs {
		cmd.Printf("  %s  %s  %s/%s  %d edges  [%s]\n",
			r.ID,
			styled(out, mutedStyle, r.CreatedAt.Local().Format("2006-01-02 15:04")),
			r.Config.Generator, r.Config.Similarity, r.EdgeCount,
			strings.Join(r.Config.BookIDs, ", "))
	}
	return nil
}

func runRunShow(cmd *cobra.Command, args []string) error {
	if edgeService == nil {
		return errors.New("edge service not configured")
	}

	run, edges, err := edgeService.GetRun(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if runShowJSON {
		return printJSON(cmd, struct {
			Run   any `json:"run"`
			Edges any `json:"edges"`
		}{run, nonNilEdges(edges)})
	}

	out := cmd.OutOrStdout()
	c := run.Config
	cmd.Println(styled(out, headingStyle, "Run "+run.ID))
	cmd.Printf("  Books:      %s\n", strings.Join(c.BookIDs, ", "))
	cmd.Printf("  Generator:  %s\n", c.Generator.Description())
	cmd.Printf("  Similarity: %s\n", c.Similarity.Description())
	cmd.Printf("  Enrichment: %s\n", c.EnrichmentVersion)
	cmd.Printf("  Thresholds: min_score %g, top_n %d, min_shared %d\n", c.MinScore, c.TopN, c.MinSharedTokens)
	cmd.Printf("  Edges:      %d\n", run.EdgeCount)
	cmd.Println()

	shown := edges
	if runShowLimit > 0 && len(shown) > runShowLimit {
		shown = shown[:runShowLimit]
	}
	for _, e := range shown {
		cmd.Printf("  %s -> %s  %s\n", e.From, e.To, styled(out, scoreStyle, fmt.Sprintf("%.3f", e.Score)))
	}
	if len(shown) < len(edges) {
		cmd.Println(styled(out, mutedStyle, fmt.Sprintf("  ... %d more", len(edges)-len(shown))))
	}
	return nil
}
