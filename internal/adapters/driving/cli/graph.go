package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [run-id]",
	Short: "Print the graph of a run as JSON",
	Long: `Prints the books, chapters and edges of a run as JSON suitable for
graph visualisation: {"run_id", "nodes": [...], "edges": [...]}.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
	if graphService == nil {
		return errors.New("graph service not configured")
	}

	graph, err := graphService.Graph(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to build graph: %w", err)
	}
	return printJSON(cmd, graph)
}
