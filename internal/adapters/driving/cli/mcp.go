package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/chaptergraph/internal/adapters/driving/mcp"
	"github.com/custodia-labs/chaptergraph/internal/core/services"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

Tools: compute_edges, list_runs, get_graph.
Resources: chaptergraph://runs, chaptergraph://books and
chaptergraph://runs/{runId}/graph.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start a streamable HTTP server instead, or --http to
serve HTTP on the first free port between 8080 and 8099.

Examples:
  # Stdio mode (default)
  chaptergraph mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  chaptergraph mcp serve --port 8080

  # HTTP mode on a free port
  chaptergraph mcp serve --http`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Bool("http", false, "serve HTTP on a free port when --port is not set")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	useHTTP, err := cmd.Flags().GetBool("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	ports := &mcp.Ports{
		Edges: edgeService,
		Graph: graphService,
		Books: bookService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port == 0 && useHTTP {
		port, err = services.FindAvailablePort(services.DefaultMCPPortStart, services.DefaultMCPPortEnd)
		if err != nil {
			return err
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
