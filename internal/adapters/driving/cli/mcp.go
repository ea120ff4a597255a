package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lorekeep/internal/adapters/driving/mcp"
)

var mcpReadOnly bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the store to an MCP client over stdio",
	Long: `Starts a Model Context Protocol server on stdin/stdout.

Tools: search, evidence_pack, and unless --read-only, record_fact,
record_summary and forget. Resources: lorekeep://documents,
lorekeep://documents/{id} and lorekeep://stats.

Client configuration:
  {
    "mcpServers": {
      "lorekeep": {
        "command": "/path/to/lorekeep",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().BoolVar(&mcpReadOnly, "read-only", false, "expose search tools only")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ports := &mcp.Ports{Retriever: a.Store}
	if !mcpReadOnly {
		ports.Store = a.Store
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}
	return server.Run(cmd.Context())
}
