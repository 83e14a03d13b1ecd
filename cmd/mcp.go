package cmd

import (
	"github.com/huangsam/bizcache/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the bizcache MCP server",
	Long:  `Launch an MCP server that lets AI agents read and edit cached entities via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Output goes to stderr only; stdio carries the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, registry)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
