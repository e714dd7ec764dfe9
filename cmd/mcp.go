package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/sportzvillage/svassist/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Exposes semantic search, context retrieval, cache refresh and chat
analytics as MCP tools. Stdout carries the protocol; all logging goes
to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildStack()
		if err != nil {
			return err
		}
		defer s.log.Sync()

		srv := mcpserver.NewServer(s.engine, s.refresher, s.chatLog, s.tiers)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
