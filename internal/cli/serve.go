package cli

import (
	"github.com/spf13/cobra"

	"github.com/mark3labs/specforge/internal/mcpserver"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio",
		Long: "Expose one editing session as MCP tools over stdio. " +
			"Logs go to stderr; stdout carries the protocol.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcpserver.Run(cmd.Context(), mcpserver.Options{
				Version: Version,
				Logger:  commandLogger(cmd),
			})
		},
	}
}
