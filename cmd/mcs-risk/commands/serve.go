package commands

import (
	"os/signal"
	"syscall"

	"mcs-risk/internal/mcp"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		server, err := mcp.NewServer(service, cfg.EnableMermaidCharts)
		if err != nil {
			return err
		}
		return server.Serve(ctx)
	},
}
