// ABOUTME: MCP serve command
// ABOUTME: Serves the active book to AI agents over stdio until interrupted

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/harper/repertoire/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI agents",
	Long: `Start an MCP server on stdio. Tools work on the active book unless a
call names another one. With --read-only the store is opened without write
access and add_line fails.

Examples:
  repertoire mcp
  repertoire mcp --book sicilian --read-only`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(db, currentBook(), scoringConfig())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		readOnly, _ := cmd.Flags().GetBool("read-only")
		slog.Debug("mcp server starting", "book", currentBook(), "read_only", readOnly)
		return server.Serve(ctx)
	},
}

func init() {
	mcpCmd.Flags().Bool("read-only", false, "open the store read-only")
	rootCmd.AddCommand(mcpCmd)
}
