package main

import (
	"os"
	"os/signal"

	"github.com/sandevgo/medrag/internal/transport/mcp"
	"github.com/sandevgo/medrag/pkg/log"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the chatbot as MCP tools over stdio",
	Long:  `Runs an MCP server on stdin/stdout. Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, os.Stderr)
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		log.FromCtx(ctx).Info().Msg("mcp server listening on stdio")
		s := mcp.NewServer(a.chat)
		defer s.Shutdown(ctx)

		return s.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
