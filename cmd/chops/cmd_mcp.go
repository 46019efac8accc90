package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ajitpratap0/chops/internal/generator"
	chopsmcp "github.com/ajitpratap0/chops/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  summon     — generate a chaos-calibrated idea with a persona
  recall     — retrieve the latest remembered idea by tag
  recommend  — rank personas by learned effectiveness for a domain
  feedback   — record a satisfaction rating for a persona
  stats      — memory tier statistics

If ANTHROPIC_API_KEY is unset the server still starts; summon calls
will return MCP error responses instead of failing at startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			engine, err := newEngine(logger)
			if err != nil {
				return fmt.Errorf("mcp: %w", err)
			}

			store, storage, err := newStore(ctx, logger)
			if err != nil {
				return fmt.Errorf("mcp: %w", err)
			}
			defer func() { _ = storage.Close() }()

			// A missing API key disables summon but leaves memory tools working.
			var summoner *generator.Summoner
			summoner, sumErr := newSummoner(engine, store, logger)
			if sumErr != nil {
				logger.Error("mcp: summon tool disabled", "error", sumErr)
				summoner = nil
			}

			srv := chopsmcp.NewServer(summoner, store, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: chops MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
