package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"svcseq/internal/mcpserver"
)

// mcpSSEAddr switches the MCP server from stdio to server-sent events.
var mcpSSEAddr string

// mcpCmd serves svcseq operations to MCP clients.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve svcseq operations as MCP tools",
	Long: `Starts a Model Context Protocol server exposing the following tools:

  service_status   query one service
  ensure_running   start one service if needed and wait for it
  wait_running     wait for one service without starting it
  start_plan       run the configured startup plan
  show_plan        show the configured plan

By default the server speaks MCP over stdin/stdout, which is what most
assistants expect. Use --sse to listen on an address instead.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	application, err := newApplication(false, "")
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	srv := mcpserver.NewServer(application, rootCmd.Version)
	if mcpSSEAddr == "" {
		return srv.ServeStdio()
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()
	return srv.ServeSSE(ctx, mcpSSEAddr)
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringVar(&mcpSSEAddr, "sse", "", "Serve over server-sent events on this address (e.g. localhost:8090)")
}
