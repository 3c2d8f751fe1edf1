// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio MCP server so assistants can log and query workouts.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/gymlog/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "gymlog": {
        "command": "gymlog",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  add_set            Log a weighted, bodyweight or timed set
  list_sets          List recent sets
  delete_set         Delete a set by ID or prefix
  personal_records   Best set per exercise
  top_exercises      Most frequently logged exercises
  one_rep_max        Estimate a one-rep max
  bmi                Body mass index
  list_sessions      List workout sessions
  session_stats      Totals for one session

AVAILABLE RESOURCES:

  gymlog://records   Personal records with share text
  gymlog://recent    Recent sets and sessions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(gym)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
