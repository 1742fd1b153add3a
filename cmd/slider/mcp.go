package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-slider/internal/platform/mcp"
	"github.com/vovakirdan/tui-slider/internal/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve puzzle tools over MCP stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout.

Tools: new_puzzle, puzzle_state, move_tile, restart_puzzle, best_solves.
Logs go to stderr so they never mix with the protocol stream.

Example client config:
  {"command": "slider", "args": ["mcp"]}`,
	Run: runMCP,
}

func runMCP(_ *cobra.Command, _ []string) {
	sliderCfg := loadConfig()
	logger := newLogger("slider-mcp")

	store := openStoreOrWarn()

	defaults := session.Options{
		Player:   "mcp",
		Rows:     sliderCfg.Grid.Rows,
		Cols:     sliderCfg.Grid.Cols,
		Seed:     flagSeed,
		Interval: sliderCfg.Clock.Interval(),
		Logger:   logger,
	}
	if store != nil {
		defaults.Recorder = store
	}

	server := mcp.NewServer(session.NewManager(defaults), store, version)
	logger.Info("serving MCP over stdio")

	runErr := server.ServeStdio()

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", runErr)
		os.Exit(1)
	}
}
