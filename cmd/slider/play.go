package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-slider/internal/platform/tui"
	"github.com/vovakirdan/tui-slider/internal/registry"
)

var flagPlayer string

var playCmd = &cobra.Command{
	Use:   "play [game]",
	Short: "Play a puzzle",
	Long: `Start playing the specified puzzle (default: slider).

Controls:
  Mouse click        - Slide the clicked tile
  Arrows/WASD/HJKL   - Move the cursor
  Space/Enter        - Slide the tile under the cursor
  R                  - Play again (after solving)
  Esc/B              - Back
  Q/Ctrl+C           - Quit
  Ctrl+S             - Save a screenshot

Examples:
  slider play
  slider play slider_numbers
  slider play --seed 42
  slider play --config ./my-slider.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayer, "player", "", "Name recorded with solves (default: current user)")
}

func runPlay(cmd *cobra.Command, args []string) {
	gameID := "slider"
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown puzzle %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'slider list' to see available puzzles.")
		os.Exit(1)
	}

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating puzzle: %v\n", err)
		os.Exit(1)
	}

	player := flagPlayer
	if player == "" {
		player = playerName()
	}

	// Continue without storage - the puzzle still works
	store := openStoreOrWarn()

	runErr := tui.Run(game, store, runtimeConfig(), player)

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running puzzle: %v\n", runErr)
		os.Exit(1)
	}
}
