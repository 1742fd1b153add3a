package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-slider/internal/platform/tui"
	"github.com/vovakirdan/tui-slider/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a puzzle picker menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a puzzle.
After a puzzle ends, you return to the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select puzzle
  Tab          - Scoreboard
  Q            - Quit

Examples:
  slider menu
  slider menu --db ./scores.db`,
	Run: runMenu,
}

func init() {
	menuCmd.Flags().StringVar(&flagPlayer, "player", "", "Name recorded with solves (default: current user)")
}

func runMenu(_ *cobra.Command, _ []string) {
	store := openStoreOrWarn()
	cfg := runtimeConfig()

	player := flagPlayer
	if player == "" {
		player = playerName()
	}

	for {
		menuResult, err := tui.RunMenu(store, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		// Keep any size changes
		cfg = menuResult.Config

		if menuResult.Quit {
			break
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue
			}
			break
		}

		if menuResult.GameID == "" {
			break
		}

		game, err := registry.Create(menuResult.GameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating puzzle: %v\n", err)
			continue
		}

		// Fresh shuffle for each round unless a seed was pinned
		if flagSeed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		if err := tui.Run(game, store, cfg, player); err != nil {
			fmt.Fprintf(os.Stderr, "Error running puzzle: %v\n", err)
		}
	}

	if store != nil {
		store.Close()
	}
}
