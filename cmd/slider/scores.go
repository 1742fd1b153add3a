package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-slider/internal/registry"
	"github.com/vovakirdan/tui-slider/internal/storage"
)

var (
	flagFastest bool
	flagAll     bool
	flagClear   bool
	flagLimit   int
	flagBestOf  string
)

var scoresCmd = &cobra.Command{
	Use:   "scores [game]",
	Short: "Show best solves for a puzzle",
	Long: `Display the best solves for the specified puzzle (default: slider).
Fewer moves rank first; ties go to the faster solve.

Examples:
  slider scores
  slider scores --fastest
  slider scores --player alice
  slider scores slider_numbers --limit 5
  slider scores --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagFastest, "fastest", false, "Rank by time instead of moves")
	scoresCmd.Flags().BoolVar(&flagAll, "all", false, "List every solve, newest first")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete all solves for the puzzle")
	scoresCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of entries to show")
	scoresCmd.Flags().StringVar(&flagBestOf, "player", "", "Show a player's personal best")
}

func runScores(cmd *cobra.Command, args []string) {
	gameID := "slider"
	if len(args) > 0 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown puzzle %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'slider list' to see available puzzles.")
		os.Exit(1)
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}

	runErr := showScores(store, gameID)
	store.Close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func showScores(store *storage.Store, gameID string) error {
	title := registry.Title(gameID)

	if flagClear {
		if err := store.ClearSolves(gameID); err != nil {
			return err
		}
		fmt.Printf("Cleared all solves for %s.\n", title)
		return nil
	}

	if flagBestOf != "" {
		return printPersonalBest(store, gameID, title, flagBestOf)
	}

	var (
		solves []storage.Solve
		err    error
	)
	heading := "Best Solves"
	switch {
	case flagAll:
		heading = "All Solves"
		solves, err = store.AllSolves(gameID)
	case flagFastest:
		heading = "Fastest Solves"
		solves, err = store.FastestSolves(gameID, flagLimit)
	default:
		solves, err = store.BestSolves(gameID, flagLimit)
	}
	if err != nil {
		return fmt.Errorf("retrieving solves: %w", err)
	}

	fmt.Printf("%s - %s\n", heading, title)
	fmt.Println()

	if len(solves) == 0 {
		fmt.Println("No solves recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'slider play %s' to set the first record!\n", gameID)
		return nil
	}

	fmt.Printf("  %-4s  %-5s  %-6s  %-16s  %s\n", "Rank", "Moves", "Time", "Player", "Date")
	fmt.Printf("  %-4s  %-5s  %-6s  %-16s  %s\n", "----", "-----", "----", "------", "----")
	for i, s := range solves {
		fmt.Printf("  %-4d  %-5d  %-6s  %-16s  %s\n",
			i+1, s.Moves, formatDuration(s.Seconds), s.Player, s.CreatedAt.Format("2006-01-02 15:04"))
	}

	if stats, err := store.GetGameStats(gameID); err == nil && stats.SolvesCount > 0 {
		fmt.Println()
		fmt.Printf("Solves: %d  Best: %d moves  Fastest: %s  Average: %.1f moves\n",
			stats.SolvesCount, stats.BestMoves, formatDuration(stats.FastestSeconds), stats.AvgMoves)
	}
	return nil
}

func printPersonalBest(store *storage.Store, gameID, title, player string) error {
	best, err := store.PersonalBest(gameID, player)
	if err != nil {
		return fmt.Errorf("retrieving solves: %w", err)
	}
	if best == nil {
		fmt.Printf("%s has not solved %s yet.\n", player, title)
		return nil
	}
	fmt.Printf("Personal best for %s - %s\n", player, title)
	fmt.Printf("  %d moves in %s on %s\n", best.Moves, formatDuration(best.Seconds), best.CreatedAt.Format("2006-01-02 15:04"))
	return nil
}

func formatDuration(secs int) string {
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
