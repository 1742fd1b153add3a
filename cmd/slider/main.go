// slider is a sliding tile picture puzzle for the terminal, the browser and
// MCP clients.
//
// Usage:
//
//	slider list              - List available puzzles
//	slider play [game]       - Play a puzzle (default: slider)
//	slider menu              - Start menu to pick puzzles interactively
//	slider scores [game]     - Show best solves for a puzzle
//	slider serve             - Start SSH server for remote play
//	slider web               - Start HTTP/WebSocket server for browser play
//	slider mcp               - Serve puzzle tools over MCP stdio
//
// Global flags:
//
//	--fps <rate>        - Set tick rate (default: 30)
//	--seed <value>      - Set RNG seed for a reproducible shuffle
//	--db <path>         - Set database path (default: ~/.slider/scores.db)
//	--config <path>     - Set slider config YAML
//	--log-level <lvl>   - Set log level for servers (debug, info, warn, error)
package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-slider/internal/config"
	"github.com/vovakirdan/tui-slider/internal/core"
	"github.com/vovakirdan/tui-slider/internal/games/slider"
	"github.com/vovakirdan/tui-slider/internal/storage"
)

const version = "1.0.0"

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "slider",
	Short:   "Slider - a sliding tile picture puzzle",
	Version: version,
	Long: `Slider is a 3x3 sliding tile puzzle. A picture is cut into tiles,
one tile is left empty and the rest are shuffled. Slide tiles into the
empty slot until the picture is restored.

Available commands:
  list     - Show all available puzzles
  play     - Play a puzzle directly
  menu     - Interactive puzzle picker menu
  scores   - View best solves
  serve    - Start SSH server for remote play
  web      - Start HTTP/WebSocket server for browser play
  mcp      - Serve puzzle tools to MCP clients over stdio

Examples:
  slider play
  slider play slider_numbers
  slider menu
  slider web --addr :8080
  slider scores slider`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slider.SetConfigPath(flagConfig)
	},
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", core.DefaultConfig().TickRate, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.slider/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to slider config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(mcpCmd)
}

// newLogger builds the structured logger used by the servers.
func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// loadConfig reads the slider config, exiting on a broken file.
func loadConfig() config.SliderConfig {
	cfg, err := config.LoadSlider(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openStoreOrWarn opens the scores database. Play continues without it.
func openStoreOrWarn() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		return nil
	}
	return store
}

// runtimeConfig sizes the screen to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	cfg.TickRate = flagFPS
	cfg.Seed = flagSeed
	return cfg
}

// playerName is the local account name recorded with solves.
func playerName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "player"
}
