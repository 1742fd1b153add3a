package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-slider/internal/config"
	"github.com/vovakirdan/tui-slider/internal/games/slider"
	"github.com/vovakirdan/tui-slider/internal/platform/web"
	"github.com/vovakirdan/tui-slider/internal/session"
)

var flagWebAddr string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the HTTP/WebSocket server",
	Long: `Start an HTTP server for playing in the browser.

Opening the root page starts a puzzle that lives as long as the tab.
The REST API under /api and the WebSocket endpoint /ws/{id} let other
clients create and play sessions.

Examples:
  slider web                   # Listen on :8080
  slider web --addr :9000
  slider web --config ./slider.yaml`,
	Run: runWeb,
}

func init() {
	webCmd.Flags().StringVar(&flagWebAddr, "addr", "", "HTTP server address (default from config, :8080)")
}

func runWeb(_ *cobra.Command, _ []string) {
	sliderCfg := loadConfig()
	logger := newLogger("slider-web")

	lines, err := config.LoadPicture(sliderCfg.Picture.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	picture := slider.NewPicture(lines, sliderCfg.Grid.Rows, sliderCfg.Grid.Cols,
		sliderCfg.Display.CellWidth, sliderCfg.Display.CellHeight)

	store := openStoreOrWarn()

	defaults := session.Options{
		Rows:     sliderCfg.Grid.Rows,
		Cols:     sliderCfg.Grid.Cols,
		Seed:     flagSeed,
		Interval: sliderCfg.Clock.Interval(),
		Logger:   logger,
	}
	// A nil *storage.Store must not become a non-nil interface value.
	if store != nil {
		defaults.Recorder = store
	}

	addr := sliderCfg.Server.WebAddr
	if flagWebAddr != "" {
		addr = flagWebAddr
	}

	server := web.NewServer(web.Config{
		Address:     addr,
		Picture:     picture.Lines(),
		PictureName: sliderCfg.Picture.Name,
	}, session.NewManager(defaults), store, logger)

	fmt.Printf("Starting slider web server on %s\n", addr)
	fmt.Println("Press Ctrl+C to stop")

	runErr := server.ListenAndServe()

	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", runErr)
		os.Exit(1)
	}
}
