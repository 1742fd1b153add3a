// Package slider implements the sliding tile puzzle as an arcade game.
// The puzzle rules live in internal/puzzle; this package adds the cursor,
// pointer hit-testing, the per-second clock and rendering.
package slider

import (
	"math/rand"

	"github.com/vovakirdan/tui-slider/internal/config"
	"github.com/vovakirdan/tui-slider/internal/core"
	"github.com/vovakirdan/tui-slider/internal/puzzle"
	"github.com/vovakirdan/tui-slider/internal/registry"
)

// Mode selects how tiles are drawn.
type Mode string

const (
	ModePicture Mode = "picture"
	ModeNumbers Mode = "numbers"
)

const hudHeight = 3

// configPath stores the custom config path set via CLI
var configPath string

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// Game implements the sliding puzzle.
type Game struct {
	mode Mode
	rng  *rand.Rand
	tick uint64

	state     puzzle.GameState
	cursorRow int
	cursorCol int

	// Clock
	tickRate   int
	frameCount int // Frames since the last elapsed second

	cfg     config.SliderConfig
	picture *Picture

	// Layout (computed from screen size)
	screenW  int
	screenH  int
	board    core.Rect
	tooSmall bool
}

// New creates a picture puzzle.
func New() *Game {
	return &Game{mode: ModePicture}
}

// NewNumbers creates the numbered variant.
func NewNumbers() *Game {
	return &Game{mode: ModeNumbers}
}

func init() {
	registry.Register("slider", func() registry.Game {
		return New()
	})
	registry.Register("slider_numbers", func() registry.Game {
		return NewNumbers()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeNumbers {
		return "slider_numbers"
	}
	return "slider"
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeNumbers {
		return "Sliding Puzzle (Numbers)"
	}
	return "Sliding Puzzle"
}

// Reset shuffles a new puzzle. Used for the first start and for Play Again.
func (g *Game) Reset(rc core.RuntimeConfig) {
	cfg, err := config.LoadSlider(configPath)
	if err != nil {
		cfg = config.DefaultSliderConfig()
	}
	g.cfg = cfg

	lines, err := config.LoadPicture(cfg.Picture.Path)
	if err != nil {
		lines, _ = config.LoadPicture("")
	}

	g.rng = rand.New(rand.NewSource(rc.Seed))
	g.tick = 0
	g.frameCount = 0
	g.tickRate = rc.TickRate
	if g.tickRate <= 0 {
		g.tickRate = core.DefaultConfig().TickRate
	}

	g.state = puzzle.Initialize(cfg.Grid.Rows, cfg.Grid.Cols, g.rng)
	g.picture = NewPicture(lines, g.state.Rows, g.state.Cols, cfg.Display.CellWidth, cfg.Display.CellHeight)

	empty := g.state.Empty()
	g.cursorRow, g.cursorCol = empty.Row, empty.Col

	g.screenW = rc.ScreenW
	g.screenH = rc.ScreenH
	g.calculateLayout()
}

// pitch returns the distance between cell origins, borders included.
func (g *Game) pitch() (int, int) {
	return g.cfg.Display.CellWidth + 1, g.cfg.Display.CellHeight + 1
}

// calculateLayout centres the board below the HUD and checks the screen size.
func (g *Game) calculateLayout() {
	px, py := g.pitch()
	boardW := g.state.Cols*px + 1
	boardH := g.state.Rows*py + 1

	g.board = core.NewRect((g.screenW-boardW)/2, hudHeight+1, boardW, boardH)

	// Board, two message lines below it and the controls line.
	minW := core.Max(boardW, len(solvedMessage)) + 2
	minH := g.board.Bottom() + 4
	g.tooSmall = g.screenW < minW || g.screenH < minH
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	g.frameCount++
	if g.frameCount >= g.tickRate {
		g.frameCount = 0
		g.state = puzzle.Tick(g.state)
	}

	// Restart is handled by the platform
	if g.state.Solved {
		return core.StepResult{State: g.State()}
	}

	switch {
	case in.Has(core.ActionUp):
		g.cursorRow--
	case in.Has(core.ActionDown):
		g.cursorRow++
	case in.Has(core.ActionLeft):
		g.cursorCol--
	case in.Has(core.ActionRight):
		g.cursorCol++
	}
	g.cursorRow = core.Clamp(g.cursorRow, 0, g.state.Rows-1)
	g.cursorCol = core.Clamp(g.cursorCol, 0, g.state.Cols-1)

	before := g.state.Moves

	if in.Has(core.ActionSelect) {
		g.state = puzzle.ClickCell(g.state, g.cursorRow, g.cursorCol)
	}

	if p, ok := in.Pointer(); ok {
		if row, col, hit := g.cellAt(p.X, p.Y); hit {
			g.cursorRow, g.cursorCol = row, col
			g.state = puzzle.ClickCell(g.state, row, col)
		}
	}

	return core.StepResult{State: g.State(), Moved: g.state.Moves != before}
}

// cellAt maps a screen position to a grid cell. Border lines hit nothing.
func (g *Game) cellAt(x, y int) (row, col int, ok bool) {
	if !g.board.Contains(x, y) {
		return 0, 0, false
	}
	px, py := g.pitch()
	dx := x - g.board.X
	dy := y - g.board.Y
	if dx%px == 0 || dy%py == 0 {
		return 0, 0, false
	}
	return dy / py, dx / px, true
}

// State returns the status reported to the platform.
func (g *Game) State() core.GameState {
	return core.GameState{
		Rows:           g.state.Rows,
		Cols:           g.state.Cols,
		Moves:          g.state.Moves,
		ElapsedSeconds: g.state.ElapsedSeconds,
		Solved:         g.state.Solved,
	}
}

// Resize recomputes the layout for a new terminal size without
// reshuffling the board.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	g.calculateLayout()
}

// Puzzle returns the underlying puzzle state.
func (g *Game) Puzzle() puzzle.GameState {
	return g.state.Clone()
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	if g.state.Solved {
		return "R: Play again | B: Menu | Q: Quit"
	}
	return "Arrows/WASD: Cursor | Space/Enter/Click: Move tile | Q: Quit"
}
