package slider

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying     GameStateType = "playing"
	StateSolved      GameStateType = "solved"
	StatePausedSmall GameStateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick      uint64
	Mode      string  // "picture" or "numbers"
	Layout    [][]int // Tile identity per cell, [row][col]
	Moves     int
	Elapsed   int
	CursorRow int
	CursorCol int
	State     GameStateType
}

// Snapshot returns the current game snapshot for determinism verification.
func (g *Game) Snapshot() Snapshot {
	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.state.Solved:
		state = StateSolved
	}

	return Snapshot{
		Tick:      g.tick,
		Mode:      string(g.mode),
		Layout:    g.state.Layout(),
		Moves:     g.state.Moves,
		Elapsed:   g.state.ElapsedSeconds,
		CursorRow: g.cursorRow,
		CursorCol: g.cursorCol,
		State:     state,
	}
}
