// Package puzzle implements the sliding tile puzzle model.
//
// The model is a pure state machine over a rows x cols grid. Every operation
// takes a GameState value and returns a new one; callers own the single
// mutable reference and swap it on change.
package puzzle

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/tui-slider/internal/core"
)

// Default grid dimensions.
const (
	DefaultRows = 3
	DefaultCols = 3
)

// Phase is the state machine position of a game.
type Phase string

const (
	PhasePlaying Phase = "playing"
	PhaseSolved  Phase = "solved"
)

// Tile is one unit of the grid. ID selects the picture fragment the tile
// shows and never changes; Row and Col are the tile's current cell.
type Tile struct {
	ID  int `json:"id"`
	Row int `json:"row"`
	Col int `json:"col"`
}

// GameState is a complete snapshot of one game.
// Tiles is indexed by identity: Tiles[i].ID == i.
type GameState struct {
	Rows           int    `json:"rows"`
	Cols           int    `json:"cols"`
	Tiles          []Tile `json:"tiles"`
	Moves          int    `json:"moves"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	Solved         bool   `json:"solved"`
}

// Initialize builds a freshly shuffled game. Identities are drawn without
// repetition from the remaining pool and placed in row-major order, so every
// permutation is possible, including the solved one.
//
// Dimensions that leave fewer than two cells fall back to the 3x3 default.
// A nil rng uses a time-seeded source.
func Initialize(rows, cols int, rng *rand.Rand) GameState {
	if rows < 1 || cols < 1 || rows*cols < 2 {
		rows, cols = DefaultRows, DefaultCols
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	n := rows * cols
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}

	tiles := make([]Tile, n)
	for cell := range n {
		pick := rng.Intn(len(pool))
		id := pool[pick]
		pool = append(pool[:pick], pool[pick+1:]...)

		tiles[id] = Tile{ID: id, Row: cell / cols, Col: cell % cols}
	}

	return GameState{
		Rows:  rows,
		Cols:  cols,
		Tiles: tiles,
	}
}

// IsAdjacent reports whether two tiles are 4-directional neighbours.
func IsAdjacent(a, b Tile) bool {
	if a.Row == b.Row {
		return core.Abs(a.Col-b.Col) == 1
	}
	if a.Col == b.Col {
		return core.Abs(a.Row-b.Row) == 1
	}
	return false
}

// AttemptMove swaps the clicked tile with the empty tile when they are
// adjacent. Clicks on a solved game, on unknown identities, on the empty tile
// or on a tile away from the empty slot return s unchanged.
func AttemptMove(s GameState, clickedID int) GameState {
	if s.Solved || clickedID < 0 || clickedID >= len(s.Tiles) {
		return s
	}

	emptyID := s.EmptyID()
	clicked := s.Tiles[clickedID]
	empty := s.Tiles[emptyID]
	if !IsAdjacent(clicked, empty) {
		return s
	}

	next := s.Clone()
	next.Tiles[clickedID].Row, next.Tiles[clickedID].Col = empty.Row, empty.Col
	next.Tiles[emptyID].Row, next.Tiles[emptyID].Col = clicked.Row, clicked.Col
	next.Moves++
	next.Solved = CheckSolved(next.Tiles, next.Cols)
	return next
}

// ClickCell forwards a click on a grid cell to AttemptMove.
// Cells outside the grid are ignored.
func ClickCell(s GameState, row, col int) GameState {
	t, ok := s.TileAt(row, col)
	if !ok {
		return s
	}
	return AttemptMove(s, t.ID)
}

// CheckSolved reports whether every tile sits on its row-major home cell.
func CheckSolved(tiles []Tile, cols int) bool {
	for _, t := range tiles {
		if t.ID != t.Row*cols+t.Col {
			return false
		}
	}
	return true
}

// Tick advances the elapsed-time counter by one second while unsolved.
func Tick(s GameState) GameState {
	if s.Solved {
		return s
	}
	s.ElapsedSeconds++
	return s
}

// EmptyID returns the identity of the empty tile.
func (s GameState) EmptyID() int {
	return s.Rows*s.Cols - 1
}

// Empty returns the empty tile.
func (s GameState) Empty() Tile {
	return s.Tiles[s.EmptyID()]
}

// Phase returns the state machine position.
func (s GameState) Phase() Phase {
	if s.Solved {
		return PhaseSolved
	}
	return PhasePlaying
}

// TileAt returns the tile occupying (row, col).
func (s GameState) TileAt(row, col int) (Tile, bool) {
	if row < 0 || row >= s.Rows || col < 0 || col >= s.Cols {
		return Tile{}, false
	}
	for _, t := range s.Tiles {
		if t.Row == row && t.Col == col {
			return t, true
		}
	}
	return Tile{}, false
}

// Layout returns the identity at every cell, indexed [row][col].
func (s GameState) Layout() [][]int {
	grid := make([][]int, s.Rows)
	for r := range grid {
		grid[r] = make([]int, s.Cols)
	}
	for _, t := range s.Tiles {
		grid[t.Row][t.Col] = t.ID
	}
	return grid
}

// MovableTiles returns the identities that a click would move, in ID order.
func (s GameState) MovableTiles() []int {
	if s.Solved || len(s.Tiles) == 0 {
		return nil
	}
	empty := s.Empty()
	var ids []int
	for _, t := range s.Tiles {
		if IsAdjacent(t, empty) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Clone returns a deep copy.
func (s GameState) Clone() GameState {
	c := s
	c.Tiles = make([]Tile, len(s.Tiles))
	copy(c.Tiles, s.Tiles)
	return c
}
