package puzzle

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = errors.New("puzzle: grid needs at least two cells")
	ErrInvalidLayout     = errors.New("puzzle: invalid layout")
)

// FromLayout builds a state from identities listed in row-major cell order.
// Like Initialize, the result starts unsolved with zeroed counters; the
// solved flag is only recomputed after a move.
func FromLayout(rows, cols int, ids []int) (GameState, error) {
	if rows < 1 || cols < 1 || rows*cols < 2 {
		return GameState{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	n := rows * cols
	if len(ids) != n {
		return GameState{}, fmt.Errorf("%w: got %d identities for %d cells", ErrInvalidLayout, len(ids), n)
	}

	tiles := make([]Tile, n)
	seen := make([]bool, n)
	for cell, id := range ids {
		if id < 0 || id >= n {
			return GameState{}, fmt.Errorf("%w: identity %d out of range", ErrInvalidLayout, id)
		}
		if seen[id] {
			return GameState{}, fmt.Errorf("%w: identity %d repeated", ErrInvalidLayout, id)
		}
		seen[id] = true
		tiles[id] = Tile{ID: id, Row: cell / cols, Col: cell % cols}
	}

	return GameState{
		Rows:  rows,
		Cols:  cols,
		Tiles: tiles,
	}, nil
}

// SolvedLayout returns the home arrangement for a rows x cols grid.
func SolvedLayout(rows, cols int) []int {
	ids := make([]int, rows*cols)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// Validate checks that tiles map one-to-one onto identities and cells.
func (s GameState) Validate() error {
	n := s.Rows * s.Cols
	if s.Rows < 1 || s.Cols < 1 || n < 2 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, s.Rows, s.Cols)
	}
	if len(s.Tiles) != n {
		return fmt.Errorf("%w: %d tiles for %d cells", ErrInvalidLayout, len(s.Tiles), n)
	}

	occupied := make([]bool, n)
	for i, t := range s.Tiles {
		if t.ID != i {
			return fmt.Errorf("%w: tile at index %d has identity %d", ErrInvalidLayout, i, t.ID)
		}
		if t.Row < 0 || t.Row >= s.Rows || t.Col < 0 || t.Col >= s.Cols {
			return fmt.Errorf("%w: tile %d outside grid at (%d,%d)", ErrInvalidLayout, t.ID, t.Row, t.Col)
		}
		cell := t.Row*s.Cols + t.Col
		if occupied[cell] {
			return fmt.Errorf("%w: cell (%d,%d) occupied twice", ErrInvalidLayout, t.Row, t.Col)
		}
		occupied[cell] = true
	}
	return nil
}
