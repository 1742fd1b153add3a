package slider

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/tui-slider/internal/core"
)

const (
	solvedMessage = "Congratulations! You solved the puzzle!"
	playAgainHint = "Press R to play again"
)

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall {
		g.renderTooSmall(dst)
		return
	}

	g.renderHUD(dst)
	g.renderGrid(dst)
	g.renderTiles(dst)

	if g.state.Solved {
		y := g.board.Bottom() + 1
		dst.DrawTextColored((g.screenW-len(solvedMessage))/2, y, solvedMessage, core.ColorGreen)
		dst.DrawTextColored((g.screenW-len(playAgainHint))/2, y+1, playAgainHint, core.ColorGray)
	} else {
		g.renderCursor(dst)
	}

	controls := g.Controls()
	dst.DrawTextColored((g.screenW-len(controls))/2, g.screenH-1, controls, core.ColorGray)
}

// renderTooSmall shows a "window too small" message.
func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// renderHUD draws the title, move counter and clock.
func (g *Game) renderHUD(dst *core.Screen) {
	title := g.Title()
	dst.DrawTextColored((g.screenW-len(title))/2, 0, title, core.ColorBrightCyan)

	dst.DrawText(g.board.X, 1, fmt.Sprintf("Moves: %d", g.state.Moves))

	timeStr := fmt.Sprintf("Time: %d seconds", g.state.ElapsedSeconds)
	timeX := core.Max(g.board.X, g.board.Right()-len(timeStr))
	dst.DrawText(timeX, 2, timeStr)
}

// renderGrid draws the cell borders.
func (g *Game) renderGrid(dst *core.Screen) {
	px, py := g.pitch()
	rows, cols := g.state.Rows, g.state.Cols

	for y := range rows + 1 {
		for x := range cols + 1 {
			cx := g.board.X + x*px
			cy := g.board.Y + y*py

			var corner rune
			switch {
			case y == 0 && x == 0:
				corner = '┌'
			case y == 0 && x == cols:
				corner = '┐'
			case y == rows && x == 0:
				corner = '└'
			case y == rows && x == cols:
				corner = '┘'
			case y == 0:
				corner = '┬'
			case y == rows:
				corner = '┴'
			case x == 0:
				corner = '├'
			case x == cols:
				corner = '┤'
			default:
				corner = '┼'
			}
			dst.Set(cx, cy, corner)

			if x < cols {
				for i := 1; i < px; i++ {
					dst.Set(cx+i, cy, '─')
				}
			}
			if y < rows {
				for i := 1; i < py; i++ {
					dst.Set(cx, cy+i, '│')
				}
			}
		}
	}
}

// renderTiles draws every tile at its current cell. The empty tile stays
// blank until the puzzle is solved, which reveals the whole picture.
func (g *Game) renderTiles(dst *core.Screen) {
	px, py := g.pitch()
	cellW, cellH := g.cfg.Display.CellWidth, g.cfg.Display.CellHeight
	emptyID := g.state.EmptyID()

	movable := make(map[int]bool)
	for _, id := range g.state.MovableTiles() {
		movable[id] = true
	}

	for _, t := range g.state.Tiles {
		if t.ID == emptyID && !g.state.Solved {
			continue
		}
		x := g.board.X + t.Col*px + 1
		y := g.board.Y + t.Row*py + 1

		if g.mode == ModeNumbers {
			color := core.ColorWhite
			if movable[t.ID] {
				color = core.ColorCyan
			}
			label := strconv.Itoa(t.ID + 1)
			if t.ID == emptyID {
				label = " "
			}
			dst.DrawTextColored(x+(cellW-len(label))/2, y+(cellH-1)/2, label, color)
			continue
		}

		for i, line := range g.picture.Fragment(t.ID) {
			dst.DrawText(x, y+i, line)
		}
		if g.cfg.Display.ShowNumbers && !g.state.Solved {
			dst.DrawTextColored(x, y, strconv.Itoa(t.ID+1), core.ColorYellow)
		}
	}
}

// renderCursor highlights the borders of the selected cell.
func (g *Game) renderCursor(dst *core.Screen) {
	px, py := g.pitch()
	r := core.NewRect(g.board.X+g.cursorCol*px, g.board.Y+g.cursorRow*py, px+1, py+1)
	dst.DrawBoxColored(r, core.ColorBrightYellow)
}
