package slider

// Picture is text art cut into rows x cols fragments of cellW x cellH runes.
// Fragment i belongs at home cell (i/cols, i%cols).
type Picture struct {
	rows, cols   int
	cellW, cellH int
	grid         [][]rune
}

// NewPicture fits lines to the board size, padding short lines with spaces
// and cropping anything beyond the last fragment.
func NewPicture(lines []string, rows, cols, cellW, cellH int) *Picture {
	w := cols * cellW
	h := rows * cellH

	grid := make([][]rune, h)
	for y := range h {
		row := make([]rune, w)
		for x := range row {
			row[x] = ' '
		}
		if y < len(lines) {
			x := 0
			for _, r := range lines[y] {
				if x >= w {
					break
				}
				if r == '\t' {
					r = ' '
				}
				row[x] = r
				x++
			}
		}
		grid[y] = row
	}

	return &Picture{rows: rows, cols: cols, cellW: cellW, cellH: cellH, grid: grid}
}

// Fragment returns the cellH lines of the tile with the given identity.
// Unknown identities yield blank lines.
func (p *Picture) Fragment(id int) []string {
	out := make([]string, p.cellH)
	if id < 0 || id >= p.rows*p.cols {
		blank := make([]rune, p.cellW)
		for i := range blank {
			blank[i] = ' '
		}
		for i := range out {
			out[i] = string(blank)
		}
		return out
	}

	top := (id / p.cols) * p.cellH
	left := (id % p.cols) * p.cellW
	for i := range out {
		out[i] = string(p.grid[top+i][left : left+p.cellW])
	}
	return out
}

// Lines returns the whole picture as fitted to the board.
func (p *Picture) Lines() []string {
	out := make([]string, len(p.grid))
	for i, row := range p.grid {
		out[i] = string(row)
	}
	return out
}
