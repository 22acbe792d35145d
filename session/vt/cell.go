package vt

import "strings"

// Cell is one character position on the screen.
//
// Width is 1 for ordinary characters and 2 for the leading half of a wide
// character. The trailing half of a wide character has Width 0 and empty Content.
type Cell struct {
	Content   string
	Fg, Bg    Color
	Bold      bool
	Faint     bool
	Italic    bool
	Underline bool
	Inverse   bool
	Width     int
}

func blankCell(bg Color) Cell {
	return Cell{Content: " ", Bg: bg, Width: 1}
}

// IsContinuation reports whether the cell is covered by a wide character to its left.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

func blankRow(cols int, bg Color) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = blankCell(bg)
	}
	return row
}

func copyRow(row []Cell) []Cell {
	out := make([]Cell, len(row))
	copy(out, row)
	return out
}

// Grid is an immutable copy of the visible screen.
type Grid struct {
	Cols, Rows    int
	Cells         [][]Cell
	CursorX       int
	CursorY       int
	CursorVisible bool
}

// Line returns row y as plain text with trailing blanks removed.
func (g Grid) Line(y int) string {
	if y < 0 || y >= len(g.Cells) {
		return ""
	}
	return rowText(g.Cells[y])
}

// Text returns the visible screen as plain text, one line per row.
func (g Grid) Text() string {
	lines := make([]string, len(g.Cells))
	for y := range g.Cells {
		lines[y] = rowText(g.Cells[y])
	}
	return strings.Join(lines, "\n")
}

// At returns the cell at column x, row y, or a blank cell when out of range.
func (g Grid) At(x, y int) Cell {
	if y < 0 || y >= len(g.Cells) || x < 0 || x >= len(g.Cells[y]) {
		return blankCell(DefaultColor)
	}
	return g.Cells[y][x]
}

func rowText(row []Cell) string {
	var b strings.Builder
	for _, c := range row {
		if c.IsContinuation() {
			continue
		}
		b.WriteString(c.Content)
	}
	return strings.TrimRight(b.String(), " ")
}
