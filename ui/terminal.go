package ui

import (
	"strings"

	"workman/session/vt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// DisplayCell is the renderer's view of one terminal cell. Cells covered by
// the right half of a wide character have an empty Text.
type DisplayCell struct {
	Text      string
	Fg, Bg    vt.Color
	Bold      bool
	Faint     bool
	Italic    bool
	Underline bool
	Inverse   bool
}

func (d DisplayCell) sameStyle(o DisplayCell) bool {
	return d.Fg == o.Fg && d.Bg == o.Bg && d.Bold == o.Bold && d.Faint == o.Faint &&
		d.Italic == o.Italic && d.Underline == o.Underline && d.Inverse == o.Inverse
}

func (d DisplayCell) style() lipgloss.Style {
	s := lipgloss.NewStyle()
	if !d.Fg.IsDefault() {
		s = s.Foreground(lipgloss.Color(d.Fg.String()))
	}
	if !d.Bg.IsDefault() {
		s = s.Background(lipgloss.Color(d.Bg.String()))
	}
	if d.Bold {
		s = s.Bold(true)
	}
	if d.Faint {
		s = s.Faint(true)
	}
	if d.Italic {
		s = s.Italic(true)
	}
	if d.Underline {
		s = s.Underline(true)
	}
	if d.Inverse {
		s = s.Reverse(true)
	}
	return s
}

func (d DisplayCell) plain() bool {
	return d.Fg.IsDefault() && d.Bg.IsDefault() && !d.Bold && !d.Faint &&
		!d.Italic && !d.Underline && !d.Inverse
}

var blankDisplayCell = DisplayCell{Text: " "}

// Project maps a grid to display cells, one per grid cell. Any geometry is
// accepted, including an empty grid.
func Project(g vt.Grid) [][]DisplayCell {
	out := make([][]DisplayCell, len(g.Cells))
	for y, row := range g.Cells {
		line := make([]DisplayCell, len(row))
		for x, c := range row {
			text := c.Content
			if c.IsContinuation() {
				text = ""
			} else if text == "" {
				text = " "
			}
			line[x] = DisplayCell{
				Text:      text,
				Fg:        c.Fg,
				Bg:        c.Bg,
				Bold:      c.Bold,
				Faint:     c.Faint,
				Italic:    c.Italic,
				Underline: c.Underline,
				Inverse:   c.Inverse,
			}
		}
		out[y] = line
	}
	return out
}

// RenderGrid renders every row of g as styled text.
func RenderGrid(g vt.Grid) string {
	return strings.Join(renderRows(Project(g)), "\n")
}

func renderRows(cells [][]DisplayCell) []string {
	lines := make([]string, len(cells))
	for y, row := range cells {
		lines[y] = renderRow(row)
	}
	return lines
}

// renderRow merges adjacent cells that share a style into one styled run.
func renderRow(row []DisplayCell) string {
	var b, run strings.Builder
	var cur DisplayCell
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if cur.plain() {
			b.WriteString(run.String())
		} else {
			b.WriteString(cur.style().Render(run.String()))
		}
		run.Reset()
	}
	for i, c := range row {
		if i == 0 || !c.sameStyle(cur) {
			flush()
			cur = c
		}
		run.WriteString(c.Text)
	}
	flush()
	return b.String()
}

// clip fits cells into a cols x rows window, keeping the bottom rows. A wide
// character cut by the right edge becomes a blank. The cursor is drawn as an
// inverse cell when cursor is true.
func clip(g vt.Grid, cols, rows int, cursor bool) [][]DisplayCell {
	cells := Project(g)
	if cursor && g.CursorVisible && g.CursorY < len(cells) && g.CursorX < len(cells[g.CursorY]) {
		if c := &cells[g.CursorY][g.CursorX]; c.Text != "" {
			c.Inverse = !c.Inverse
		}
	}

	start := max(len(cells)-rows, 0)
	// Keep the cursor on screen when the pane is shorter than the grid.
	if cursor && g.CursorY >= 0 && g.CursorY < start {
		start = g.CursorY
	}
	out := make([][]DisplayCell, rows)
	for y := range out {
		line := make([]DisplayCell, cols)
		var src []DisplayCell
		if start+y < len(cells) {
			src = cells[start+y]
		}
		for x := range line {
			if x < len(src) {
				line[x] = src[x]
			} else {
				line[x] = blankDisplayCell
			}
		}
		// A wide character whose second half falls outside the pane is dropped.
		if cols > 0 && runewidth.StringWidth(line[cols-1].Text) > 1 {
			line[cols-1] = DisplayCell{Text: " ", Bg: line[cols-1].Bg}
		}
		out[y] = line
	}
	return out
}

// TerminalPane draws a session's screen inside a bordered, titled box.
type TerminalPane struct {
	width, height int
}

// NewTerminalPane creates a pane with no size. Call SetSize before rendering.
func NewTerminalPane() *TerminalPane {
	return &TerminalPane{}
}

// SetSize sets the outer size of the pane, border included.
func (t *TerminalPane) SetSize(width, height int) {
	t.width = width
	t.height = height
}

// InnerSize is the geometry a session shown in this pane should have.
func (t *TerminalPane) InnerSize() (cols, rows int) {
	return PaneInnerSize(t.width, t.height)
}

// Render draws g clipped or padded to the pane's inner size.
func (t *TerminalPane) Render(title string, g vt.Grid, showCursor, focused bool) string {
	if t.width <= 0 || t.height <= 0 {
		return ""
	}
	cols, rows := t.InnerSize()
	lines := renderRows(clip(g, cols, rows, showCursor))
	return renderPane(title, lines, t.width, t.height, focused)
}
