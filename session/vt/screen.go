// Package vt is a small terminal emulator: it turns the byte stream a shell writes
// into a grid of styled cells, the way an xterm-compatible terminal would display it.
//
// A Screen is not safe for concurrent use. Callers that feed it from a reader
// goroutine and snapshot it from the UI must hold their own lock.
package vt

import (
	"fmt"

	"github.com/mattn/go-runewidth"
)

const (
	// DefaultScrollback is the number of history rows kept when none is configured.
	DefaultScrollback = 1000

	tabWidth = 8
)

type pen struct {
	fg, bg    Color
	bold      bool
	faint     bool
	italic    bool
	underline bool
	inverse   bool
}

func (p pen) apply(c *Cell) {
	c.Fg = p.fg
	c.Bg = p.bg
	c.Bold = p.bold
	c.Faint = p.faint
	c.Italic = p.italic
	c.Underline = p.underline
	c.Inverse = p.inverse
}

type cursor struct {
	x, y int
	pen  pen
	// wrapNext is set after printing into the last column. The wrap happens on the
	// next printable character so that a CR right after a full line does not scroll.
	wrapNext bool
}

// Screen holds the visible grid, the cursor, the scrollback history and the
// parser state that survives between writes.
type Screen struct {
	cols, rows int
	cells      [][]Cell

	cur      cursor
	saved    cursor
	hasSaved bool

	// Scroll region, inclusive row indexes.
	top, bottom int

	cursorVisible bool
	title         string

	scrollback    [][]Cell
	maxScrollback int

	parser  parser
	replies []byte
}

// NewScreen returns a blank screen. Sizes below one are raised to one and a
// negative scrollback keeps no history.
func NewScreen(cols, rows, scrollback int) *Screen {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if scrollback < 0 {
		scrollback = 0
	}
	s := &Screen{
		cols:          cols,
		rows:          rows,
		maxScrollback: scrollback,
	}
	s.reset()
	return s
}

func (s *Screen) reset() {
	s.cells = make([][]Cell, s.rows)
	for y := range s.cells {
		s.cells[y] = blankRow(s.cols, DefaultColor)
	}
	s.cur = cursor{}
	s.saved = cursor{}
	s.hasSaved = false
	s.top = 0
	s.bottom = s.rows - 1
	s.cursorVisible = true
	s.title = ""
	s.parser.reset()
}

// Write feeds shell output to the emulator. It never fails; the error is there
// so a Screen can be used as an io.Writer.
func (s *Screen) Write(p []byte) (int, error) {
	for _, b := range p {
		s.parser.feed(s, b)
	}
	return len(p), nil
}

// TakeReplies returns and clears the bytes the emulator wants to send back to
// the program, such as cursor position reports.
func (s *Screen) TakeReplies() []byte {
	if len(s.replies) == 0 {
		return nil
	}
	out := s.replies
	s.replies = nil
	return out
}

func (s *Screen) reply(format string, args ...interface{}) {
	s.replies = append(s.replies, fmt.Sprintf(format, args...)...)
}

// Size returns the current geometry.
func (s *Screen) Size() (cols, rows int) {
	return s.cols, s.rows
}

// Title returns the last window title set with OSC 0 or OSC 2.
func (s *Screen) Title() string {
	return s.title
}

// Snapshot returns a deep copy of the visible grid.
func (s *Screen) Snapshot() Grid {
	cells := make([][]Cell, len(s.cells))
	for y, row := range s.cells {
		cells[y] = copyRow(row)
	}
	return Grid{
		Cols:          s.cols,
		Rows:          s.rows,
		Cells:         cells,
		CursorX:       s.cur.x,
		CursorY:       s.cur.y,
		CursorVisible: s.cursorVisible,
	}
}

// Scrollback returns a copy of the history rows, oldest first.
func (s *Screen) Scrollback() [][]Cell {
	out := make([][]Cell, len(s.scrollback))
	for i, row := range s.scrollback {
		out[i] = copyRow(row)
	}
	return out
}

// Resize changes the geometry. When rows shrink, blank rows under the cursor are
// dropped first and the rest of the excess goes from the top into the scrollback,
// so the bottom-most content stays visible.
func (s *Screen) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cols == s.cols && rows == s.rows {
		return
	}

	if rows < s.rows {
		excess := s.rows - rows
		for excess > 0 && len(s.cells)-1 > s.cur.y && rowBlank(s.cells[len(s.cells)-1]) {
			s.cells = s.cells[:len(s.cells)-1]
			excess--
		}
		if excess > 0 {
			for _, row := range s.cells[:excess] {
				s.pushScrollback(row)
			}
			s.cells = s.cells[excess:]
			s.cur.y -= excess
			s.saved.y -= excess
		}
	}
	for len(s.cells) < rows {
		s.cells = append(s.cells, blankRow(s.cols, DefaultColor))
	}

	if cols != s.cols {
		for y, row := range s.cells {
			s.cells[y] = resizeRow(row, cols)
		}
	}

	s.cols = cols
	s.rows = rows
	s.top = 0
	s.bottom = rows - 1
	s.cur.wrapNext = false
	s.cur.x = clamp(s.cur.x, 0, cols-1)
	s.cur.y = clamp(s.cur.y, 0, rows-1)
	s.saved.x = clamp(s.saved.x, 0, cols-1)
	s.saved.y = clamp(s.saved.y, 0, rows-1)
}

func resizeRow(row []Cell, cols int) []Cell {
	if len(row) >= cols {
		out := copyRow(row[:cols])
		if last := &out[cols-1]; last.Width == 2 {
			*last = blankCell(last.Bg)
		}
		return out
	}
	out := make([]Cell, cols)
	copy(out, row)
	for x := len(row); x < cols; x++ {
		out[x] = blankCell(DefaultColor)
	}
	return out
}

func rowBlank(row []Cell) bool {
	for _, c := range row {
		if c.Content != " " || !c.Bg.IsDefault() {
			return false
		}
	}
	return true
}

func (s *Screen) pushScrollback(row []Cell) {
	if s.maxScrollback == 0 {
		return
	}
	s.scrollback = append(s.scrollback, copyRow(row))
	if over := len(s.scrollback) - s.maxScrollback; over > 0 {
		// Reslicing alone would pin the old rows in the backing array.
		trimmed := make([][]Cell, s.maxScrollback)
		copy(trimmed, s.scrollback[over:])
		s.scrollback = trimmed
	}
}

// print places one rune at the cursor and advances it.
func (s *Screen) print(r rune) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		s.combine(r)
		return
	}
	if w > 2 {
		w = 2
	}
	if w == 2 && s.cols < 2 {
		r, w = '?', 1
	}

	if s.cur.wrapNext {
		s.cur.x = 0
		s.lineFeed()
		s.cur.wrapNext = false
	}
	if w == 2 && s.cur.x == s.cols-1 {
		s.clearCell(s.cur.x, s.cur.y)
		s.cur.x = 0
		s.lineFeed()
	}

	s.clearCell(s.cur.x, s.cur.y)
	if w == 2 {
		s.clearCell(s.cur.x+1, s.cur.y)
	}

	row := s.cells[s.cur.y]
	c := Cell{Content: string(r), Width: w}
	s.cur.pen.apply(&c)
	row[s.cur.x] = c
	if w == 2 {
		cont := Cell{Width: 0}
		s.cur.pen.apply(&cont)
		row[s.cur.x+1] = cont
	}

	if next := s.cur.x + w; next >= s.cols {
		s.cur.x = s.cols - 1
		s.cur.wrapNext = true
	} else {
		s.cur.x = next
	}
}

// combine attaches a zero-width rune to the character before the cursor.
func (s *Screen) combine(r rune) {
	x, y := s.cur.x, s.cur.y
	if !s.cur.wrapNext {
		x--
	}
	if x < 0 {
		return
	}
	row := s.cells[y]
	if row[x].IsContinuation() && x > 0 {
		x--
	}
	row[x].Content += string(r)
}

// clearCell blanks a cell together with the other half of any wide character it belongs to.
func (s *Screen) clearCell(x, y int) {
	if x < 0 || x >= s.cols {
		return
	}
	row := s.cells[y]
	switch {
	case row[x].Width == 2 && x+1 < s.cols:
		row[x+1] = blankCell(row[x+1].Bg)
	case row[x].IsContinuation() && x > 0:
		row[x-1] = blankCell(row[x-1].Bg)
	}
	row[x] = blankCell(row[x].Bg)
}

func (s *Screen) lineFeed() {
	switch {
	case s.cur.y == s.bottom:
		s.scrollUp(1)
	case s.cur.y < s.rows-1:
		s.cur.y++
	}
}

func (s *Screen) reverseIndex() {
	switch {
	case s.cur.y == s.top:
		s.scrollDown(1)
	case s.cur.y > 0:
		s.cur.y--
	}
}

// scrollUp moves the scroll region up by n rows. Rows leaving a full-screen
// region enter the scrollback.
func (s *Screen) scrollUp(n int) {
	height := s.bottom - s.top + 1
	if n > height {
		n = height
	}
	if n <= 0 {
		return
	}
	if s.top == 0 && s.bottom == s.rows-1 {
		for _, row := range s.cells[:n] {
			s.pushScrollback(row)
		}
	}
	copy(s.cells[s.top:s.bottom+1], s.cells[s.top+n:s.bottom+1])
	for y := s.bottom - n + 1; y <= s.bottom; y++ {
		s.cells[y] = blankRow(s.cols, s.cur.pen.bg)
	}
}

func (s *Screen) scrollDown(n int) {
	height := s.bottom - s.top + 1
	if n > height {
		n = height
	}
	if n <= 0 {
		return
	}
	copy(s.cells[s.top+n:s.bottom+1], s.cells[s.top:s.bottom+1-n])
	for y := s.top; y < s.top+n; y++ {
		s.cells[y] = blankRow(s.cols, s.cur.pen.bg)
	}
}

func (s *Screen) carriageReturn() {
	s.cur.x = 0
	s.cur.wrapNext = false
}

func (s *Screen) backspace() {
	if s.cur.x > 0 {
		s.cur.x--
	}
	s.cur.wrapNext = false
}

func (s *Screen) tab() {
	next := (s.cur.x/tabWidth + 1) * tabWidth
	s.cur.x = clamp(next, 0, s.cols-1)
}

func (s *Screen) moveTo(x, y int) {
	s.cur.x = clamp(x, 0, s.cols-1)
	s.cur.y = clamp(y, 0, s.rows-1)
	s.cur.wrapNext = false
}

// moveRows moves the cursor vertically without leaving the scroll region it is in.
func (s *Screen) moveRows(n int) {
	lo, hi := 0, s.rows-1
	if s.cur.y >= s.top && s.cur.y <= s.bottom {
		lo, hi = s.top, s.bottom
	}
	s.cur.y = clamp(s.cur.y+n, lo, hi)
	s.cur.wrapNext = false
}

func (s *Screen) saveCursor() {
	s.saved = s.cur
	s.hasSaved = true
}

func (s *Screen) restoreCursor() {
	if !s.hasSaved {
		s.moveTo(0, 0)
		s.cur.pen = pen{}
		return
	}
	s.cur = s.saved
	s.cur.x = clamp(s.cur.x, 0, s.cols-1)
	s.cur.y = clamp(s.cur.y, 0, s.rows-1)
}

func (s *Screen) eraseRange(y, from, to int) {
	row := s.cells[y]
	from = clamp(from, 0, s.cols)
	to = clamp(to, 0, s.cols)
	for x := from; x < to; x++ {
		s.clearCell(x, y)
		row[x] = blankCell(s.cur.pen.bg)
	}
}

// eraseDisplay implements ED. Mode 3 also drops the scrollback.
func (s *Screen) eraseDisplay(mode int) {
	switch mode {
	case 0:
		s.eraseRange(s.cur.y, s.cur.x, s.cols)
		for y := s.cur.y + 1; y < s.rows; y++ {
			s.eraseRange(y, 0, s.cols)
		}
	case 1:
		for y := 0; y < s.cur.y; y++ {
			s.eraseRange(y, 0, s.cols)
		}
		s.eraseRange(s.cur.y, 0, s.cur.x+1)
	case 2, 3:
		for y := 0; y < s.rows; y++ {
			s.eraseRange(y, 0, s.cols)
		}
		if mode == 3 {
			s.scrollback = nil
		}
	}
	s.cur.wrapNext = false
}

func (s *Screen) eraseLine(mode int) {
	switch mode {
	case 0:
		s.eraseRange(s.cur.y, s.cur.x, s.cols)
	case 1:
		s.eraseRange(s.cur.y, 0, s.cur.x+1)
	case 2:
		s.eraseRange(s.cur.y, 0, s.cols)
	}
	s.cur.wrapNext = false
}

func (s *Screen) insertLines(n int) {
	if s.cur.y < s.top || s.cur.y > s.bottom {
		return
	}
	top := s.top
	s.top = s.cur.y
	s.scrollDown(n)
	s.top = top
	s.cur.x = 0
	s.cur.wrapNext = false
}

func (s *Screen) deleteLines(n int) {
	if s.cur.y < s.top || s.cur.y > s.bottom {
		return
	}
	top := s.top
	s.top = s.cur.y
	// Lines deleted inside the screen never go to history.
	full := s.maxScrollback
	s.maxScrollback = 0
	s.scrollUp(n)
	s.maxScrollback = full
	s.top = top
	s.cur.x = 0
	s.cur.wrapNext = false
}

func (s *Screen) insertChars(n int) {
	row := s.cells[s.cur.y]
	x := s.cur.x
	n = clamp(n, 0, s.cols-x)
	s.clearCell(x, s.cur.y)
	copy(row[x+n:], row[x:s.cols-n])
	for i := x; i < x+n; i++ {
		row[i] = blankCell(s.cur.pen.bg)
	}
	if last := &row[s.cols-1]; last.Width == 2 {
		*last = blankCell(last.Bg)
	}
	s.cur.wrapNext = false
}

func (s *Screen) deleteChars(n int) {
	row := s.cells[s.cur.y]
	x := s.cur.x
	n = clamp(n, 0, s.cols-x)
	s.clearCell(x, s.cur.y)
	if x+n < s.cols {
		s.clearCell(x+n, s.cur.y)
	}
	copy(row[x:], row[x+n:])
	for i := s.cols - n; i < s.cols; i++ {
		row[i] = blankCell(s.cur.pen.bg)
	}
	s.cur.wrapNext = false
}

func (s *Screen) eraseChars(n int) {
	s.eraseRange(s.cur.y, s.cur.x, s.cur.x+n)
	s.cur.wrapNext = false
}

func (s *Screen) setScrollRegion(top, bottom int) {
	if bottom <= 0 || bottom > s.rows {
		bottom = s.rows
	}
	if top <= 0 {
		top = 1
	}
	if top >= bottom {
		return
	}
	s.top = top - 1
	s.bottom = bottom - 1
	s.moveTo(0, 0)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
