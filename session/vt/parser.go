package vt

import (
	"unicode/utf8"
)

type parseState int

const (
	stateGround parseState = iota
	stateEscape
	stateCharset
	stateCSI
	stateOSC
	stateOSCEscape
	stateString
	stateStringEscape
)

const (
	maxParams    = 32
	maxParamVal  = 65535
	maxOSCLength = 4096
)

// parser is the byte-level state machine. All of its state lives here so an escape
// sequence split across two writes is applied once it completes.
type parser struct {
	state parseState

	utf8buf  [utf8.UTFMax]byte
	utf8len  int
	utf8need int

	params []int
	// sub[i] is set when params[i] followed a ':', making it a sub-parameter
	// of the one before. colon records that separator for the next param.
	sub          []bool
	colon        bool
	cur          int
	hasCur       bool
	private      byte
	intermediate byte

	osc []byte
}

func (p *parser) reset() {
	p.state = stateGround
	p.utf8len = 0
	p.utf8need = 0
	p.clearParams()
	p.osc = p.osc[:0]
}

func (p *parser) clearParams() {
	p.params = p.params[:0]
	p.sub = p.sub[:0]
	p.colon = false
	p.cur = 0
	p.hasCur = false
	p.private = 0
	p.intermediate = 0
}

func (p *parser) feed(s *Screen, b byte) {
	switch p.state {
	case stateGround:
		p.ground(s, b)
	case stateEscape:
		p.escape(s, b)
	case stateCharset:
		p.state = stateGround
	case stateCSI:
		p.csi(s, b)
	case stateOSC:
		switch b {
		case 0x07:
			p.finishOSC(s)
		case 0x1b:
			p.state = stateOSCEscape
		default:
			if len(p.osc) < maxOSCLength {
				p.osc = append(p.osc, b)
			}
		}
	case stateOSCEscape:
		p.finishOSC(s)
		if b != '\\' {
			p.state = stateEscape
			p.escape(s, b)
		}
	case stateString:
		switch b {
		case 0x07:
			p.state = stateGround
		case 0x1b:
			p.state = stateStringEscape
		}
	case stateStringEscape:
		p.state = stateGround
		if b != '\\' {
			p.state = stateEscape
			p.escape(s, b)
		}
	}
}

func (p *parser) ground(s *Screen, b byte) {
	if p.utf8need > 0 {
		if b&0xc0 == 0x80 {
			p.utf8buf[p.utf8len] = b
			p.utf8len++
			if p.utf8len == p.utf8need {
				r, _ := utf8.DecodeRune(p.utf8buf[:p.utf8len])
				p.utf8need, p.utf8len = 0, 0
				s.print(r)
			}
			return
		}
		// Truncated sequence: emit a replacement and handle b on its own.
		p.utf8need, p.utf8len = 0, 0
		s.print(utf8.RuneError)
	}

	switch {
	case b < 0x20:
		p.execute(s, b)
	case b == 0x7f:
	case b < 0x80:
		s.print(rune(b))
	default:
		need := 0
		switch {
		case b >= 0xc2 && b <= 0xdf:
			need = 2
		case b >= 0xe0 && b <= 0xef:
			need = 3
		case b >= 0xf0 && b <= 0xf4:
			need = 4
		}
		if need == 0 {
			s.print(utf8.RuneError)
			return
		}
		p.utf8buf[0] = b
		p.utf8len = 1
		p.utf8need = need
	}
}

// execute runs a C0 control. It is also reached from inside escape sequences.
func (p *parser) execute(s *Screen, b byte) {
	switch b {
	case 0x08:
		s.backspace()
	case 0x09:
		s.tab()
	case 0x0a, 0x0b, 0x0c:
		s.lineFeed()
	case 0x0d:
		s.carriageReturn()
	case 0x18, 0x1a:
		p.state = stateGround
	case 0x1b:
		p.clearParams()
		p.state = stateEscape
	}
}

func (p *parser) escape(s *Screen, b byte) {
	if b < 0x20 {
		p.execute(s, b)
		return
	}
	p.state = stateGround
	switch b {
	case '[':
		p.clearParams()
		p.state = stateCSI
	case ']':
		p.osc = p.osc[:0]
		p.state = stateOSC
	case 'P', 'X', '^', '_':
		p.state = stateString
	case '(', ')', '*', '+', '-', '.', '/', '#', '%':
		p.state = stateCharset
	case '7':
		s.saveCursor()
	case '8':
		s.restoreCursor()
	case 'D':
		s.lineFeed()
	case 'E':
		s.carriageReturn()
		s.lineFeed()
	case 'M':
		s.reverseIndex()
	case 'c':
		scrollback := s.scrollback
		s.reset()
		s.scrollback = scrollback
	}
}

func (p *parser) csi(s *Screen, b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.cur = p.cur*10 + int(b-'0')
		if p.cur > maxParamVal {
			p.cur = maxParamVal
		}
		p.hasCur = true
	case b == ';':
		p.pushParam()
	case b == ':':
		p.pushParam()
		p.colon = true
	case b >= '<' && b <= '?':
		if len(p.params) == 0 && !p.hasCur {
			p.private = b
		}
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = b
	case b >= 0x40 && b <= 0x7e:
		if p.hasCur || len(p.params) > 0 {
			p.pushParam()
		}
		p.state = stateGround
		p.dispatchCSI(s, b)
	case b < 0x20:
		p.execute(s, b)
	}
}

func (p *parser) pushParam() {
	if len(p.params) < maxParams {
		p.params = append(p.params, p.cur)
		p.sub = append(p.sub, p.colon)
	}
	p.cur = 0
	p.hasCur = false
	p.colon = false
}

// param returns the i-th parameter, or def when it is missing or zero.
func (p *parser) param(i, def int) int {
	if i >= len(p.params) || p.params[i] == 0 {
		return def
	}
	return p.params[i]
}

func (p *parser) dispatchCSI(s *Screen, final byte) {
	if p.private == '?' {
		if final == 'h' || final == 'l' {
			for _, mode := range p.params {
				if mode == 25 {
					s.cursorVisible = final == 'h'
				}
			}
		}
		return
	}
	if p.private != 0 || p.intermediate != 0 {
		return
	}

	n := p.param(0, 1)
	switch final {
	case 'A':
		s.moveRows(-n)
	case 'B', 'e':
		s.moveRows(n)
	case 'C', 'a':
		s.moveTo(s.cur.x+n, s.cur.y)
	case 'D':
		s.moveTo(s.cur.x-n, s.cur.y)
	case 'E':
		s.moveRows(n)
		s.carriageReturn()
	case 'F':
		s.moveRows(-n)
		s.carriageReturn()
	case 'G', '`':
		s.moveTo(n-1, s.cur.y)
	case 'd':
		s.moveTo(s.cur.x, n-1)
	case 'H', 'f':
		s.moveTo(p.param(1, 1)-1, n-1)
	case 'J':
		s.eraseDisplay(p.param(0, 0))
	case 'K':
		s.eraseLine(p.param(0, 0))
	case 'L':
		s.insertLines(n)
	case 'M':
		s.deleteLines(n)
	case '@':
		s.insertChars(n)
	case 'P':
		s.deleteChars(n)
	case 'X':
		s.eraseChars(n)
	case 'S':
		s.scrollUp(n)
	case 'T':
		s.scrollDown(n)
	case 'r':
		s.setScrollRegion(p.param(0, 1), p.param(1, s.rows))
	case 'm':
		p.sgr(s)
	case 's':
		s.saveCursor()
	case 'u':
		s.restoreCursor()
	case 'n':
		switch p.param(0, 0) {
		case 5:
			s.reply("\x1b[0n")
		case 6:
			s.reply("\x1b[%d;%dR", s.cur.y+1, s.cur.x+1)
		}
	case 'c':
		if p.param(0, 0) == 0 {
			s.reply("\x1b[?1;2c")
		}
	}
}

func (p *parser) sgr(s *Screen) {
	params := p.params
	if len(params) == 0 {
		params = []int{0}
	}
	st := &s.cur.pen
	for i := 0; i < len(params); i++ {
		switch code := params[i]; {
		case code == 0:
			*st = pen{}
		case code == 1:
			st.bold = true
		case code == 2:
			st.faint = true
		case code == 3:
			st.italic = true
		case code == 4, code == 21:
			st.underline = true
		case code == 7:
			st.inverse = true
		case code == 22:
			st.bold = false
			st.faint = false
		case code == 23:
			st.italic = false
		case code == 24:
			st.underline = false
		case code == 27:
			st.inverse = false
		case code >= 30 && code <= 37:
			st.fg = Indexed(uint8(code - 30))
		case code == 38:
			c, used, ok := p.extendedColorAt(params, i)
			if ok {
				st.fg = c
			} else if used == 0 {
				return
			}
			i += used
		case code == 39:
			st.fg = DefaultColor
		case code >= 40 && code <= 47:
			st.bg = Indexed(uint8(code - 40))
		case code == 48:
			c, used, ok := p.extendedColorAt(params, i)
			if ok {
				st.bg = c
			} else if used == 0 {
				return
			}
			i += used
		case code == 49:
			st.bg = DefaultColor
		case code >= 90 && code <= 97:
			st.fg = Indexed(uint8(code - 90 + 8))
		case code >= 100 && code <= 107:
			st.bg = Indexed(uint8(code - 100 + 8))
		}
	}
}

// extendedColorAt parses the colour that follows the 38 or 48 at params[i]. The
// colon form "2:id:r:g:b" carries a colour space id, which is skipped; without
// it, "2:r:g:b" is read like the semicolon form. used counts the params consumed;
// a malformed colon group is still consumed whole.
func (p *parser) extendedColorAt(params []int, i int) (Color, int, bool) {
	n := 0
	for j := i + 1; j < len(params) && j < len(p.sub) && p.sub[j]; j++ {
		n++
	}
	if n == 0 {
		return extendedColor(params[i+1:])
	}

	args := params[i+1 : i+1+n]
	if args[0] == 2 && len(args) >= 5 {
		args = append([]int{2}, args[2:]...)
	}
	c, _, ok := extendedColor(args)
	return c, n, ok
}

// extendedColor parses the arguments after 38 or 48: "5;n" or "2;r;g;b".
func extendedColor(args []int) (Color, int, bool) {
	if len(args) == 0 {
		return Color{}, 0, false
	}
	switch args[0] {
	case 5:
		if len(args) < 2 {
			return Color{}, 0, false
		}
		return Indexed(uint8(clamp(args[1], 0, 255))), 2, true
	case 2:
		if len(args) < 4 {
			return Color{}, 0, false
		}
		return RGB(
			uint8(clamp(args[1], 0, 255)),
			uint8(clamp(args[2], 0, 255)),
			uint8(clamp(args[3], 0, 255)),
		), 4, true
	}
	return Color{}, 0, false
}

func (p *parser) finishOSC(s *Screen) {
	p.state = stateGround
	data := string(p.osc)
	p.osc = p.osc[:0]
	for i := 0; i < len(data); i++ {
		if data[i] != ';' {
			continue
		}
		if cmd := data[:i]; cmd == "0" || cmd == "2" {
			s.title = data[i+1:]
		}
		return
	}
}
