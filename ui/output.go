package ui

import (
	"strings"
)

const (
	outputTitle   = "Output / Terminal"
	terminalTitle = "Terminal (Attached)"
)

// Output is the main pane when no terminal is shown. It lists the last error
// and its detail, then command output, then the input prompt if one is active.
type Output struct {
	errMsg  string
	detail  string
	text    string
	lines   []string
	offset  int
	prompt  string
}

func NewOutput() *Output {
	return &Output{}
}

// SetError sets the error headline and its detail. Empty strings clear them.
func (o *Output) SetError(msg, detail string) {
	o.errMsg = msg
	o.detail = detail
}

// SetText replaces the command output and scrolls back to its top.
func (o *Output) SetText(text string) {
	o.text = text
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		o.lines = nil
	} else {
		o.lines = strings.Split(text, "\n")
	}
	o.offset = 0
}

// Text returns the output as last set.
func (o *Output) Text() string {
	return o.text
}

// SetPrompt shows an input line at the bottom of the pane. The prompt is
// rendered as given, so it may already carry a text input's view.
func (o *Output) SetPrompt(prompt string) {
	o.prompt = prompt
}

// Offset is the index of the first output line shown.
func (o *Output) Offset() int {
	return o.offset
}

// Scroll moves the output down one line and wraps to the top after the last.
func (o *Output) Scroll() {
	if o.offset+1 < len(o.lines) {
		o.offset++
	} else {
		o.offset = 0
	}
}

// Render draws the pane. title defaults to the output title when empty.
func (o *Output) Render(title string, width, height int, focused bool) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	if title == "" {
		title = outputTitle
	}
	cols, rows := PaneInnerSize(width, height)

	var head []string
	if o.errMsg != "" {
		head = append(head, StatusStyles.Error.Render(fitLine("ERROR: "+o.errMsg, cols)))
		if o.detail != "" {
			head = append(head, StatusStyles.Error.Render(fitLine("DETAIL: "+firstLine(o.detail), cols)))
		}
	}
	var tail []string
	if o.prompt != "" {
		tail = append(tail, fitLine(o.prompt, cols))
	}

	visible := max(rows-len(head)-len(tail), 0)
	lines := head
	for i := o.offset; i < len(o.lines) && i < o.offset+visible; i++ {
		lines = append(lines, fitLine(o.lines[i], cols))
	}
	for len(lines) < rows-len(tail) {
		lines = append(lines, "")
	}
	lines = append(lines, tail...)
	return renderPane(title, lines, width, height, focused)
}

// TerminalTitle is the main pane title while a session has the keyboard.
func TerminalTitle(attached bool) string {
	if attached {
		return terminalTitle
	}
	return outputTitle
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
