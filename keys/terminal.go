package keys

import (
	tea "github.com/charmbracelet/bubbletea"

	"workman/log"
)

// AdvisoryText is shown after Ctrl+C is forwarded to an attached shell, since the
// user may have expected it to leave the terminal.
const AdvisoryText = "Ctrl-C sent. Use 'exit' or Ctrl-D to close the shell. Press Esc to detach."

// Action is what an attached terminal should do with one key press.
type Action struct {
	// Bytes are written to the PTY. Empty means nothing is sent.
	Bytes []byte
	// Detach returns focus to the dashboard. The shell keeps running.
	Detach bool
}

// TerminalInput translates key presses into the bytes a terminal would send.
// It also remembers whether the Ctrl+C advisory is showing.
type TerminalInput struct {
	advisory bool
}

// Encode translates one key press. Keys without a mapping produce no bytes,
// and every key except Ctrl+C clears the advisory.
func (t *TerminalInput) Encode(msg tea.KeyMsg) Action {
	if msg.Type != tea.KeyCtrlC {
		t.advisory = false
	}
	// Alt sends a meta prefix on a real terminal; it has no mapping here.
	if msg.Alt {
		log.InputTrace("dropped alt key %q", msg.String())
		return Action{}
	}

	switch msg.Type {
	case tea.KeyRunes:
		return Action{Bytes: []byte(string(msg.Runes))}
	case tea.KeySpace:
		return Action{Bytes: []byte{' '}}
	case tea.KeyEsc:
		return Action{Detach: true}
	case tea.KeyBackspace:
		return Action{Bytes: []byte{0x08}}
	case tea.KeyUp:
		return Action{Bytes: []byte("\x1b[A")}
	case tea.KeyDown:
		return Action{Bytes: []byte("\x1b[B")}
	case tea.KeyRight:
		return Action{Bytes: []byte("\x1b[C")}
	case tea.KeyLeft:
		return Action{Bytes: []byte("\x1b[D")}
	case tea.KeyCtrlC:
		t.advisory = true
		return Action{Bytes: []byte{0x03}}
	}

	// Ctrl+A through Ctrl+Z share their values with the control bytes they send.
	// Tab (Ctrl+I), Enter (Ctrl+M) and Ctrl+H fall in this range too.
	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		return Action{Bytes: []byte{byte(msg.Type)}}
	}

	log.InputTrace("no mapping for key %q", msg.String())
	return Action{}
}

// Advisory returns the advisory text, or "" when none is showing.
func (t *TerminalInput) Advisory() string {
	if t.advisory {
		return AdvisoryText
	}
	return ""
}

// ClearAdvisory hides the advisory.
func (t *TerminalInput) ClearAdvisory() {
	t.advisory = false
}
