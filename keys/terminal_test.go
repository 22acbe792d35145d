package keys

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestEncodeBytes(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want []byte
	}{
		{"rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, []byte("a")},
		{"multibyte runes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("日本")}, []byte("日本")},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, []byte(" ")},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, []byte{0x0d}},
		{"backspace", tea.KeyMsg{Type: tea.KeyBackspace}, []byte{0x08}},
		{"tab", tea.KeyMsg{Type: tea.KeyTab}, []byte{0x09}},
		{"up", tea.KeyMsg{Type: tea.KeyUp}, []byte("\x1b[A")},
		{"down", tea.KeyMsg{Type: tea.KeyDown}, []byte("\x1b[B")},
		{"right", tea.KeyMsg{Type: tea.KeyRight}, []byte("\x1b[C")},
		{"left", tea.KeyMsg{Type: tea.KeyLeft}, []byte("\x1b[D")},
		{"ctrl+a", tea.KeyMsg{Type: tea.KeyCtrlA}, []byte{0x01}},
		{"ctrl+d", tea.KeyMsg{Type: tea.KeyCtrlD}, []byte{0x04}},
		{"ctrl+l", tea.KeyMsg{Type: tea.KeyCtrlL}, []byte{0x0c}},
		{"ctrl+z", tea.KeyMsg{Type: tea.KeyCtrlZ}, []byte{0x1a}},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}, []byte{0x03}},
		{"alt+rune dropped", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}, nil},
		{"f1 dropped", tea.KeyMsg{Type: tea.KeyF1}, nil},
		{"delete dropped", tea.KeyMsg{Type: tea.KeyDelete}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in TerminalInput
			got := in.Encode(tt.msg)
			assert.Equal(t, tt.want, got.Bytes)
			assert.False(t, got.Detach)
		})
	}
}

func TestEscDetaches(t *testing.T) {
	var in TerminalInput
	got := in.Encode(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, got.Detach)
	assert.Empty(t, got.Bytes)
}

func TestCtrlCAdvisory(t *testing.T) {
	var in TerminalInput
	assert.Empty(t, in.Advisory())

	in.Encode(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, AdvisoryText, in.Advisory())

	// Repeated Ctrl+C keeps it up.
	in.Encode(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, AdvisoryText, in.Advisory())

	in.Encode(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	assert.Empty(t, in.Advisory())
}

func TestAnyOtherKeyClearsAdvisory(t *testing.T) {
	others := []tea.KeyMsg{
		{Type: tea.KeyEsc},
		{Type: tea.KeyF5},
		{Type: tea.KeyRunes, Runes: []rune("q"), Alt: true},
		{Type: tea.KeyEnter},
	}
	for _, msg := range others {
		var in TerminalInput
		in.Encode(tea.KeyMsg{Type: tea.KeyCtrlC})
		in.Encode(msg)
		assert.Empty(t, in.Advisory(), msg.String())
	}
}

func TestClearAdvisory(t *testing.T) {
	var in TerminalInput
	in.Encode(tea.KeyMsg{Type: tea.KeyCtrlC})
	in.ClearAdvisory()
	assert.Empty(t, in.Advisory())
}

func TestEveryBindingHasHelp(t *testing.T) {
	for name, binding := range GlobalkeyBindings {
		assert.NotEmpty(t, binding.Help().Key, "binding %d", name)
		assert.NotEmpty(t, binding.Keys(), "binding %d", name)
	}
	for str, name := range GlobalKeyStringsMap {
		_, ok := GlobalkeyBindings[name]
		assert.True(t, ok, "%q maps to a key without a binding", str)
	}
}
