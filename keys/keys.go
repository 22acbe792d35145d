package keys

import (
	"github.com/charmbracelet/bubbles/key"
)

type KeyName int

const (
	KeyUp KeyName = iota
	KeyDown
	KeyEnter
	KeyEsc
	KeyTab

	KeyAddProject
	KeyDeleteProject
	KeyAddWorktree
	KeyRemoveWorktree
	KeyAttach
	KeyDiff
	KeyPush
	KeyKill
	KeyExportLog
	KeyQuit

	// KeyDetach is only used for the help text in terminal mode. The key itself
	// is handled by TerminalInput.
	KeyDetach
	// KeyScroll pages through the diff view.
	KeyScroll
)

// GlobalKeyStringsMap is a global, immutable map string to keybinding.
var GlobalKeyStringsMap = map[string]KeyName{
	"up":     KeyUp,
	"down":   KeyDown,
	"enter":  KeyEnter,
	"esc":    KeyEsc,
	"tab":    KeyTab,
	"a":      KeyAddProject,
	"x":      KeyDeleteProject,
	"w":      KeyAddWorktree,
	"r":      KeyRemoveWorktree,
	"c":      KeyAttach,
	"d":      KeyDiff,
	"p":      KeyPush,
	"k":      KeyKill,
	"ctrl+l": KeyExportLog,
	"q":      KeyQuit,
	"ctrl+c": KeyQuit,
}

// GlobalkeyBindings is a global, immutable map of KeyName to keybinding.
var GlobalkeyBindings = map[KeyName]key.Binding{
	KeyUp: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "up"),
	),
	KeyDown: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "down"),
	),
	KeyEnter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("↵", "confirm"),
	),
	KeyEsc: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	KeyTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "complete"),
	),
	KeyAddProject: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add project"),
	),
	KeyDeleteProject: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete project"),
	),
	KeyAddWorktree: key.NewBinding(
		key.WithKeys("w"),
		key.WithHelp("w", "add worktree"),
	),
	KeyRemoveWorktree: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "remove worktree"),
	),
	KeyAttach: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "terminal"),
	),
	KeyDiff: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "diff"),
	),
	KeyPush: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "commit & push"),
	),
	KeyKill: key.NewBinding(
		key.WithKeys("k"),
		key.WithHelp("k", "kill shell"),
	),
	KeyExportLog: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "export log"),
	),
	KeyQuit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	KeyDetach: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "detach"),
	),
	KeyScroll: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "scroll"),
	),
}
