package ui

import (
	"strings"

	"workman/keys"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// HelpState is the input mode the help bar describes.
type HelpState int

const (
	HelpNormal HelpState = iota
	HelpProjectPath
	HelpWorktreeName
	HelpDiff
	HelpCommitMessage
	HelpTerminal
)

// Selection is what the tree highlight is on.
type Selection int

const (
	SelectNone Selection = iota
	SelectProject
	SelectWorktree
)

var (
	keyStyle  = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	descStyle = lipgloss.NewStyle().Foreground(TextMuted)
	sepStyle  = lipgloss.NewStyle().Foreground(Border)
	modeStyle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
)

const separator = " • "

var (
	projectActions  = []keys.KeyName{keys.KeyAddProject, keys.KeyDeleteProject, keys.KeyAddWorktree}
	worktreeActions = []keys.KeyName{keys.KeyAttach, keys.KeyPush, keys.KeyRemoveWorktree, keys.KeyDiff, keys.KeyKill}
	globalActions   = []keys.KeyName{keys.KeyUp, keys.KeyDown, keys.KeyQuit, keys.KeyExportLog}
)

// modeHelp is the one-line prompt shown outside Normal mode.
var modeHelp = map[HelpState]struct {
	title string
	keys  []keys.KeyName
}{
	HelpProjectPath:   {"Enter project path", []keys.KeyName{keys.KeyTab, keys.KeyEnter, keys.KeyEsc}},
	HelpWorktreeName:  {"Enter worktree name", []keys.KeyName{keys.KeyEnter, keys.KeyEsc}},
	HelpDiff:          {"Viewing diff", []keys.KeyName{keys.KeyScroll, keys.KeyEsc}},
	HelpCommitMessage: {"Enter commit message (empty for auto)", []keys.KeyName{keys.KeyEnter, keys.KeyEsc}},
	HelpTerminal:      {"Terminal mode", []keys.KeyName{keys.KeyDetach}},
}

// HelpBar shows the keys available in the current mode.
type HelpBar struct {
	state     HelpState
	selection Selection
}

func NewHelpBar() *HelpBar {
	return &HelpBar{}
}

func (h *HelpBar) SetState(state HelpState) {
	h.state = state
}

func (h *HelpBar) SetSelection(sel Selection) {
	h.selection = sel
}

// Lines returns the unstyled help text, one entry per line. Normal mode gets
// a line for the selection's actions and one for global keys.
func (h *HelpBar) Lines() []string {
	if h.state != HelpNormal {
		m := modeHelp[h.state]
		return []string{m.title + ": " + plainBindings(m.keys)}
	}
	var lines []string
	switch h.selection {
	case SelectProject:
		lines = append(lines, plainBindings(projectActions))
	case SelectWorktree:
		lines = append(lines, plainBindings(worktreeActions))
	}
	return append(lines, plainBindings(globalActions))
}

// Render draws the help bar as a width x height box. When fewer lines fit than
// the mode needs, the lines are joined with a separator and truncated.
func (h *HelpBar) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	cols := max(width-2, 1)
	rows := max(height-2, 1)

	var groups [][]string
	if h.state != HelpNormal {
		m := modeHelp[h.state]
		groups = [][]string{append([]string{modeStyle.Render(m.title + ":")}, styledBindings(m.keys)...)}
	} else {
		switch h.selection {
		case SelectProject:
			groups = append(groups, styledBindings(projectActions))
		case SelectWorktree:
			groups = append(groups, styledBindings(worktreeActions))
		}
		groups = append(groups, styledBindings(globalActions))
	}

	sep := sepStyle.Render(separator)
	var lines []string
	if len(groups) > rows {
		var all []string
		for _, g := range groups {
			all = append(all, strings.Join(g, sep))
		}
		lines = []string{strings.Join(all, sepStyle.Render(" │ "))}
	} else {
		for _, g := range groups {
			lines = append(lines, strings.Join(g, sep))
		}
	}
	for i, l := range lines {
		lines[i] = truncate.StringWithTail(l, uint(cols), "…")
	}
	return renderBox(lines, width, height, false)
}

func bindings(names []keys.KeyName) []key.Binding {
	out := make([]key.Binding, 0, len(names))
	for _, n := range names {
		out = append(out, keys.GlobalkeyBindings[n])
	}
	return out
}

func plainBindings(names []keys.KeyName) string {
	var parts []string
	for _, b := range bindings(names) {
		parts = append(parts, b.Help().Key+" "+b.Help().Desc)
	}
	return strings.Join(parts, separator)
}

func styledBindings(names []keys.KeyName) []string {
	var parts []string
	for _, b := range bindings(names) {
		parts = append(parts, keyStyle.Render(b.Help().Key)+" "+descStyle.Render(b.Help().Desc))
	}
	return parts
}

// StatusLine renders the one-line status between the help bar and the output
// pane. An error wins over the advisory, which wins over busy text.
func StatusLine(errMsg, advisory, busy string, width int) string {
	if width <= 0 {
		return ""
	}
	switch {
	case errMsg != "":
		return StatusStyles.Error.Render(fitLine("Error: "+errMsg, width))
	case advisory != "":
		return StatusStyles.Warning.Render(fitLine(advisory, width))
	case busy != "":
		return TextStyles.Muted.Render(fitLine(busy, width))
	default:
		return fitLine("", width)
	}
}
