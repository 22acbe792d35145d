package ui

import (
	"strings"

	"workman/config"
	"workman/session"

	"github.com/charmbracelet/lipgloss"
)

const treeTitle = "Repos & Worktrees"

const (
	branchMid  = "├── "
	branchLast = "└── "
)

var (
	projectStyle  = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	selectedStyle = lipgloss.NewStyle().Background(BackgroundSelected)
	liveStyle     = lipgloss.NewStyle().Foreground(StatusSuccess)
)

// TreeItem is one row of the project tree.
type TreeItem struct {
	Key    session.Key
	Name   string
	Status string
	Live   bool
	Last   bool
}

// Label is the plain text of the row without styling.
func (t TreeItem) Label() string {
	if !t.Key.IsWorktree() {
		return t.Name
	}
	prefix := branchMid
	if t.Last {
		prefix = branchLast
	}
	label := prefix + t.Name
	if t.Status != "" {
		label += " (" + t.Status + ")"
	}
	return label
}

// Tree lists projects with their worktrees below them.
type Tree struct {
	items    []TreeItem
	selected int
}

func NewTree() *Tree {
	return &Tree{}
}

// SetProjects rebuilds the rows from projects. statuses holds the last known
// status text per worktree and live marks worktrees with a running shell. The
// selection stays on the same key when it still exists.
func (t *Tree) SetProjects(projects []config.Project, statuses map[session.Key]string, live map[session.Key]bool) {
	prev, hadPrev := t.Selected()

	t.items = t.items[:0]
	for p, proj := range projects {
		t.items = append(t.items, TreeItem{Key: session.ProjectKey(p), Name: proj.Name})
		for w, wt := range proj.Worktrees {
			k := session.WorktreeKey(p, w)
			t.items = append(t.items, TreeItem{
				Key:    k,
				Name:   wt.Name,
				Status: statuses[k],
				Live:   live[k],
				Last:   w == len(proj.Worktrees)-1,
			})
		}
	}

	if hadPrev && t.Select(prev.Key) {
		return
	}
	t.selected = min(t.selected, max(len(t.items)-1, 0))
}

// Items returns the current rows.
func (t *Tree) Items() []TreeItem {
	return t.items
}

// Selected returns the highlighted row, if any.
func (t *Tree) Selected() (TreeItem, bool) {
	if len(t.items) == 0 {
		return TreeItem{}, false
	}
	return t.items[t.selected], true
}

// Select moves the highlight to k and reports whether k exists.
func (t *Tree) Select(k session.Key) bool {
	for i, it := range t.items {
		if it.Key == k {
			t.selected = i
			return true
		}
	}
	return false
}

// Up moves the highlight one row up, wrapping to the bottom.
func (t *Tree) Up() {
	if len(t.items) == 0 {
		return
	}
	t.selected = (t.selected - 1 + len(t.items)) % len(t.items)
}

// Down moves the highlight one row down, wrapping to the top.
func (t *Tree) Down() {
	if len(t.items) == 0 {
		return
	}
	t.selected = (t.selected + 1) % len(t.items)
}

// Render draws the tree as a width x height pane.
func (t *Tree) Render(width, height int, focused bool) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	cols, rows := PaneInnerSize(width, height)

	// Scroll so the selection stays visible.
	first := 0
	if t.selected >= rows {
		first = t.selected - rows + 1
	}

	var lines []string
	if len(t.items) == 0 {
		lines = append(lines, TextStyles.Muted.Render(fitLine("press 'a' to add a project", cols)))
	}
	for i := first; i < len(t.items) && len(lines) < rows; i++ {
		lines = append(lines, t.renderItem(t.items[i], i == t.selected, cols))
	}
	return renderPane(treeTitle, lines, width, height, focused)
}

func (t *Tree) renderItem(it TreeItem, selected bool, cols int) string {
	text := it.Label()
	if it.Live {
		text += " " + IconLive
	}
	text = fitLine(text, cols)

	var style lipgloss.Style
	switch {
	case !it.Key.IsWorktree():
		style = projectStyle
	case it.Status == "":
		style = TextStyles.Muted
	case it.Status == "clean":
		style = StatusStyles.Success
	default:
		style = StatusStyles.Error
	}
	if selected {
		style = style.Inherit(selectedStyle)
	}
	if it.Live && strings.HasSuffix(strings.TrimRight(text, " "), IconLive) && !selected {
		// Icon keeps its own color on unselected rows.
		i := strings.LastIndex(text, IconLive)
		return style.Render(text[:i]) + liveStyle.Render(IconLive) + style.Render(text[i+len(IconLive):])
	}
	return style.Render(text)
}
