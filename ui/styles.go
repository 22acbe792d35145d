package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"
)

// Status colors
var (
	// StatusSuccess marks clean worktrees and successful operations.
	StatusSuccess = lipgloss.AdaptiveColor{Light: "#22C55E", Dark: "#22C55E"}

	// StatusWarning marks the Ctrl+C advisory.
	StatusWarning = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#F59E0B"}

	// StatusError marks dirty worktrees and errors.
	StatusError = lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#EF4444"}
)

// UI chrome colors - structural elements
var (
	// Primary is the accent/focus color
	Primary = lipgloss.AdaptiveColor{Light: "#7D56F4", Dark: "#7D56F4"}

	// Border is the default border color
	Border = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#3C3C3C"}

	// BorderFocus is the border color for the pane that receives keys
	BorderFocus = lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FACC15"}

	// TextPrimary is the main text color
	TextPrimary = lipgloss.AdaptiveColor{Light: "#1a1a1a", Dark: "#dddddd"}

	// TextMuted is for hints and subtle text
	TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}

	// BackgroundSelected is for the selected tree row
	BackgroundSelected = lipgloss.AdaptiveColor{Light: "#dde4f0", Dark: "#3C3C4C"}
)

// Live marks worktrees that have a running shell.
const IconLive = "●"

// StatusStyles contains pre-built styles for each status type
var StatusStyles = struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}{
	Success: lipgloss.NewStyle().Foreground(StatusSuccess),
	Warning: lipgloss.NewStyle().Foreground(StatusWarning),
	Error:   lipgloss.NewStyle().Foreground(StatusError),
}

// TextStyles contains pre-built styles for text elements
var TextStyles = struct {
	Primary lipgloss.Style
	Muted   lipgloss.Style
	Title   lipgloss.Style
}{
	Primary: lipgloss.NewStyle().Foreground(TextPrimary),
	Muted:   lipgloss.NewStyle().Foreground(TextMuted),
	Title:   lipgloss.NewStyle().Bold(true).Foreground(Primary),
}

// BorderStyles contains pre-built styles for bordered elements
var BorderStyles = struct {
	Default lipgloss.Style
	Focus   lipgloss.Style
}{
	Default: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(Border),
	Focus: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderFocus),
}

// PaneInnerSize returns the space inside a bordered pane, below its title line.
func PaneInnerSize(width, height int) (cols, rows int) {
	return max(width-2, 1), max(height-3, 1)
}

// renderPane draws a bordered box of exactly width x height with title on its
// first line and as many of lines as fit below it. Lines must already be clipped
// to the inner width.
func renderPane(title string, lines []string, width, height int, focused bool) string {
	innerW := max(width-2, 1)
	head := TextStyles.Title.Render(truncate.StringWithTail(title, uint(innerW), "…"))
	return renderBox(append([]string{head}, lines...), width, height, focused)
}

// renderBox draws lines inside a border of exactly width x height.
func renderBox(lines []string, width, height int, focused bool) string {
	innerW := max(width-2, 1)
	innerH := max(height-2, 1)
	if len(lines) > innerH {
		lines = lines[:innerH]
	}
	body := make([]string, innerH)
	copy(body, lines)

	style := BorderStyles.Default
	if focused {
		style = BorderStyles.Focus
	}
	return style.Width(innerW).Height(innerH).Render(strings.Join(body, "\n"))
}

// fitLine clips s to width printable columns and pads it with spaces.
func fitLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = truncate.String(s, uint(width))
	if pad := width - ansi.PrintableRuneWidth(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}
