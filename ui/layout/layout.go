// Package layout computes pane geometry for the dashboard from the terminal size.
package layout

// LayoutMode represents the current layout mode based on terminal dimensions.
type LayoutMode int

const (
	// LayoutStandard shows the tree beside the terminal pane with a two-line help bar.
	LayoutStandard LayoutMode = iota

	// LayoutCompact drops the help bar to one line.
	LayoutCompact

	// LayoutMinimal stacks the tree above the terminal pane for narrow terminals.
	LayoutMinimal
)

// String returns the string representation of the layout mode.
func (m LayoutMode) String() string {
	switch m {
	case LayoutStandard:
		return "standard"
	case LayoutCompact:
		return "compact"
	case LayoutMinimal:
		return "minimal"
	default:
		return "unknown"
	}
}

const (
	// MinWidth and MinHeight are the smallest sizes laid out side by side.
	MinWidth  = 60
	MinHeight = 16

	// CompactHeight is the height below which the help bar uses one line.
	CompactHeight = 30

	// TreePercent is the share of the width given to the project tree.
	TreePercent = 0.33

	TreeMinWidth = 20
	TreeMaxWidth = 60

	// StatusHeight is the error/advisory line between the help bar and the main pane.
	StatusHeight = 1

	// PaneBorder is the rows and columns a bordered pane spends on its border.
	PaneBorder = 2

	// PaneTitleHeight is the title line inside a bordered pane.
	PaneTitleHeight = 1
)

// DetermineMode calculates the appropriate layout mode for the given dimensions.
func DetermineMode(width, height int) LayoutMode {
	switch {
	case width < MinWidth:
		return LayoutMinimal
	case height < CompactHeight:
		return LayoutCompact
	default:
		return LayoutStandard
	}
}

// Constraints holds the computed geometry of every pane.
type Constraints struct {
	TerminalWidth  int
	TerminalHeight int

	Mode LayoutMode

	TreeWidth  int
	TreeHeight int

	// Main is the pane showing the attached terminal or command output.
	MainWidth  int
	MainHeight int

	StatusWidth int
	HelpWidth   int
	HelpHeight  int

	UseVerticalStack bool
	ShowMinWarning   bool
}

// ComputeConstraints calculates layout constraints for the given terminal dimensions.
// The tree takes the left column; the help bar, the status line and the main pane
// are stacked in the right one. Every dimension is at least one so panes never collapse.
func ComputeConstraints(width, height int) Constraints {
	c := Constraints{
		TerminalWidth:  width,
		TerminalHeight: height,
		Mode:           DetermineMode(width, height),
		ShowMinWarning: width < MinWidth || height < MinHeight,
	}

	helpLines := 2
	if c.Mode != LayoutStandard {
		helpLines = 1
	}
	c.HelpHeight = helpLines + PaneBorder

	rightHeight := height
	if c.Mode == LayoutMinimal {
		c.UseVerticalStack = true
		c.TreeWidth = max(width, 1)
		c.TreeHeight = max(height/3, 1)
		rightHeight = height - c.TreeHeight
	} else {
		c.TreeWidth = clamp(int(float32(width)*TreePercent), TreeMinWidth, TreeMaxWidth)
		c.TreeHeight = max(height, 1)
	}

	rightWidth := width
	if !c.UseVerticalStack {
		rightWidth = width - c.TreeWidth
	}
	c.MainWidth = max(rightWidth, 1)
	c.HelpWidth = c.MainWidth
	c.StatusWidth = c.MainWidth
	c.MainHeight = max(rightHeight-c.HelpHeight-StatusHeight, 1)
	return c
}

// TerminalSize returns the columns and rows available to a shell inside the
// main pane: the pane minus its border and title line.
func (c Constraints) TerminalSize() (cols, rows int) {
	return max(c.MainWidth-PaneBorder, 1), max(c.MainHeight-PaneBorder-PaneTitleHeight, 1)
}

// HelpLines returns how many lines of key help fit in the help bar.
func (c Constraints) HelpLines() int {
	return c.HelpHeight - PaneBorder
}

func clamp(value, minVal, maxVal int) int {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
