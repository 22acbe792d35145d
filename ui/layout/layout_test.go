package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineMode(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   LayoutMode
	}{
		{name: "large terminal", width: 200, height: 60, want: LayoutStandard},
		{name: "standard 80x24 is compact", width: 80, height: 24, want: LayoutCompact},
		{name: "exact compact threshold", width: 100, height: CompactHeight, want: LayoutStandard},
		{name: "narrow terminal stacks", width: 50, height: 40, want: LayoutMinimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineMode(tt.width, tt.height))
		})
	}
}

func TestComputeConstraintsSideBySide(t *testing.T) {
	c := ComputeConstraints(120, 40)

	assert.Equal(t, LayoutStandard, c.Mode)
	assert.False(t, c.UseVerticalStack)
	assert.Equal(t, 39, c.TreeWidth)
	assert.Equal(t, 81, c.MainWidth)
	assert.Equal(t, 4, c.HelpHeight)
	assert.Equal(t, 2, c.HelpLines())
	assert.Equal(t, 35, c.MainHeight)
	assert.Equal(t, 40, c.TreeHeight)
	assert.Equal(t, 81, c.HelpWidth)
	assert.Equal(t, c.TerminalHeight, c.MainHeight+c.HelpHeight+StatusHeight)

	cols, rows := c.TerminalSize()
	assert.Equal(t, 79, cols)
	assert.Equal(t, 32, rows)
}

func TestComputeConstraints80x24(t *testing.T) {
	c := ComputeConstraints(80, 24)
	assert.Equal(t, 24, c.TreeHeight)

	assert.Equal(t, LayoutCompact, c.Mode)
	assert.Equal(t, 1, c.HelpLines())
	assert.Equal(t, 26, c.TreeWidth)
	assert.Equal(t, 54, c.MainWidth)
	assert.Equal(t, 20, c.MainHeight)
	assert.False(t, c.ShowMinWarning)

	cols, rows := c.TerminalSize()
	assert.Equal(t, 52, cols)
	assert.Equal(t, 17, rows)
}

func TestTreeWidthIsClamped(t *testing.T) {
	assert.Equal(t, TreeMaxWidth, ComputeConstraints(300, 50).TreeWidth)
	assert.Equal(t, TreeMinWidth, ComputeConstraints(60, 50).TreeWidth)
}

func TestTinyTerminalsKeepPositiveSizes(t *testing.T) {
	for _, size := range [][2]int{{0, 0}, {1, 1}, {30, 5}, {59, 15}} {
		c := ComputeConstraints(size[0], size[1])
		assert.True(t, c.ShowMinWarning)
		assert.True(t, c.UseVerticalStack)
		assert.Positive(t, c.TreeWidth)
		assert.Positive(t, c.TreeHeight)
		assert.Positive(t, c.MainWidth)
		assert.Positive(t, c.MainHeight)

		cols, rows := c.TerminalSize()
		assert.Positive(t, cols)
		assert.Positive(t, rows)
	}
}

func TestLayoutModeString(t *testing.T) {
	assert.Equal(t, "standard", LayoutStandard.String())
	assert.Equal(t, "compact", LayoutCompact.String())
	assert.Equal(t, "minimal", LayoutMinimal.String())
	assert.Equal(t, "unknown", LayoutMode(42).String())
}

func TestVerticalStack(t *testing.T) {
	c := ComputeConstraints(50, 30)
	assert.True(t, c.UseVerticalStack)
	assert.Equal(t, 50, c.TreeWidth)
	assert.Equal(t, 10, c.TreeHeight)
	assert.Equal(t, 50, c.MainWidth)
	assert.Equal(t, 16, c.MainHeight)
	assert.Equal(t, c.TerminalHeight, c.TreeHeight+c.HelpHeight+StatusHeight+c.MainHeight)
}
