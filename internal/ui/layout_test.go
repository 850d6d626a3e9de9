package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 21, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 2).ContentHeight())
}

func TestColumns(t *testing.T) {
	assert.Equal(t, 4, Columns(100, 24))
	assert.Equal(t, 1, Columns(10, 24))
	assert.Equal(t, 1, Columns(100, 0))
}

func TestGrid(t *testing.T) {
	out := Grid([]string{"a", "b", "c"}, 2)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "ab", lines[0])
	assert.Equal(t, "c", strings.TrimRight(lines[1], " "))
	assert.Equal(t, "", Grid(nil, 3))
}

func TestRenderHeaderFillsWidth(t *testing.T) {
	l := NewLayout(60, 20)
	assert.Equal(t, 60, lipgloss.Width(l.RenderHeader("케어파트너", "idle")))
	assert.Equal(t, 60, lipgloss.Width(l.RenderStatusBar("q quit")))
}

func TestRenderTabs(t *testing.T) {
	l := NewLayout(60, 20)
	out := l.RenderTabs([]string{"전체", "요양사"}, 1, "2024-03-15")
	assert.Contains(t, out, "전체")
	assert.Contains(t, out, "요양사")
	assert.Equal(t, 60, lipgloss.Width(out))
}
