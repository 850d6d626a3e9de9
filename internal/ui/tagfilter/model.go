// Package tagfilter is the tag exclusion editor. Excluded tags are left
// out of every dashboard aggregate.
package tagfilter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	dash "github.com/nhle/carepartner/internal/dashboard"
	"github.com/nhle/carepartner/internal/keys"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/theme"
)

// AppliedMsg carries the confirmed exclusion set.
type AppliedMsg struct {
	Excluded []string
}

// CancelMsg is emitted when the editor is closed without applying.
type CancelMsg struct{}

// line is one selectable entry: a group header or a tag under it.
type line struct {
	group int
	tag   string
}

func (l line) header() bool { return l.tag == "" }

// Model is the tag exclusion editor.
type Model struct {
	keys     *keys.KeyMap
	groups   []model.TagGroup
	excluded []string
	search   textinput.Model
	cursor   int
	width    int
	height   int
}

// New creates the editor.
func New(k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "태그 검색"
	ti.Prompt = "/ "
	return Model{keys: k, search: ti, width: width, height: height}
}

// Open loads the tag list and the current exclusions.
func (m *Model) Open(groups []model.TagGroup, excluded []string) {
	m.groups = groups
	m.excluded = slices.Clone(excluded)
	m.cursor = 0
	m.search.Reset()
	m.search.Blur()
}

// Excluded returns the working exclusion set.
func (m Model) Excluded() []string { return slices.Clone(m.excluded) }

// Stats returns the overall counts for the working set.
func (m Model) Stats() dash.Stats { return dash.ExclusionStats(m.groups, m.excluded) }

func (m Model) lines() []line {
	var out []line
	for gi, g := range dash.FilterTags(m.groups, m.search.Value()) {
		out = append(out, line{group: gi})
		for _, tag := range g.Data {
			out = append(out, line{group: gi, tag: tag})
		}
	}
	return out
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.search.Focused() {
		switch km.String() {
		case "enter", "esc":
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.cursor = 0
		return m, cmd
	}

	lines := m.lines()
	switch {
	case km.String() == "/":
		return m, m.search.Focus()
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(lines)-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case km.String() == " ":
		if m.cursor < len(lines) {
			l := lines[m.cursor]
			if l.header() {
				m.excluded = dash.ToggleGroup(m.excluded, m.groups[l.group])
			} else {
				m.excluded = dash.ToggleTag(m.excluded, l.tag)
			}
		}
	case km.String() == "enter":
		excluded := m.Excluded()
		return m, func() tea.Msg { return AppliedMsg{Excluded: excluded} }
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, nil
}

// View renders the editor.
func (m Model) View() string {
	st := m.Stats()
	header := lipgloss.JoinVertical(lipgloss.Left,
		theme.TitleStyle.Render("태그 필터"),
		fmt.Sprintf("전체 %d · 제외 %d · 포함 %d", st.Total, st.Excluded, st.Included),
		m.search.View(),
	)

	lines := m.lines()
	visible := max(m.height-6, 5)
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	var rows []string
	for i := start; i < len(lines) && i < start+visible; i++ {
		rows = append(rows, m.renderLine(lines[i], i == m.cursor))
	}
	if len(lines) == 0 {
		rows = append(rows, theme.DimmedStyle.Render("태그 없음"))
	}

	hint := theme.HelpStyle.Render("space 제외/포함 · / 검색 · enter 적용 · esc 취소")
	return lipgloss.JoinVertical(lipgloss.Left, header, strings.Join(rows, "\n"), hint)
}

func (m Model) renderLine(l line, selected bool) string {
	var text string
	if l.header() {
		g := m.groups[l.group]
		gs := dash.GroupStats(g, m.excluded)
		text = lipgloss.NewStyle().Bold(true).Render(
			fmt.Sprintf("%s (%d/%d)", g.Tag, gs.Included, gs.Total))
	} else {
		mark := "[x]"
		if slices.Contains(m.excluded, l.tag) {
			mark = "[ ]"
		}
		text = "  " + mark + " " + l.tag
	}
	if selected {
		return theme.SelectedItemStyle.Render(text)
	}
	return theme.ListItemStyle.Render(text)
}

// SetSize updates the editor dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
