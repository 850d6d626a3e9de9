// Package dashboard renders the summary screen: KPI cards, the
// consultation breakdown, satisfaction history, top tags, and the
// per-category counts.
package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	dash "github.com/nhle/carepartner/internal/dashboard"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/theme"
	"github.com/nhle/carepartner/internal/ui"
)

const (
	cardMinWidth = 26
	barWidth     = 24
)

// Model is the dashboard view.
type Model struct {
	viewport viewport.Model
	spinner  spinner.Model

	summary   model.Summary
	view      model.ViewState
	loaded    bool
	loading   bool
	stale     bool
	fetchedAt time.Time
	err       error

	width  int
	height int
}

// New creates a dashboard view.
func New(width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		viewport: viewport.New(width, height),
		spinner:  sp,
		view:     model.DefaultViewState(),
		width:    width,
		height:   height,
	}
}

// SetLoading marks a fetch in flight and returns the spinner tick.
func (m *Model) SetLoading(view model.ViewState) tea.Cmd {
	m.view = view
	m.loading = true
	m.err = nil
	return m.spinner.Tick
}

// SetSummary shows a fetched (or cached, when stale) summary.
func (m *Model) SetSummary(view model.ViewState, s model.Summary, fetchedAt time.Time, stale bool) {
	m.view = view
	m.summary = s
	m.fetchedAt = fetchedAt
	m.stale = stale
	m.loaded = true
	m.loading = false
	m.refresh()
}

// SetError records a failed fetch. A previously shown summary stays.
func (m *Model) SetError(err error) {
	m.err = err
	m.loading = false
	m.refresh()
}

// Loading reports whether a fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
}

// Update handles spinner ticks and scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(spinner.TickMsg); ok {
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the dashboard.
func (m Model) View() string {
	if !m.loaded {
		placeholder := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		if m.err != nil {
			return placeholder.Foreground(theme.ColorRed).Render("불러오기 실패: " + m.err.Error())
		}
		return placeholder.Render(m.spinner.View() + " 대시보드를 불러오는 중...")
	}
	return m.viewport.View()
}

// StatusLine summarizes freshness for the header.
func (m Model) StatusLine() string {
	switch {
	case m.loading:
		return m.spinner.View() + " refreshing"
	case m.stale:
		return "offline · cached " + m.fetchedAt.Local().Format("01-02 15:04")
	case m.err != nil:
		return "⚠ " + m.err.Error()
	case !m.fetchedAt.IsZero():
		return "updated " + m.fetchedAt.Local().Format("15:04:05")
	default:
		return ""
	}
}

func (m Model) renderContent() string {
	if !m.loaded {
		return ""
	}
	s, dt := m.summary, m.view.DailyType

	sections := []string{
		renderCards(dash.BuildKPIs(s, dt), m.width),
		lipgloss.JoinHorizontal(lipgloss.Top,
			renderShares(dash.ChannelShares(s)),
			renderSatisfaction(dash.SatisfactionSeries(s, dt)),
		),
		renderTopTags(dash.TopTagsTitle(dt, m.view.TopN), dash.TopTags(s.TopTags)),
	}
	if len(s.IncMonthTop) > 0 {
		sections = append(sections, renderTopTags("월간 증가 태그", dash.TopTags(s.IncMonthTop)))
	}
	sections = append(sections, renderMids(dash.NormalizeMids(m.view.Division, dash.Mids(s))))
	if s.LastUpload != "" {
		sections = append(sections, theme.DimmedStyle.Render("마지막 업로드: "+s.LastUpload))
	}
	if m.err != nil {
		sections = append(sections, theme.ErrorStyle.Render("⚠ "+m.err.Error()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func renderCards(cards []dash.Card, width int) string {
	cols := ui.Columns(width, cardMinWidth)
	cardWidth := max(width/cols-2, cardMinWidth-2)

	cells := make([]string, len(cards))
	for i, c := range cards {
		body := lipgloss.JoinVertical(lipgloss.Left,
			theme.DimmedStyle.Render(c.Title),
			lipgloss.NewStyle().Bold(true).Foreground(theme.AccentColor(string(c.Accent))).Render(c.Value),
			fmt.Sprintf("%s %s",
				theme.DimmedStyle.Render(c.Period),
				theme.TrendStyle(c.Trend.Direction).Render(theme.TrendArrow(c.Trend.Direction)+" "+c.Trend.Display),
			),
		)
		cells[i] = theme.CardStyle(string(c.Accent), cardWidth).Render(body)
	}
	return ui.Grid(cells, cols)
}

// bar draws value as a horizontal bar scaled against maxValue.
func bar(value, maxValue float64, width int) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := int(math.Round(value / maxValue * float64(width)))
	return strings.Repeat("█", max(n, 1))
}

func renderShares(shares []dash.Share) string {
	var total, top int64
	for _, s := range shares {
		total += s.Value
		top = max(top, s.Value)
	}

	lines := []string{theme.TitleStyle.Render("상담 유형")}
	for _, s := range shares {
		pct := 0.0
		if total > 0 {
			pct = float64(s.Value) / float64(total) * 100
		}
		lines = append(lines, fmt.Sprintf("%-6s %-*s %d (%.1f%%)",
			s.Name, barWidth, bar(float64(s.Value), float64(top), barWidth), s.Value, pct))
	}
	return theme.PanelStyle.Render(strings.Join(lines, "\n"))
}

func renderSatisfaction(points []dash.Point) string {
	lines := []string{theme.TitleStyle.Render("만족도 추이")}
	if len(points) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("데이터 없음"))
	}
	for _, p := range points {
		lines = append(lines, fmt.Sprintf("%-6s %-*s %.2f",
			p.Label, barWidth, bar(p.Value, 5, barWidth), p.Value))
	}
	return theme.PanelStyle.Render(strings.Join(lines, "\n"))
}

func renderTopTags(title string, rows []dash.TagRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("No", "태그", "건수", "추이")
	for _, r := range rows {
		t.Row(strconv.Itoa(r.No), r.SubCategory, strconv.FormatInt(r.Cnt, 10), r.Trend())
	}
	return lipgloss.JoinVertical(lipgloss.Left, theme.TitleStyle.Render(title), t.Render())
}

func renderMids(mids []model.MidCounts) string {
	if len(mids) == 0 {
		return ""
	}
	var top int64
	for _, m := range mids {
		for _, s := range m.Subs {
			top = max(top, s.Cnt)
			if s.PrevCnt != nil {
				top = max(top, *s.PrevCnt)
			}
		}
	}

	var blocks []string
	for _, m := range mids {
		lines := []string{theme.TitleStyle.Render(m.MidCategory)}
		compare := dash.HasComparison(m)
		for _, s := range m.Subs {
			line := fmt.Sprintf("%-12s %-*s %d", s.SubCategory, barWidth, bar(float64(s.Cnt), float64(top), barWidth), s.Cnt)
			if compare && s.PrevCnt != nil {
				line += theme.DimmedStyle.Render(fmt.Sprintf("  (이전 %d)", *s.PrevCnt))
			}
			lines = append(lines, line)
		}
		blocks = append(blocks, theme.PanelStyle.Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}
