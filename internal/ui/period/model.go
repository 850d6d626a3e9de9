// Package period is the day / week / month picker.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carepartner/internal/model"
	pm "github.com/nhle/carepartner/internal/period"
	"github.com/nhle/carepartner/internal/theme"
)

// ChosenMsg is emitted when the user confirms a period.
type ChosenMsg struct {
	DailyType model.DailyType
	Period    pm.Period
}

// CancelMsg is emitted when the picker is dismissed.
type CancelMsg struct{}

// Selection is the picker's raw input.
type Selection struct {
	DailyType model.DailyType
	Date      string
	Year      string
	Week      int
	Month     int
}

// SelectionFor pre-fills the picker from the current view, falling back
// to today when the view has no start date.
func SelectionFor(view model.ViewState, now time.Time) Selection {
	anchor := now
	if view.StartDate != "" {
		if t, err := pm.ParseDate(view.StartDate); err == nil {
			anchor = t
		}
	}
	dt := view.DailyType
	if !dt.Valid() {
		dt = model.DailyTypeDaily
	}
	return Selection{
		DailyType: dt,
		Date:      pm.FormatDate(anchor),
		Year:      strconv.Itoa(anchor.Year()),
		Week:      pm.WeekOfDate(anchor),
		Month:     int(anchor.Month()),
	}
}

// Period resolves the selection.
func (s Selection) Period() (pm.Period, error) {
	switch s.DailyType {
	case model.DailyTypeWeekly:
		year, err := parseYear(s.Year)
		if err != nil {
			return pm.Period{}, err
		}
		return pm.Week(year, s.Week)
	case model.DailyTypeMonthly:
		year, err := parseYear(s.Year)
		if err != nil {
			return pm.Period{}, err
		}
		return pm.Month(year, time.Month(s.Month))
	default:
		t, err := pm.ParseDate(strings.TrimSpace(s.Date))
		if err != nil {
			return pm.Period{}, err
		}
		return pm.Day(t), nil
	}
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || y < 2000 || y > 2100 {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return y, nil
}

func validateDate(s string) error {
	if _, err := pm.ParseDate(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("YYYY-MM-DD 형식으로 입력하세요")
	}
	return nil
}

func validateYear(s string) error {
	_, err := parseYear(s)
	return err
}

// weekOptions lists the weeks of year, or nothing while year is invalid.
func weekOptions(year string) []huh.Option[int] {
	y, err := parseYear(year)
	if err != nil {
		return nil
	}
	weeks := pm.WeekOptions(y)
	opts := make([]huh.Option[int], len(weeks))
	for i, w := range weeks {
		opts[i] = huh.NewOption(w.Label(), w.Week)
	}
	return opts
}

// Model is the period picker.
type Model struct {
	form   *huh.Form
	sel    *Selection
	width  int
	height int
}

// New creates a period picker.
func New(width, height int) Model {
	return Model{sel: &Selection{}, width: width, height: height}
}

// Start opens the picker seeded from view.
func (m *Model) Start(view model.ViewState, now time.Time) tea.Cmd {
	*m.sel = SelectionFor(view, now)
	m.form = m.buildForm()
	return m.form.Init()
}

func (m *Model) buildForm() *huh.Form {
	sel := m.sel

	dailyOpts := make([]huh.Option[model.DailyType], len(model.DailyTypes))
	for i, dt := range model.DailyTypes {
		dailyOpts[i] = huh.NewOption(dt.Label(), dt)
	}
	monthOpts := make([]huh.Option[int], 12)
	for i := range monthOpts {
		monthOpts[i] = huh.NewOption(fmt.Sprintf("%d월", i+1), i+1)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.DailyType]().
				Title("기간 유형").
				Options(dailyOpts...).
				Value(&sel.DailyType),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("날짜").
				Placeholder("YYYY-MM-DD").
				Value(&sel.Date).
				Validate(validateDate),
		).WithHideFunc(func() bool { return sel.DailyType != model.DailyTypeDaily }),
		huh.NewGroup(
			huh.NewInput().
				Title("연도").
				Value(&sel.Year).
				Validate(validateYear),
			huh.NewSelect[int]().
				Title("주차").
				OptionsFunc(func() []huh.Option[int] { return weekOptions(sel.Year) }, &sel.Year).
				Value(&sel.Week).
				Height(8),
		).WithHideFunc(func() bool { return sel.DailyType != model.DailyTypeWeekly }),
		huh.NewGroup(
			huh.NewInput().
				Title("연도").
				Value(&sel.Year).
				Validate(validateYear),
			huh.NewSelect[int]().
				Title("월").
				Options(monthOpts...).
				Value(&sel.Month),
		).WithHideFunc(func() bool { return sel.DailyType != model.DailyTypeMonthly }),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// Update handles messages for the picker.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		sel := *m.sel
		p, err := sel.Period()
		if err != nil {
			return m, func() tea.Msg { return CancelMsg{} }
		}
		return m, func() tea.Msg { return ChosenMsg{DailyType: sel.DailyType, Period: p} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the picker.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	content := theme.TitleStyle.Render("기간 선택") + "\n" + m.form.View()
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the picker dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 80)
}
