// Package survey lists satisfaction survey answers and records new ones.
package survey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nhle/carepartner/internal/keys"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/theme"
)

// PageSize is the number of answers per page.
const PageSize = 10

// LoadMsg asks the parent to fetch a page.
type LoadMsg struct {
	Query model.SurveyQuery
}

// PageMsg carries a fetched page.
type PageMsg struct {
	Query model.SurveyQuery
	Page  model.SurveyPage
	Err   error
}

// SubmitMsg asks the parent to store an answer.
type SubmitMsg struct {
	Submission model.SurveySubmission
}

// SubmittedMsg reports the outcome of a SubmitMsg.
type SubmittedMsg struct {
	Err error
}

// CloseMsg asks the parent to leave the survey screen.
type CloseMsg struct{}

type formBindings struct {
	phone    string
	overall  int
	accuracy int
	contact  string
	comment  string
}

// Model is the survey screen.
type Model struct {
	keys  *keys.KeyMap
	query model.SurveyQuery
	page  model.SurveyPage

	form *huh.Form
	fb   *formBindings

	loading bool
	status  string
	width   int
	height  int
}

// New creates the survey screen.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		query:  model.SurveyQuery{Page: 1, Size: PageSize},
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Open shows the first page of answers within [start, end].
func (m *Model) Open(start, end string) tea.Cmd {
	m.query = model.SurveyQuery{Page: 1, Size: PageSize, StartDate: start, EndDate: end}
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	q := m.query
	return func() tea.Msg { return LoadMsg{Query: q} }
}

// Editing reports whether the submission form has focus.
func (m Model) Editing() bool { return m.form != nil }

// Update handles messages for the survey screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case PageMsg:
		if msg.Query != m.query {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.status = "불러오기 실패: " + msg.Err.Error()
			return m, nil
		}
		m.page = msg.Page
		return m, nil

	case SubmittedMsg:
		if msg.Err != nil {
			m.status = "제출 실패: " + msg.Err.Error()
			return m, nil
		}
		m.status = "설문이 등록되었습니다"
		m.query.Page = 1
		return m, m.load()
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Right), key.Matches(km, m.keys.NextPeriod):
		if m.query.Page < m.page.Pages(PageSize) {
			m.query.Page++
			return m, m.load()
		}
	case key.Matches(km, m.keys.Left), key.Matches(km, m.keys.PrevPeriod):
		if m.query.Page > 1 {
			m.query.Page--
			return m, m.load()
		}
	case key.Matches(km, m.keys.New):
		return m, m.openForm()
	case key.Matches(km, m.keys.Refresh):
		return m, m.load()
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, nil
}

func scoreOptions() []huh.Option[int] {
	var opts []huh.Option[int]
	for s := model.ScoreVerySatisfied; s >= model.ScoreVeryDissatisfied; s-- {
		opts = append(opts, huh.NewOption(model.ScoreLabel(s), s))
	}
	return opts
}

func validatePhone(s string) error {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if r == '-' || r == ' ' {
			return -1
		}
		return 'x'
	}, s)
	if len(digits) < 9 || strings.ContainsRune(digits, 'x') {
		return fmt.Errorf("전화번호를 확인하세요")
	}
	return nil
}

func (m *Model) openForm() tea.Cmd {
	*m.fb = formBindings{overall: model.ScoreVerySatisfied, accuracy: model.ScoreVerySatisfied, contact: model.ContactNo}
	fb := m.fb

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("전화번호").
				Placeholder("010-0000-0000").
				Value(&fb.phone).
				Validate(validatePhone),
			huh.NewSelect[int]().
				Title("전반적인 상담 만족도").
				Options(scoreOptions()...).
				Value(&fb.overall),
			huh.NewSelect[int]().
				Title("답변의 정확성").
				Options(scoreOptions()...).
				Value(&fb.accuracy),
			huh.NewSelect[string]().
				Title("이전에 같은 문제로 문의한 적이 있나요?").
				Options(
					huh.NewOption("예", model.ContactYes),
					huh.NewOption("아니오", model.ContactNo),
					huh.NewOption("잘 모르겠음", model.ContactNotSure),
				).
				Value(&fb.contact),
			huh.NewText().
				Title("자유 의견").
				Value(&fb.comment),
		),
	).WithWidth(min(max(m.width-4, 40), 80))

	return m.form.Init()
}

// Submission returns the form's current answer.
func (m Model) Submission() model.SurveySubmission {
	return model.SurveySubmission{
		Phone:           strings.TrimSpace(m.fb.phone),
		OverallSat:      m.fb.overall,
		AnswerAccuracy:  m.fb.accuracy,
		PreviousContact: m.fb.contact,
		FreeComment:     strings.TrimSpace(m.fb.comment),
	}
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		sub := m.Submission()
		if err := sub.Validate(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m, func() tea.Msg { return SubmitMsg{Submission: sub} }
	case huh.StateAborted:
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// View renders the survey screen.
func (m Model) View() string {
	if m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.TitleStyle.Render("만족도 설문 등록") + "\n" + m.form.View())
	}

	title := "만족도 설문 응답"
	if m.query.StartDate != "" || m.query.EndDate != "" {
		title += fmt.Sprintf(" · %s ~ %s", m.query.StartDate, m.query.EndDate)
	}

	parts := []string{theme.TitleStyle.Render(title)}
	if m.loading {
		parts = append(parts, theme.DimmedStyle.Render("불러오는 중..."))
	} else {
		parts = append(parts, m.renderTable(),
			theme.DimmedStyle.Render(fmt.Sprintf("%d / %d 페이지 · 총 %d건",
				m.query.Page, max(m.page.Pages(PageSize), 1), m.page.Count)))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, theme.HelpStyle.Render("←/→ 페이지 · n 등록 · r 새로고침 · esc 닫기"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderTable() string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.ColorBorder)).
		Headers("No", "전화번호", "만족도", "정확성", "재문의", "의견", "등록일")

	base := (m.query.Page - 1) * PageSize
	for i, r := range m.page.List {
		t.Row(
			strconv.Itoa(base+i+1),
			r.Phone,
			r.OverallLabel(),
			r.AccuracyLabel(),
			contactLabel(r.PreviousContact),
			truncate(r.FreeComment, 30),
			r.CreatedAt,
		)
	}
	return t.Render()
}

func contactLabel(c string) string {
	switch c {
	case model.ContactYes:
		return "예"
	case model.ContactNo:
		return "아니오"
	case model.ContactNotSure:
		return "모름"
	default:
		return c
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
