// Package login is the sign-in form shown at startup without a stored
// session and whenever the server rejects the current token.
package login

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carepartner/internal/theme"
)

// SubmitMsg carries the entered credentials to the parent.
type SubmitMsg struct {
	ID       string
	Password string
}

// ResultMsg reports the login outcome back to the form.
type ResultMsg struct {
	Err error
}

// CancelMsg is emitted when the user aborts the form.
type CancelMsg struct{}

type formBindings struct {
	id       string
	password string
}

// Model is the sign-in form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	reason  string
	errMsg  string
	pending bool
	width   int
	height  int
}

// New creates the sign-in form.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// Start shows the form. reason is displayed above it, e.g. why the
// previous session ended.
func (m *Model) Start(reason string) tea.Cmd {
	m.reason = reason
	m.errMsg = ""
	m.pending = false
	m.fb.password = ""
	m.form = m.buildForm()
	return m.form.Init()
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s을(를) 입력하세요", name)
		}
		return nil
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("아이디").
				Value(&m.fb.id).
				Validate(required("아이디")),
			huh.NewInput().
				Title("비밀번호").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.password).
				Validate(required("비밀번호")),
		),
	).WithWidth(min(max(m.width-4, 30), 60))
}

// Pending reports whether a login request is in flight.
func (m Model) Pending() bool { return m.pending }

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if res, ok := msg.(ResultMsg); ok {
		m.pending = false
		if res.Err == nil {
			m.form = nil
			return m, nil
		}
		m.errMsg = res.Err.Error()
		m.fb.password = ""
		m.form = m.buildForm()
		return m, m.form.Init()
	}

	if m.form == nil || m.pending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.pending = true
		id, pw := strings.TrimSpace(m.fb.id), m.fb.password
		return m, func() tea.Msg { return SubmitMsg{ID: id, Password: pw} }
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	parts := []string{theme.TitleStyle.Render("케어파트너 관리자 로그인")}
	if m.reason != "" {
		parts = append(parts, theme.DimmedStyle.Render(m.reason))
	}
	if m.errMsg != "" {
		parts = append(parts, theme.ErrorStyle.Render(m.errMsg))
	}
	switch {
	case m.pending:
		parts = append(parts, "로그인 중...")
	case m.form != nil:
		parts = append(parts, m.form.View())
	}

	box := theme.PanelStyle.Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
