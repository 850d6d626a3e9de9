// Package settings edits the YAML configuration from inside the console.
package settings

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carepartner/internal/keys"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/theme"
)

// Mode represents the current state of the settings view.
type Mode int

const (
	ModeForm   Mode = iota // Editing
	ModeSaving             // Waiting for the write
	ModeResult             // Showing the outcome
)

// SaveMsg asks the parent to persist Config.
type SaveMsg struct {
	Config model.AppConfig
}

// SavedMsg reports the outcome of a SaveMsg.
type SavedMsg struct {
	Config model.AppConfig
	Err    error
}

// CloseMsg signals the settings view should close.
type CloseMsg struct{}

// Values are the editable fields as the form binds them.
type Values struct {
	BaseURL     string
	TimeoutSec  string
	IntervalSec string
	TopN        int
	LogLevel    string
}

// FromConfig fills the form fields from cfg.
func FromConfig(cfg model.AppConfig) Values {
	return Values{
		BaseURL:     cfg.API.BaseURL,
		TimeoutSec:  strconv.Itoa(cfg.API.TimeoutSec),
		IntervalSec: strconv.Itoa(cfg.Display.RefreshIntervalSec),
		TopN:        cfg.Display.TopN,
		LogLevel:    cfg.Log.Level,
	}
}

// Apply returns a copy of cfg with the edited fields.
func (v Values) Apply(cfg model.AppConfig) (model.AppConfig, error) {
	if err := validateURL(v.BaseURL); err != nil {
		return cfg, err
	}
	timeout, err := parseSeconds(v.TimeoutSec, false)
	if err != nil {
		return cfg, fmt.Errorf("요청 제한 시간: %w", err)
	}
	interval, err := parseSeconds(v.IntervalSec, true)
	if err != nil {
		return cfg, fmt.Errorf("새로고침 주기: %w", err)
	}
	if v.TopN <= 0 {
		return cfg, fmt.Errorf("top N 은 양의 정수입니다")
	}

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(v.BaseURL), "/")
	cfg.API.TimeoutSec = timeout
	cfg.Display.RefreshIntervalSec = interval
	cfg.Display.TopN = v.TopN
	if v.LogLevel != "" {
		cfg.Log.Level = v.LogLevel
	}
	return cfg, nil
}

// Model is the Bubble Tea model for the settings view.
type Model struct {
	mode    Mode
	cfg     model.AppConfig
	values  *Values
	form    *huh.Form
	spinner spinner.Model
	err     error

	keys          *keys.KeyMap
	width, height int
}

// New creates the settings view.
func New(k *keys.KeyMap, width, height int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		keys:    k,
		spinner: sp,
		values:  &Values{},
		width:   width,
		height:  height,
	}
}

// Open shows the form prefilled from cfg.
func (m *Model) Open(cfg model.AppConfig) tea.Cmd {
	m.cfg = cfg
	*m.values = FromConfig(cfg)
	m.err = nil
	m.mode = ModeForm
	m.form = m.buildForm()
	return m.form.Init()
}

// Mode reports the current mode.
func (m Model) Mode() Mode { return m.mode }

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API 주소").
				Description("대시보드 API 서버 (예: https://api.example.com)").
				Value(&m.values.BaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("요청 제한 시간 (초)").
				Value(&m.values.TimeoutSec).
				Validate(func(s string) error {
					_, err := parseSeconds(s, false)
					return err
				}),
			huh.NewInput().
				Title("새로고침 주기 (초)").
				Description("0 이면 자동 새로고침을 끕니다").
				Value(&m.values.IntervalSec).
				Validate(func(s string) error {
					_, err := parseSeconds(s, true)
					return err
				}),
			huh.NewSelect[int]().
				Title("기본 top N").
				Options(
					huh.NewOption("3", 3),
					huh.NewOption("5", 5),
					huh.NewOption("10", 10),
				).
				Value(&m.values.TopN),
			huh.NewSelect[string]().
				Title("로그 레벨").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&m.values.LogLevel),
		),
	).WithWidth(m.formWidth())
}

// Update handles messages and dispatches based on current mode.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SavedMsg:
		m.mode = ModeResult
		m.err = msg.Err
		if msg.Err == nil {
			m.cfg = msg.Config
		}
		return m, nil

	case spinner.TickMsg:
		if m.mode == ModeSaving {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == ModeResult {
			return m.handleResultKeys(msg)
		}
		if m.mode == ModeSaving {
			return m, nil
		}
	}

	if m.mode != ModeForm || m.form == nil {
		return m, nil
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cfg, err := m.values.Apply(m.cfg)
		if err != nil {
			m.err = err
			m.mode = ModeResult
			return m, nil
		}
		m.mode = ModeSaving
		return m, tea.Batch(
			m.spinner.Tick,
			func() tea.Msg { return SaveMsg{Config: cfg} },
		)
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, cmd
}

// handleResultKeys closes after a successful save and returns to the form
// after a failure.
func (m Model) handleResultKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Select, m.keys.Back) {
		return m, nil
	}
	if m.err == nil || key.Matches(msg, m.keys.Back) {
		m.form = nil
		return m, func() tea.Msg { return CloseMsg{} }
	}
	m.err = nil
	m.mode = ModeForm
	m.form = m.buildForm()
	return m, m.form.Init()
}

// View renders the settings view.
func (m Model) View() string {
	parts := []string{theme.TitleStyle.Render("설정")}

	switch m.mode {
	case ModeForm:
		if m.form != nil {
			parts = append(parts, m.form.View())
		}
	case ModeSaving:
		parts = append(parts, m.spinner.View()+" 저장 중...")
	case ModeResult:
		if m.err != nil {
			parts = append(parts,
				theme.ErrorStyle.Render("저장하지 못했습니다: "+m.err.Error()),
				theme.HelpStyle.Render("enter 다시 입력 | esc 닫기"),
			)
		} else {
			parts = append(parts,
				"설정을 저장했습니다.",
				theme.DimmedStyle.Render("요청 제한 시간은 바로, 나머지는 다음 실행부터 적용됩니다."),
				theme.HelpStyle.Render("enter 닫기"),
			)
		}
	}

	return theme.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("API 주소를 입력하세요")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("잘못된 주소: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("주소에는 scheme 과 host 가 필요합니다 (예: https://example.com)")
	}
	return nil
}

// parseSeconds accepts a non-negative integer; zero only when allowZero.
func parseSeconds(s string, allowZero bool) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("숫자를 입력하세요")
	}
	if n < 0 || (n == 0 && !allowZero) {
		return 0, fmt.Errorf("0 보다 큰 값을 입력하세요")
	}
	return n, nil
}
