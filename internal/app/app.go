package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nhle/carepartner/internal/api"
	"github.com/nhle/carepartner/internal/auth"
	"github.com/nhle/carepartner/internal/category"
	dash "github.com/nhle/carepartner/internal/dashboard"
	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/keys"
	"github.com/nhle/carepartner/internal/model"
	pm "github.com/nhle/carepartner/internal/period"
	"github.com/nhle/carepartner/internal/store"
	appsync "github.com/nhle/carepartner/internal/sync"
	"github.com/nhle/carepartner/internal/ui"
	"github.com/nhle/carepartner/internal/ui/command"
	dashview "github.com/nhle/carepartner/internal/ui/dashboard"
	helpview "github.com/nhle/carepartner/internal/ui/help"
	"github.com/nhle/carepartner/internal/ui/issues"
	"github.com/nhle/carepartner/internal/ui/login"
	periodview "github.com/nhle/carepartner/internal/ui/period"
	"github.com/nhle/carepartner/internal/ui/settings"
	"github.com/nhle/carepartner/internal/ui/survey"
	"github.com/nhle/carepartner/internal/ui/tagfilter"
)

const (
	defaultTimeout = 15 * time.Second
	cacheRetention = 30 * 24 * time.Hour

	sessionExpiredReason = "세션이 만료되었습니다. 다시 로그인하세요."
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewDashboard
	ViewPeriod
	ViewIssues
	ViewTagFilter
	ViewSurvey
	ViewSettings
	ViewHelp
	ViewCommand
)

// Deps are the collaborators of the root model.
type Deps struct {
	Backend Backend
	Session *auth.Session
	Store   store.Store
	Tree    *category.Tree
	Config  *model.AppConfig
	Log     zerolog.Logger

	// ConfigPath is where the settings view writes Config.
	ConfigPath string

	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the root Bubble Tea model that manages view routing, layout,
// and the background summary refresh.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	backend   Backend
	session   *auth.Session
	store     store.Store
	refresher *appsync.Refresher
	log       zerolog.Logger
	now       func() time.Time
	timeout   time.Duration

	cfg        model.AppConfig
	configPath string

	view     model.ViewState
	excluded []string
	tags     []model.TagGroup
	started  bool

	dashboard   dashview.Model
	periodView  periodview.Model
	issuesView  issues.Model
	tagView     tagfilter.Model
	surveyView  survey.Model
	settings    settings.Model
	loginView   login.Model
	helpView    helpview.Model
	commandView command.Model

	initCmd tea.Cmd
	status  string
	ready   bool
}

// New creates the root model. Without an active session it opens on the
// login form; otherwise Init restores the saved selection.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	now := d.Now
	if now == nil {
		now = time.Now
	}
	tree := d.Tree
	if tree == nil {
		tree = category.Default()
	}

	timeout := defaultTimeout
	var interval time.Duration
	var cfg model.AppConfig
	view := model.DefaultViewState()
	if d.Config != nil {
		cfg = *d.Config
		if d.Config.API.TimeoutSec > 0 {
			timeout = time.Duration(d.Config.API.TimeoutSec) * time.Second
		}
		interval = time.Duration(d.Config.Display.RefreshIntervalSec) * time.Second
		if d.Config.Display.TopN > 0 {
			view.TopN = d.Config.Display.TopN
		}
	}

	m := Model{
		currentView: ViewDashboard,
		keys:        k,
		backend:     d.Backend,
		session:     d.Session,
		store:       d.Store,
		refresher:   appsync.New(d.Backend, d.Store, interval, d.Log),
		log:         d.Log,
		now:         now,
		timeout:     timeout,
		cfg:         cfg,
		configPath:  d.ConfigPath,
		view:        view,
		dashboard:   dashview.New(80, 20),
		periodView:  periodview.New(80, 20),
		issuesView:  issues.New(k, tree, 80, 20),
		tagView:     tagfilter.New(k, 80, 20),
		surveyView:  survey.New(k, 80, 20),
		settings:    settings.New(k, 80, 20),
		loginView:   login.New(80, 20),
		helpView:    helpview.New(k, 80, 20),
		commandView: command.New(80, 20),
	}

	if d.Session == nil || !d.Session.Active() {
		m.currentView = ViewLogin
		m.initCmd = m.loginView.Start("")
	}
	return m
}

// Init restores the saved selection, or shows the login form.
func (m Model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return m.initCmd
	}
	return m.bootstrap()
}

// CurrentView reports the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Selection reports the dashboard selection.
func (m Model) Selection() model.ViewState { return m.view }

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.dashboard.SetSize(w, h)
		m.periodView.SetSize(w, h)
		m.issuesView.SetSize(w, h)
		m.tagView.SetSize(w, h)
		m.surveyView.SetSize(w, h)
		m.settings.SetSize(w, h)
		m.loginView.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case spinner.TickMsg:
		// Each spinner ignores ticks carrying another spinner's id.
		var dashCmd, settingsCmd tea.Cmd
		m.dashboard, dashCmd = m.dashboard.Update(msg)
		m.settings, settingsCmd = m.settings.Update(msg)
		return m, tea.Batch(dashCmd, settingsCmd)

	case bootstrapMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("restoring dashboard state")
			if api.IsAuthError(msg.err) {
				return m.expireSession()
			}
		}
		m.view = msg.view
		m.excluded = msg.excluded
		m.tags = msg.tags
		m.started = true
		q := m.view.SummaryQuery(m.excluded)
		return m, tea.Batch(
			m.refresher.Start(q),
			m.dashboard.SetLoading(m.view),
			m.pruneCache(),
		)

	case appsync.ResultMsg:
		wait := m.refresher.WaitForResult()
		if !m.refresher.IsCurrent(msg) {
			return m, wait
		}
		if msg.AuthExpired {
			m, cmd := m.expireSession()
			return m, tea.Batch(cmd, wait)
		}
		switch {
		case msg.Err == nil || msg.Stale:
			m.dashboard.SetSummary(m.view, msg.Summary, msg.FetchedAt, msg.Stale)
		default:
			m.dashboard.SetError(msg.Err)
		}
		return m, wait

	case tagsLoadedMsg:
		if msg.err != nil {
			m.status = "태그를 불러오지 못했습니다"
			m.log.Warn().Err(msg.err).Msg("loading tags")
			return m, nil
		}
		m.tags = msg.tags
		if m.currentView == ViewTagFilter {
			m.tagView.Open(m.tags, m.excluded)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.log.Error().Err(msg.err).Str("what", msg.what).Msg("saving local state")
		}
		return m, nil

	// === Login ===

	case login.SubmitMsg:
		return m, m.login(msg.ID, msg.Password)

	case login.ResultMsg:
		var cmd tea.Cmd
		m.loginView, cmd = m.loginView.Update(msg)
		if msg.Err != nil {
			m.log.Info().Err(msg.Err).Msg("login failed")
			return m, cmd
		}
		m.currentView = ViewDashboard
		if !m.started {
			return m, tea.Batch(cmd, m.bootstrap())
		}
		m.refresher.Refresh()
		return m, tea.Batch(cmd, m.dashboard.SetLoading(m.view))

	case login.CancelMsg:
		if m.session == nil || !m.session.Active() {
			m.refresher.Stop()
			return m, tea.Quit
		}
		m.currentView = ViewDashboard
		return m, nil

	case loggedOutMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("clearing saved session")
		}
		m.currentView = ViewLogin
		return m, m.loginView.Start("")

	// === Period picker ===

	case periodview.ChosenMsg:
		m.currentView = ViewDashboard
		v := m.view
		v.DailyType = msg.DailyType
		v.StartDate = msg.Period.Canonical()
		return m.applyView(v)

	case periodview.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	// === Tag filter ===

	case tagfilter.AppliedMsg:
		m.currentView = ViewDashboard
		m.excluded = msg.Excluded
		return m.applyView(m.view, m.saveExcluded(msg.Excluded))

	case tagfilter.CancelMsg:
		m.currentView = ViewDashboard
		return m, nil

	// === Issue editor ===

	case issues.EffectMsg:
		return m, m.runEffect(msg.Effect)

	case issues.ResultMsg:
		var cmd tea.Cmd
		m.issuesView, cmd = m.issuesView.Update(msg)
		if err := resultErr(msg.Result); api.IsAuthError(err) {
			m, expire := m.expireSession()
			return m, tea.Batch(cmd, expire)
		}
		return m, cmd

	case issues.LoadedMsg:
		var cmd tea.Cmd
		m.issuesView, cmd = m.issuesView.Update(msg)
		if api.IsAuthError(msg.Err) {
			m, expire := m.expireSession()
			return m, tea.Batch(cmd, expire)
		}
		return m, cmd

	case issues.CloseMsg:
		m.currentView = ViewDashboard
		// Saved reports change the category counts.
		m.refresher.Refresh()
		return m, nil

	// === Survey ===

	case survey.LoadMsg:
		return m, m.loadSurvey(msg.Query)

	case survey.SubmitMsg:
		return m, m.submitSurvey(msg.Submission)

	case survey.PageMsg:
		var cmd tea.Cmd
		m.surveyView, cmd = m.surveyView.Update(msg)
		if api.IsAuthError(msg.Err) {
			m, expire := m.expireSession()
			return m, tea.Batch(cmd, expire)
		}
		return m, cmd

	case survey.CloseMsg:
		m.currentView = ViewDashboard
		return m, nil

	// === Settings ===

	case settings.SaveMsg:
		return m, m.saveConfig(msg.Config)

	case settings.SavedMsg:
		if msg.Err != nil {
			m.log.Error().Err(msg.Err).Msg("saving settings")
		} else {
			m.cfg = msg.Config
			m.timeout = time.Duration(msg.Config.API.TimeoutSec) * time.Second
			m.log.Info().Str("path", m.configPath).Msg("settings saved")
		}
		var cmd tea.Cmd
		m.settings, cmd = m.settings.Update(msg)
		return m, cmd

	case settings.CloseMsg:
		m.currentView = ViewDashboard
		return m, nil

	// === Command palette ===

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(msg)

	case command.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.refresher.Stop()
			return m, tea.Quit
		}
		if m.currentView == ViewHelp {
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.currentView = m.previousView
			}
			return m, nil
		}
		if m.currentView == ViewDashboard {
			if mdl, cmd, ok := m.handleDashboardKey(msg); ok {
				return mdl, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// handleDashboardKey handles the dashboard's selection and navigation
// keys. ok is false for keys the dashboard view should receive.
func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.refresher.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Refresh):
		m.refresher.Refresh()
		return m, m.dashboard.SetLoading(m.view), true

	case key.Matches(msg, m.keys.NextDivision):
		mdl, cmd := m.applyView(CycleDivision(m.view, 1))
		return mdl, cmd, true

	case key.Matches(msg, m.keys.PrevDivision):
		mdl, cmd := m.applyView(CycleDivision(m.view, -1))
		return mdl, cmd, true

	case key.Matches(msg, m.keys.CycleDaily):
		mdl, cmd := m.applyView(CycleDailyType(m.view, m.now()))
		return mdl, cmd, true

	case key.Matches(msg, m.keys.PrevPeriod):
		mdl, cmd := m.applyView(ShiftPeriod(m.view, -1, m.now()))
		return mdl, cmd, true

	case key.Matches(msg, m.keys.NextPeriod):
		mdl, cmd := m.applyView(ShiftPeriod(m.view, 1, m.now()))
		return mdl, cmd, true

	case key.Matches(msg, m.keys.CycleTopN):
		mdl, cmd := m.applyView(CycleTopN(m.view))
		return mdl, cmd, true

	case key.Matches(msg, m.keys.PickPeriod):
		mdl, cmd := m.openPeriod()
		return mdl, cmd, true

	case key.Matches(msg, m.keys.Issues):
		mdl, cmd := m.openIssues()
		return mdl, cmd, true

	case key.Matches(msg, m.keys.TagFilter):
		mdl, cmd := m.openTagFilter()
		return mdl, cmd, true

	case key.Matches(msg, m.keys.Survey):
		mdl, cmd := m.openSurvey()
		return mdl, cmd, true

	case key.Matches(msg, m.keys.Settings):
		mdl, cmd := m.openSettings()
		return mdl, cmd, true
	}
	return m, nil, false
}

// applyView switches the dashboard to v: it is persisted, the summary
// query changes, and the previous query's results are dropped.
func (m Model) applyView(v model.ViewState, extra ...tea.Cmd) (tea.Model, tea.Cmd) {
	m.view = v
	m.status = ""
	m.refresher.SetQuery(v.SummaryQuery(m.excluded))
	cmds := append([]tea.Cmd{m.saveViewState(v), m.dashboard.SetLoading(v)}, extra...)
	return m, tea.Batch(cmds...)
}

func (m Model) openPeriod() (tea.Model, tea.Cmd) {
	m.currentView = ViewPeriod
	return m, m.periodView.Start(m.view, m.now())
}

func (m Model) openIssues() (tea.Model, tea.Cmd) {
	ic := IssueContext(m.view, m.now())
	m.currentView = ViewIssues
	m.issuesView.Open(ic)
	return m, m.loadIssues(ic)
}

func (m Model) openTagFilter() (tea.Model, tea.Cmd) {
	m.currentView = ViewTagFilter
	m.tagView.Open(m.tags, m.excluded)
	if len(m.tags) == 0 {
		return m, m.loadTags()
	}
	return m, nil
}

func (m Model) openSurvey() (tea.Model, tea.Cmd) {
	m.currentView = ViewSurvey
	start, end := SurveyRange(m.view, m.now())
	return m, m.surveyView.Open(start, end)
}

func (m Model) openSettings() (tea.Model, tea.Cmd) {
	m.currentView = ViewSettings
	return m, m.settings.Open(m.cfg)
}

// expireSession drops the tokens and asks for a new login. The dashboard
// keeps showing its last data underneath.
func (m Model) expireSession() (Model, tea.Cmd) {
	if m.currentView == ViewLogin {
		return m, nil
	}
	if m.session != nil {
		if err := m.session.End(); err != nil {
			m.log.Warn().Err(err).Msg("clearing expired session")
		}
	}
	m.log.Info().Msg("session expired")
	m.currentView = ViewLogin
	return m, m.loginView.Start(sessionExpiredReason)
}

// resultErr extracts the server error carried by an editor result.
func resultErr(r issue.Result) error {
	switch r := r.(type) {
	case issue.SaveResult:
		return r.Err
	case issue.CountResult:
		return r.Err
	case issue.DeleteResult:
		return r.Err
	}
	return nil
}

// executeCommand handles a command from the command palette.
func (m Model) executeCommand(c command.CommandMsg) (tea.Model, tea.Cmd) {
	arg := strings.Join(c.Args, " ")
	switch c.Name {
	case "refresh", "r":
		m.refresher.Refresh()
		return m, m.dashboard.SetLoading(m.view)
	case "dashboard", "home":
		m.currentView = ViewDashboard
		return m, nil
	case "issues":
		return m.openIssues()
	case "tags", "filter":
		return m.openTagFilter()
	case "survey":
		return m.openSurvey()
	case "settings", "config":
		return m.openSettings()
	case "period":
		if arg == "" {
			return m.openPeriod()
		}
		t, err := pm.ParseDate(arg)
		if err != nil {
			m.status = "날짜 형식은 YYYY-MM-DD 입니다"
			return m, nil
		}
		v := m.view
		v.StartDate = CurrentPeriod(model.ViewState{DailyType: v.DailyType}, t).Canonical()
		return m.applyView(v)
	case "division":
		d, ok := FindDivision(arg)
		if !ok {
			m.status = fmt.Sprintf("알 수 없는 구분: %s", arg)
			return m, nil
		}
		v := m.view
		v.Division = d
		return m.applyView(v)
	case "topn":
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			m.status = "topn 은 양의 정수입니다"
			return m, nil
		}
		v := m.view
		v.TopN = n
		return m.applyView(v)
	case "login":
		m.currentView = ViewLogin
		return m, m.loginView.Start("")
	case "logout":
		return m, m.logout()
	case "quit", "q":
		m.refresher.Stop()
		return m, tea.Quit
	default:
		m.status = fmt.Sprintf("알 수 없는 명령: %s", c.Name)
		return m, nil
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewPeriod:
		m.periodView, cmd = m.periodView.Update(msg)
	case ViewIssues:
		m.issuesView, cmd = m.issuesView.Update(msg)
	case ViewTagFilter:
		m.tagView, cmd = m.tagView.Update(msg)
	case ViewSurvey:
		m.surveyView, cmd = m.surveyView.Update(msg)
	case ViewSettings:
		m.settings, cmd = m.settings.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("케어파트너 대시보드", m.dashboard.StatusLine())
	tabs := ""
	if m.currentView != ViewLogin {
		tabs = m.layout.RenderTabs(divisionLabels(), m.divisionIndex(), m.selectionNote())
	}
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, tabs, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewDashboard:
		return m.dashboard.View()
	case ViewPeriod:
		return m.periodView.View()
	case ViewIssues:
		return m.issuesView.View()
	case ViewTagFilter:
		return m.tagView.View()
	case ViewSurvey:
		return m.surveyView.View()
	case ViewSettings:
		return m.settings.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func divisionLabels() []string {
	labels := make([]string, len(model.Divisions))
	for i, d := range model.Divisions {
		labels[i] = d.Label()
	}
	return labels
}

func (m Model) divisionIndex() int {
	for i, d := range model.Divisions {
		if d == m.view.Division {
			return i
		}
	}
	return 0
}

// selectionNote describes the period, table size and tag filter.
func (m Model) selectionNote() string {
	p := CurrentPeriod(m.view, m.now())
	note := fmt.Sprintf("%s · %s · top %d", m.view.DailyType.Label(), p.Label(), m.view.TopN)
	if st := dash.ExclusionStats(m.tags, m.excluded); st.Excluded > 0 {
		note += fmt.Sprintf(" · 제외 태그 %d", st.Excluded)
	}
	return note
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.status != "" && m.currentView == ViewDashboard {
		return m.status
	}

	switch m.currentView {
	case ViewLogin:
		return "enter 다음 | esc 종료"
	case ViewHelp:
		return "? 닫기 | esc 뒤로"
	case ViewCommand:
		return "enter 실행 | esc 뒤로"
	case ViewPeriod:
		return "enter 선택 | esc 취소"
	case ViewIssues:
		return "n 추가 | e 수정 | ctrl+s 저장 | c 취소 | x 삭제 | esc 뒤로"
	case ViewTagFilter:
		return "/ 검색 | space 토글 | enter 적용 | esc 취소"
	case ViewSurvey:
		return "n 응답 등록 | [ ] 페이지 | r 새로고침 | esc 뒤로"
	case ViewSettings:
		return "tab 다음 항목 | enter 저장 | esc 취소"
	default:
		return m.helpView.ShortView()
	}
}
