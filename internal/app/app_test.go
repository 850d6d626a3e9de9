package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carepartner/internal/api"
	"github.com/nhle/carepartner/internal/auth"
	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/model"
	pm "github.com/nhle/carepartner/internal/period"
	"github.com/nhle/carepartner/internal/store"
	appsync "github.com/nhle/carepartner/internal/sync"
	"github.com/nhle/carepartner/internal/testutil"
	"github.com/nhle/carepartner/internal/ui/command"
	"github.com/nhle/carepartner/internal/ui/issues"
	"github.com/nhle/carepartner/internal/ui/login"
	periodview "github.com/nhle/carepartner/internal/ui/period"
	"github.com/nhle/carepartner/internal/ui/settings"
	"github.com/nhle/carepartner/internal/ui/tagfilter"
)

func newTestModel(t *testing.T, b *fakeBackend, s store.Store, active bool) Model {
	t.Helper()
	sess := auth.NewSession(nil)
	if active {
		require.NoError(t, sess.Begin(auth.Tokens{Access: "access", Refresh: "refresh"}))
	}
	if s == nil {
		s = testutil.NewTestStore(t)
	}
	m := New(Deps{
		Backend: b,
		Session: sess,
		Store:   s,
		Log:     zerolog.Nop(),
		Now:     func() time.Time { return testNow },
	})
	t.Cleanup(m.refresher.Stop)
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	mdl, cmd := m.Update(msg)
	out, ok := mdl.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewWithoutSessionShowsLogin(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, false)
	assert.Equal(t, ViewLogin, m.CurrentView())
	assert.NotNil(t, m.Init())
}

func TestNewWithSessionOpensDashboard(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)
	assert.Equal(t, ViewDashboard, m.CurrentView())
	assert.Equal(t, model.DefaultViewState(), m.Selection())
}

func TestBootstrapRestoresSavedState(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	saved := model.ViewState{Division: model.DivisionOrg, DailyType: model.DailyTypeWeekly, TopN: 10}
	require.NoError(t, s.SaveViewState(ctx, saved))
	require.NoError(t, s.SetExcludedTags(ctx, []string{"로그인"}))

	b := &fakeBackend{tags: []model.TagGroup{{Tag: "요양사", Data: []string{"로그인", "급여"}}}}
	m := newTestModel(t, b, s, true)

	msg, ok := m.bootstrap()().(bootstrapMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, model.DivisionOrg, msg.view.Division)
	assert.Equal(t, []string{"로그인"}, msg.excluded)
	assert.Len(t, msg.tags, 1)

	m, cmd := update(t, m, msg)
	assert.NotNil(t, cmd)
	assert.Equal(t, model.DivisionOrg, m.Selection().Division)
	assert.Equal(t, model.DailyTypeWeekly, m.Selection().DailyType)
	assert.Equal(t, []string{"로그인"}, m.excluded)
	assert.True(t, m.started)
}

func TestBootstrapTagFailureStillOpens(t *testing.T) {
	b := &fakeBackend{tagsErr: errors.New("tags down")}
	m := newTestModel(t, b, nil, true)

	msg := m.bootstrap()().(bootstrapMsg)
	require.Error(t, msg.err)
	assert.Equal(t, model.DefaultViewState().Division, msg.view.Division)

	m, _ = update(t, m, msg)
	assert.Equal(t, ViewDashboard, m.CurrentView())
	assert.True(t, m.started)
}

func TestBootstrapAuthFailureShowsLogin(t *testing.T) {
	b := &fakeBackend{tagsErr: &api.AuthError{Status: 401}}
	m := newTestModel(t, b, nil, true)

	m, _ = update(t, m, m.bootstrap()())
	assert.Equal(t, ViewLogin, m.CurrentView())
	assert.False(t, m.session.Active())
	assert.False(t, m.started)
}

func TestSelectionKeys(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.NotNil(t, cmd)
	assert.Equal(t, model.DivisionCaregiver, m.Selection().Division)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, model.DivisionAll, m.Selection().Division)

	m, _ = update(t, m, runes("d"))
	assert.Equal(t, model.DailyTypeWeekly, m.Selection().DailyType)

	m, _ = update(t, m, runes("["))
	assert.Equal(t, "2024-03-04", m.Selection().StartDate)

	m, _ = update(t, m, runes("]"))
	assert.Equal(t, "2024-03-11", m.Selection().StartDate)

	m, _ = update(t, m, runes("T"))
	assert.Equal(t, 10, m.Selection().TopN)
}

func TestSelectionChangeBumpsGeneration(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)
	old := appsync.ResultMsg{Generation: 0}
	require.True(t, m.refresher.IsCurrent(old))

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.False(t, m.refresher.IsCurrent(old))

	// A result for the previous selection is dropped without effect.
	m, _ = update(t, m, appsync.ResultMsg{Generation: 0, AuthExpired: true})
	assert.Equal(t, ViewDashboard, m.CurrentView())
	assert.True(t, m.session.Active())
}

func TestAuthExpiredResultShowsLogin(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)

	m, cmd := update(t, m, appsync.ResultMsg{Generation: 0, AuthExpired: true, Err: &api.AuthError{Status: 401}})
	assert.NotNil(t, cmd)
	assert.Equal(t, ViewLogin, m.CurrentView())
	assert.False(t, m.session.Active())
}

func TestSaveViewStatePersists(t *testing.T) {
	s := testutil.NewTestStore(t)
	m := newTestModel(t, &fakeBackend{}, s, true)

	v := model.ViewState{Division: model.DivisionAcademy, DailyType: model.DailyTypeMonthly, StartDate: "2024-02-01", TopN: 3}
	msg := m.saveViewState(v)().(savedMsg)
	require.NoError(t, msg.err)

	got, err := s.GetViewState(context.Background())
	require.NoError(t, err)
	assert.Equal(t, v.Division, got.Division)
	assert.Equal(t, v.StartDate, got.StartDate)
	assert.Equal(t, 3, got.TopN)
}

func TestPeriodChosen(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)
	m.currentView = ViewPeriod

	feb, err := pm.Month(2024, time.February)
	require.NoError(t, err)
	m, _ = update(t, m, periodview.ChosenMsg{DailyType: model.DailyTypeMonthly, Period: feb})

	assert.Equal(t, ViewDashboard, m.CurrentView())
	assert.Equal(t, model.DailyTypeMonthly, m.Selection().DailyType)
	assert.Equal(t, "2024-02-01", m.Selection().StartDate)
}

func TestTagFilterApplied(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)
	m.currentView = ViewTagFilter

	m, cmd := update(t, m, tagfilter.AppliedMsg{Excluded: []string{"결제"}})
	assert.NotNil(t, cmd)
	assert.Equal(t, ViewDashboard, m.CurrentView())
	assert.Equal(t, []string{"결제"}, m.excluded)
}

func TestOpenIssuesLoadsPeriod(t *testing.T) {
	b := &fakeBackend{issues: []model.FlatIssue{{IssueReportID: 9, Category: "기관"}}}
	m := newTestModel(t, b, nil, true)
	m.view.Division = model.DivisionOrg

	m, cmd := update(t, m, runes("i"))
	assert.Equal(t, ViewIssues, m.CurrentView())
	require.NotNil(t, cmd)

	loaded, ok := cmd().(issues.LoadedMsg)
	require.True(t, ok)
	assert.Equal(t, "기관", loaded.Context.Category)
	assert.Equal(t, "2024-03-14", loaded.Context.StartDate)
	assert.Len(t, loaded.Issues, 1)
}

func TestRunEffect(t *testing.T) {
	b := &fakeBackend{count: 7}
	m := newTestModel(t, b, nil, true)

	msg := m.runEffect(issue.SaveEffect{Key: "r1", Issue: model.FlatIssue{Category: "기관"}})()
	res, ok := msg.(issues.ResultMsg)
	require.True(t, ok)
	assert.Equal(t, issue.SaveResult{Key: "r1", ID: 42}, res.Result)
	assert.Len(t, b.saved, 1)

	msg = m.runEffect(issue.CountEffect{Key: "r1", Seq: 2})()
	assert.Equal(t, issues.ResultMsg{Result: issue.CountResult{Key: "r1", Seq: 2, Count: 7}}, msg)

	msg = m.runEffect(issue.DeleteEffect{Key: "r1", ID: 42})()
	assert.Equal(t, issues.ResultMsg{Result: issue.DeleteResult{Key: "r1"}}, msg)
	assert.Equal(t, []int64{42}, b.deleted)
}

func TestEditorAuthFailureShowsLogin(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)
	m, _ = update(t, m, runes("i"))

	m, _ = update(t, m, issues.ResultMsg{Result: issue.SaveResult{Key: "nope", Err: &api.AuthError{Status: 401}}})
	assert.Equal(t, ViewLogin, m.CurrentView())
}

func TestLogin(t *testing.T) {
	b := &fakeBackend{tokens: auth.Tokens{Access: "a", Refresh: "r"}}
	m := newTestModel(t, b, nil, false)

	res := m.login("admin", "secret")().(login.ResultMsg)
	require.NoError(t, res.Err)
	assert.True(t, m.session.Active())

	m, cmd := update(t, m, res)
	assert.NotNil(t, cmd)
	assert.Equal(t, ViewDashboard, m.CurrentView())
}

func TestLoginFailureStaysOnForm(t *testing.T) {
	b := &fakeBackend{loginErr: &api.AuthError{Method: "POST", Path: "/auth/login", Status: 401}}
	m := newTestModel(t, b, nil, false)

	res := m.login("admin", "wrong")().(login.ResultMsg)
	require.Error(t, res.Err)
	assert.False(t, m.session.Active())

	m, _ = update(t, m, res)
	assert.Equal(t, ViewLogin, m.CurrentView())
}

func TestLoginCancelWithoutSessionQuits(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, false)
	_, cmd := update(t, m, login.CancelMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestLogout(t *testing.T) {
	b := &fakeBackend{}
	m := newTestModel(t, b, nil, true)

	msg := m.logout()().(loggedOutMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, []string{"refresh"}, b.loggedOut)
	assert.False(t, m.session.Active())

	m, _ = update(t, m, msg)
	assert.Equal(t, ViewLogin, m.CurrentView())
}

func TestCommandPalette(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)

	m, _ = update(t, m, runes(":"))
	assert.Equal(t, ViewCommand, m.CurrentView())

	m, _ = update(t, m, command.CommandMsg{Name: "topn", Args: []string{"10"}})
	assert.Equal(t, ViewDashboard, m.CurrentView())
	assert.Equal(t, 10, m.Selection().TopN)

	mdl, _ := m.executeCommand(command.CommandMsg{Name: "division", Args: []string{"기관"}})
	m = mdl.(Model)
	assert.Equal(t, model.DivisionOrg, m.Selection().Division)

	mdl, _ = m.executeCommand(command.CommandMsg{Name: "period", Args: []string{"2024-01-05"}})
	m = mdl.(Model)
	assert.Equal(t, "2024-01-05", m.Selection().StartDate)

	mdl, _ = m.executeCommand(command.CommandMsg{Name: "topn", Args: []string{"many"}})
	m = mdl.(Model)
	assert.Equal(t, 10, m.Selection().TopN)
	assert.NotEmpty(t, m.status)

	mdl, _ = m.executeCommand(command.CommandMsg{Name: "dance"})
	assert.Contains(t, mdl.(Model).status, "dance")
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)

	m, _ = update(t, m, runes("?"))
	assert.Equal(t, ViewHelp, m.CurrentView())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ViewDashboard, m.CurrentView())
}

func TestViewRendersAfterResize(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)
	assert.Equal(t, "Loading...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	out := m.View()
	assert.Contains(t, out, "케어파트너 대시보드")
	assert.Contains(t, out, "요양사")
}

func TestSettingsSave(t *testing.T) {
	t.Setenv("CAREPARTNER_API_URL", "")
	m := newTestModel(t, &fakeBackend{}, nil, true)
	m.configPath = filepath.Join(t.TempDir(), "config.yaml")

	m, cmd := update(t, m, runes(","))
	assert.Equal(t, ViewSettings, m.CurrentView())
	assert.NotNil(t, cmd)

	cfg := model.AppConfig{
		API:     model.APIConfig{BaseURL: "https://dash.example.test", TimeoutSec: 30},
		Display: model.DisplayConfig{TopN: 10, RefreshIntervalSec: 60},
	}
	msg, ok := m.saveConfig(cfg)().(settings.SavedMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)

	m, _ = update(t, m, msg)
	assert.Equal(t, 30*time.Second, m.timeout)
	assert.Equal(t, "https://dash.example.test", m.cfg.API.BaseURL)

	loaded, err := model.LoadConfig(m.configPath)
	require.NoError(t, err)
	assert.Equal(t, "https://dash.example.test", loaded.API.BaseURL)
	assert.Equal(t, 10, loaded.Display.TopN)

	m, _ = update(t, m, settings.CloseMsg{})
	assert.Equal(t, ViewDashboard, m.CurrentView())
}

func TestSettingsSaveWithoutPath(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, nil, true)
	msg := m.saveConfig(model.AppConfig{})().(settings.SavedMsg)
	assert.Error(t, msg.Err)

	m, _ = update(t, m, msg)
	assert.Equal(t, defaultTimeout, m.timeout)
}
