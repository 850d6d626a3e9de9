package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sourcegraph/conc"

	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/ui/issues"
	"github.com/nhle/carepartner/internal/ui/login"
	"github.com/nhle/carepartner/internal/ui/settings"
	"github.com/nhle/carepartner/internal/ui/survey"
)

// bootstrapMsg carries the saved selection and the tag groups.
type bootstrapMsg struct {
	view     model.ViewState
	excluded []string
	tags     []model.TagGroup
	err      error
}

// tagsLoadedMsg carries the tag groups for the filter.
type tagsLoadedMsg struct {
	tags []model.TagGroup
	err  error
}

// savedMsg reports a local write; only failures are of interest.
type savedMsg struct {
	what string
	err  error
}

// loggedOutMsg is sent once the session has been dropped.
type loggedOutMsg struct{ err error }

// call runs fn in a command, bounded by the request timeout.
func (m Model) call(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	d := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), d)
		defer cancel()
		return fn(ctx)
	}
}

// bootstrap restores the saved selection and loads the tag groups.
// Store reads and the tag request run concurrently; a failed tag request
// does not prevent the dashboard from opening.
func (m Model) bootstrap() tea.Cmd {
	b, s := m.backend, m.store
	return m.call(func(ctx context.Context) tea.Msg {
		msg := bootstrapMsg{view: model.DefaultViewState()}
		var (
			errMu sync.Mutex
			errs  []error
		)
		fail := func(err error) {
			errMu.Lock()
			errs = append(errs, err)
			errMu.Unlock()
		}

		wg := conc.NewWaitGroup()
		wg.Go(func() {
			v, err := s.GetViewState(ctx)
			if err != nil {
				fail(err)
				return
			}
			msg.view = v
		})
		wg.Go(func() {
			ex, err := s.GetExcludedTags(ctx)
			if err != nil {
				fail(err)
				return
			}
			msg.excluded = ex
		})
		wg.Go(func() {
			tags, err := b.Tags(ctx)
			if err != nil {
				fail(fmt.Errorf("loading tags: %w", err))
				return
			}
			msg.tags = tags
		})
		wg.Wait()

		msg.err = errors.Join(errs...)
		return msg
	})
}

func (m Model) loadTags() tea.Cmd {
	b := m.backend
	return m.call(func(ctx context.Context) tea.Msg {
		tags, err := b.Tags(ctx)
		return tagsLoadedMsg{tags: tags, err: err}
	})
}

func (m Model) saveViewState(v model.ViewState) tea.Cmd {
	s := m.store
	return m.call(func(ctx context.Context) tea.Msg {
		return savedMsg{what: "view state", err: s.SaveViewState(ctx, v)}
	})
}

func (m Model) saveExcluded(tags []string) tea.Cmd {
	s := m.store
	return m.call(func(ctx context.Context) tea.Msg {
		return savedMsg{what: "excluded tags", err: s.SetExcludedTags(ctx, tags)}
	})
}

// saveConfig writes cfg to the config file.
func (m Model) saveConfig(cfg model.AppConfig) tea.Cmd {
	path := m.configPath
	return func() tea.Msg {
		if path == "" {
			return settings.SavedMsg{Config: cfg, Err: errors.New("no config file path")}
		}
		return settings.SavedMsg{Config: cfg, Err: model.SaveConfig(path, &cfg)}
	}
}

// pruneCache drops cached summaries that are too old to be useful.
func (m Model) pruneCache() tea.Cmd {
	s, log := m.store, m.log
	return m.call(func(ctx context.Context) tea.Msg {
		n, err := s.PruneSummaries(ctx, cacheRetention)
		if err != nil {
			return savedMsg{what: "summary cache", err: err}
		}
		if n > 0 {
			log.Debug().Int64("removed", n).Msg("pruned cached summaries")
		}
		return nil
	})
}

func (m Model) loadIssues(ic issue.Context) tea.Cmd {
	b := m.backend
	return m.call(func(ctx context.Context) tea.Msg {
		list, err := b.ListIssues(ctx, model.IssueListQuery{
			StartDate: ic.StartDate,
			DailyType: ic.DailyType,
			Category:  ic.Category,
		})
		return issues.LoadedMsg{Context: ic, Issues: list, Err: err}
	})
}

// runEffect executes an editor effect and routes the result back.
func (m Model) runEffect(eff issue.Effect) tea.Cmd {
	b, log := m.backend, m.log
	return m.call(func(ctx context.Context) tea.Msg {
		res, err := issue.Execute(ctx, b, eff)
		if err != nil {
			log.Error().Err(err).Str("row", eff.RowKey()).Msg("executing effect")
			return nil
		}
		return issues.ResultMsg{Result: res}
	})
}

func (m Model) loadSurvey(q model.SurveyQuery) tea.Cmd {
	b := m.backend
	return m.call(func(ctx context.Context) tea.Msg {
		page, err := b.ListSurveyResponses(ctx, q)
		return survey.PageMsg{Query: q, Page: page, Err: err}
	})
}

func (m Model) submitSurvey(s model.SurveySubmission) tea.Cmd {
	b := m.backend
	return m.call(func(ctx context.Context) tea.Msg {
		return survey.SubmittedMsg{Err: b.SubmitSurvey(ctx, s)}
	})
}

// login exchanges credentials for tokens and starts the session.
func (m Model) login(id, password string) tea.Cmd {
	b, sess := m.backend, m.session
	return m.call(func(ctx context.Context) tea.Msg {
		tokens, err := b.Login(ctx, id, password)
		if err != nil {
			return login.ResultMsg{Err: err}
		}
		return login.ResultMsg{Err: sess.Begin(tokens)}
	})
}

// logout revokes the refresh token on a best-effort basis and always
// drops the local session.
func (m Model) logout() tea.Cmd {
	b, sess, log := m.backend, m.session, m.log
	return m.call(func(ctx context.Context) tea.Msg {
		if rt := sess.RefreshToken(); rt != "" {
			if err := b.Logout(ctx, rt); err != nil {
				log.Warn().Err(err).Msg("revoking refresh token")
			}
		}
		return loggedOutMsg{err: sess.End()}
	})
}
