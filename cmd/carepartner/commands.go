package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nhle/carepartner/internal/app"
	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/model"
	pm "github.com/nhle/carepartner/internal/period"
	"github.com/nhle/carepartner/internal/report"
)

// signalContext is cancelled on Ctrl-C so in-flight requests stop.
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func tuiCmd() *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive dashboard (default)",
		Action: runTUI,
	}
}

func runTUI(c *cli.Context) error {
	e, err := openEnv(c, true)
	if err != nil {
		return err
	}
	defer e.close()

	m := app.New(app.Deps{
		Backend: e.client,
		Session: e.session,
		Store:   e.store,
		Tree:    e.tree,
		Config:  e.cfg,
		Log:     e.log,

		ConfigPath: e.cfgPath,
	})
	e.log.Info().Str("api", e.client.BaseURL()).Msg("starting dashboard")

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

func loginCmd() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in and save the session in the system keyring",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "id",
				Usage: "Account id (prompted when omitted)",
			},
		},
		Action: runLogin,
	}
}

func nonEmpty(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s을(를) 입력하세요", name)
		}
		return nil
	}
}

func runLogin(c *cli.Context) error {
	e, err := openEnv(c, false)
	if err != nil {
		return err
	}
	defer e.close()

	id, password := c.String("id"), ""
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("아이디").Value(&id).Validate(nonEmpty("아이디")),
		huh.NewInput().Title("비밀번호").EchoMode(huh.EchoModePassword).Value(&password).Validate(nonEmpty("비밀번호")),
	))
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	ctx, stop := signalContext(c)
	defer stop()

	tokens, err := e.client.Login(ctx, strings.TrimSpace(id), password)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if err := e.session.Begin(tokens); err != nil {
		return err
	}
	color.Green("로그인되었습니다")
	return nil
}

func logoutCmd() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Revoke the saved session",
		Action: runLogout,
	}
}

func runLogout(c *cli.Context) error {
	e, err := openEnv(c, false)
	if err != nil {
		return err
	}
	defer e.close()

	ctx, stop := signalContext(c)
	defer stop()

	if rt := e.session.RefreshToken(); rt != "" {
		if err := e.client.Logout(ctx, rt); err != nil {
			e.log.Warn().Err(err).Msg("revoking refresh token")
		}
	}
	if err := e.session.End(); err != nil {
		return err
	}
	color.Green("로그아웃되었습니다")
	return nil
}

// selectionFlags override the saved dashboard selection.
func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "division",
			Usage: "all, caregiver, org, academy, normal",
		},
		&cli.StringFlag{
			Name:    "daily-type",
			Aliases: []string{"t"},
			Usage:   "daily, weekly, monthly",
		},
		&cli.StringFlag{
			Name:    "date",
			Aliases: []string{"d"},
			Usage:   "Any date within the period (YYYY-MM-DD)",
		},
		&cli.IntFlag{
			Name:  "top",
			Usage: "Rows in the top tag table",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Remember the selection for the dashboard",
		},
	}
}

// viewFromFlags applies the selection flags on top of base.
func viewFromFlags(c *cli.Context, base model.ViewState, now time.Time) (model.ViewState, error) {
	v := base
	if c.IsSet("division") {
		d, ok := app.FindDivision(c.String("division"))
		if !ok {
			return v, fmt.Errorf("unknown division %q", c.String("division"))
		}
		v.Division = d
	}
	if c.IsSet("daily-type") {
		dt := model.DailyType(strings.ToLower(c.String("daily-type")))
		if !dt.Valid() {
			return v, fmt.Errorf("unknown daily type %q", c.String("daily-type"))
		}
		v.DailyType = dt
	}
	if !v.DailyType.Valid() {
		v.DailyType = model.DailyTypeDaily
	}
	if c.IsSet("date") {
		t, err := pm.ParseDate(c.String("date"))
		if err != nil {
			return v, err
		}
		v.StartDate = app.CurrentPeriod(model.ViewState{DailyType: v.DailyType}, t).Canonical()
	} else if c.IsSet("daily-type") && v.StartDate != "" {
		// Keep the saved anchor but snap it to the new period kind.
		anchor := app.CurrentPeriod(base, now).Anchor()
		v.StartDate = app.CurrentPeriod(model.ViewState{DailyType: v.DailyType}, anchor).Canonical()
	}
	if c.IsSet("top") {
		if c.Int("top") <= 0 {
			return v, errors.New("--top must be positive")
		}
		v.TopN = c.Int("top")
	}
	return v, nil
}

// loadSelection returns the saved selection with the flags applied, and
// persists it when --save is given.
func loadSelection(ctx context.Context, c *cli.Context, e *env, now time.Time) (model.ViewState, error) {
	base, err := e.store.GetViewState(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("reading saved selection")
		base = model.DefaultViewState()
	}
	v, err := viewFromFlags(c, base, now)
	if err != nil {
		return v, err
	}
	if c.Bool("save") {
		if err := e.store.SaveViewState(ctx, v); err != nil {
			return v, err
		}
	}
	return v, nil
}

func summaryCmd() *cli.Command {
	return &cli.Command{
		Name:    "summary",
		Aliases: []string{"s"},
		Usage:   "Print the KPI cards, top tags and issue reports",
		Flags:   selectionFlags(),
		Action:  runSummary,
	}
}

func runSummary(c *cli.Context) error {
	e, err := openEnv(c, false)
	if err != nil {
		return err
	}
	defer e.close()
	if err := e.requireSession(); err != nil {
		return err
	}

	ctx, stop := signalContext(c)
	defer stop()

	now := time.Now()
	v, err := loadSelection(ctx, c, e, now)
	if err != nil {
		return err
	}
	excluded, err := e.store.GetExcludedTags(ctx)
	if err != nil {
		e.log.Warn().Err(err).Msg("reading excluded tags")
	}

	ic := app.IssueContext(v, now)
	snap, loadErr := app.LoadSnapshot(ctx, e.client, v, excluded, ic)
	if loadErr == nil {
		if err := e.store.PutSummary(ctx, v.SummaryQuery(excluded), snap.Summary); err != nil {
			e.log.Warn().Err(err).Msg("caching summary")
		}
	}

	label := app.CurrentPeriod(v, now).Label()
	p := e.printer()
	if err := p.Summary(snap.Summary, v, label); err != nil {
		return err
	}
	if err := p.Issues(label, snap.Issues); err != nil {
		return err
	}
	return loadErr
}

func issuesCmd() *cli.Command {
	return &cli.Command{
		Name:    "issues",
		Aliases: []string{"i"},
		Usage:   "List the issue reports of a period",
		Flags:   selectionFlags(),
		Action:  runIssues,
	}
}

func runIssues(c *cli.Context) error {
	e, err := openEnv(c, false)
	if err != nil {
		return err
	}
	defer e.close()
	if err := e.requireSession(); err != nil {
		return err
	}

	ctx, stop := signalContext(c)
	defer stop()

	now := time.Now()
	v, err := loadSelection(ctx, c, e, now)
	if err != nil {
		return err
	}

	coll := issue.NewCollection(app.IssueContext(v, now), e.tree)
	if err := issue.Load(ctx, e.client, coll); err != nil {
		return err
	}

	var saved []model.FlatIssue
	for _, r := range coll.Rows() {
		if r.Saved() {
			saved = append(saved, r.Flatten())
		}
	}
	return e.printer().Issues(app.CurrentPeriod(v, now).Label(), saved)
}

func periodCmd() *cli.Command {
	return &cli.Command{
		Name:  "period",
		Usage: "Show the periods containing a date, or the weeks of a year",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "Date to resolve (YYYY-MM-DD, default today)",
			},
			&cli.IntFlag{
				Name:  "year",
				Usage: "List the selectable weeks of this year",
			},
		},
		Action: runPeriod,
	}
}

func runPeriod(c *cli.Context) error {
	p := report.New(os.Stdout, !color.NoColor)
	if c.IsSet("year") {
		return p.Weeks(c.Int("year"))
	}

	t := time.Now()
	if c.IsSet("date") {
		var err error
		if t, err = pm.ParseDate(c.String("date")); err != nil {
			return err
		}
	}
	periods := []pm.Period{pm.Day(t)}
	for _, k := range []pm.Kind{pm.KindWeek, pm.KindMonth} {
		q, err := pm.Containing(k, t)
		if err != nil {
			return err
		}
		periods = append(periods, q)
	}
	return p.Periods(periods)
}

func uploadCmd() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a consultation export (.xlsx)",
		ArgsUsage: "<file>",
		Action:    runUpload,
	}
}

func runUpload(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return errors.New("upload takes exactly one file")
	}
	path := c.Args().First()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xls":
	default:
		return fmt.Errorf("%s is not an Excel file", path)
	}

	e, err := openEnv(c, false)
	if err != nil {
		return err
	}
	defer e.close()
	if err := e.requireSession(); err != nil {
		return err
	}

	ctx, stop := signalContext(c)
	defer stop()

	if err := e.client.UploadExcel(ctx, path); err != nil {
		return err
	}
	color.Green("%s 업로드 완료", filepath.Base(path))
	return nil
}
