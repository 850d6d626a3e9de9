// Package report renders dashboard data as plain-text tables for the
// one-shot CLI commands.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	dash "github.com/nhle/carepartner/internal/dashboard"
	"github.com/nhle/carepartner/internal/model"
	pm "github.com/nhle/carepartner/internal/period"
	"github.com/nhle/carepartner/internal/theme"
	"github.com/nhle/carepartner/internal/trend"
)

// Printer writes titled tables, colored when enabled.
type Printer struct {
	w       io.Writer
	colored bool
}

// New returns a Printer writing to w.
func New(w io.Writer, colored bool) *Printer {
	return &Printer{w: w, colored: colored}
}

func (p *Printer) title(s string) {
	if p.colored {
		color.New(color.Bold).Fprintln(p.w, s)
	} else {
		fmt.Fprintln(p.w, s)
	}
	fmt.Fprintln(p.w, strings.Repeat("=", len([]rune(s))))
}

func (p *Printer) table(headers []string, rows [][]string) error {
	table := tablewriter.NewTable(p.w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{
					AutoFormat: tw.Off,
				},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{
				Left:   tw.Off,
				Right:  tw.Off,
				Top:    tw.Off,
				Bottom: tw.Off,
			},
			Settings: tw.Settings{
				Separators: tw.Separators{
					BetweenColumns: tw.Off,
				},
			},
		}),
	)

	table.Header(headers)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("appending row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering table: %w", err)
	}
	fmt.Fprintln(p.w)
	return nil
}

// trendText renders a trend with its arrow, green when good and red when bad.
func (p *Printer) trendText(r trend.Result) string {
	s := theme.TrendArrow(r.Direction) + " " + r.Display
	if !p.colored {
		return s
	}
	switch r.Direction {
	case trend.Up, trend.DownReverse:
		return color.GreenString(s)
	case trend.Down, trend.UpReverse:
		return color.RedString(s)
	default:
		return s
	}
}

// Summary prints the KPI cards and the top tag tables of a summary.
func (p *Printer) Summary(s model.Summary, v model.ViewState, periodLabel string) error {
	p.title(fmt.Sprintf("%s · %s · %s", v.Division.Label(), v.DailyType.Label(), periodLabel))

	cards := dash.BuildKPIs(s, v.DailyType)
	rows := make([][]string, 0, len(cards))
	for _, c := range cards {
		rows = append(rows, []string{c.Title, c.Value, c.Period, p.trendText(c.Trend)})
	}
	if err := p.table([]string{"지표", "값", "비교", "추이"}, rows); err != nil {
		return err
	}

	topN := v.TopN
	if topN <= 0 {
		topN = model.DefaultViewState().TopN
	}
	if err := p.TopTags(dash.TopTagsTitle(v.DailyType, topN), dash.TopTags(s.TopTags)); err != nil {
		return err
	}
	if len(s.IncMonthTop) > 0 {
		if err := p.TopTags("월간 증가 태그", dash.TopTags(s.IncMonthTop)); err != nil {
			return err
		}
	}
	if s.LastUpload != "" {
		fmt.Fprintf(p.w, "마지막 업로드: %s\n", s.LastUpload)
	}
	return nil
}

// TopTags prints a ranked tag table.
func (p *Printer) TopTags(title string, tags []dash.TagRow) error {
	p.title(title)
	if len(tags) == 0 {
		fmt.Fprintln(p.w, "데이터 없음")
		fmt.Fprintln(p.w)
		return nil
	}
	rows := make([][]string, 0, len(tags))
	for _, t := range tags {
		dir := trend.Neutral
		switch {
		case t.TrendPct > 0:
			dir = trend.Up
		case t.TrendPct < 0:
			dir = trend.Down
		}
		rows = append(rows, []string{
			strconv.Itoa(t.No),
			t.SubCategory,
			strconv.FormatInt(t.Cnt, 10),
			p.trendText(trend.Result{Direction: dir, Display: t.Trend()}),
		})
	}
	return p.table([]string{"No", "태그", "건수", "추이"}, rows)
}

// Issues prints the issue reports of a period.
func (p *Printer) Issues(periodLabel string, issues []model.FlatIssue) error {
	p.title("이슈 리포트 · " + periodLabel)
	if len(issues) == 0 {
		fmt.Fprintln(p.w, "등록된 이슈가 없습니다")
		fmt.Fprintln(p.w)
		return nil
	}
	rows := make([][]string, 0, len(issues))
	for _, is := range issues {
		rows = append(rows, []string{
			strconv.FormatInt(is.IssueReportID, 10),
			is.Category,
			is.MidCategory,
			is.SubCategory,
			strconv.FormatInt(is.OrgCnt, 10),
			is.IssueDetail,
		})
	}
	return p.table([]string{"ID", "대분류", "중분류", "소분류", "건수", "내용"}, rows)
}

// Weeks prints the selectable weeks of a year.
func (p *Printer) Weeks(year int) error {
	p.title(fmt.Sprintf("%d년 주차", year))
	opts := pm.WeekOptions(year)
	rows := make([][]string, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []string{strconv.Itoa(o.Week), pm.FormatDate(o.Monday), o.Label()})
	}
	return p.table([]string{"주", "시작일", "표시"}, rows)
}

// Periods prints the day, week and month containing a date.
func (p *Printer) Periods(periods []pm.Period) error {
	p.title("기간")
	rows := make([][]string, 0, len(periods))
	for _, q := range periods {
		rows = append(rows, []string{
			q.Kind().String(),
			q.Canonical(),
			q.Label(),
			pm.FormatDate(q.Next().Anchor().AddDate(0, 0, -1)),
		})
	}
	return p.table([]string{"단위", "기준일", "표시", "종료일"}, rows)
}
