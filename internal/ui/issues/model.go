// Package issues is the issue report editor: one row per report for the
// selected period, each edited through a cascading category form.
package issues

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carepartner/internal/category"
	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/keys"
	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/theme"
)

// EffectMsg asks the parent to run an effect against the server.
type EffectMsg struct {
	Effect issue.Effect
}

// ResultMsg carries an effect's outcome back to the editor.
type ResultMsg struct {
	Result issue.Result
}

// LoadedMsg carries the reports of a period.
type LoadedMsg struct {
	Context issue.Context
	Issues  []model.FlatIssue
	Err     error
}

// CloseMsg asks the parent to leave the editor.
type CloseMsg struct{}

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type confirmBinding struct {
	ok bool
}

// Model is the issue report editor.
type Model struct {
	keys *keys.KeyMap
	tree *category.Tree
	coll *issue.Collection

	mode    mode
	cursor  int
	form    *huh.Form
	values  *Values
	confirm *huh.Form
	cb      *confirmBinding
	// formKey is the row the open form edits.
	formKey string

	loading bool
	status  string
	width   int
	height  int
}

// New creates the editor over the given category tree.
func New(k *keys.KeyMap, tree *category.Tree, width, height int) Model {
	return Model{
		keys:   k,
		tree:   tree,
		coll:   issue.NewCollection(issue.Context{}, tree),
		values: &Values{},
		cb:     &confirmBinding{},
		width:  width,
		height: height,
	}
}

// Open starts a fresh collection for ctx; the parent loads the reports
// and answers with LoadedMsg.
func (m *Model) Open(ctx issue.Context) {
	m.coll = issue.NewCollection(ctx, m.tree)
	m.mode = modeList
	m.cursor = 0
	m.loading = true
	m.status = ""
}

// Collection exposes the rows, mainly for the parent's loader.
func (m Model) Collection() *issue.Collection { return m.coll }

// Editing reports whether a form or confirm dialog has focus.
func (m Model) Editing() bool { return m.mode != modeList }

func emit(eff issue.Effect) tea.Cmd {
	if eff == nil {
		return nil
	}
	return func() tea.Msg { return EffectMsg{Effect: eff} }
}

// dispatch applies in to the row at i and emits any resulting effect.
func (m *Model) dispatch(i int, in issue.Intent) tea.Cmd {
	eff, err := m.coll.Dispatch(i, in)
	switch {
	case errors.Is(err, issue.ErrLastRow):
		m.status = "마지막 행은 삭제할 수 없습니다"
	case errors.Is(err, issue.ErrValidation):
		m.status = "필수 항목을 확인하세요"
	case err != nil:
		m.status = err.Error()
	}
	m.clampCursor()
	return emit(eff)
}

func (m *Model) clampCursor() {
	m.cursor = min(max(m.cursor, 0), m.coll.Len()-1)
}

// Update handles messages for the editor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Context != m.coll.Context() {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.status = "불러오기 실패: " + msg.Err.Error()
			return m, nil
		}
		m.coll.Hydrate(msg.Issues)
		m.clampCursor()
		return m, nil

	case ResultMsg:
		err := m.coll.Resolve(msg.Result)
		switch {
		case err != nil:
			m.status = err.Error()
		default:
			switch msg.Result.(type) {
			case issue.SaveResult:
				m.status = "저장되었습니다"
			case issue.DeleteResult:
				m.status = "삭제되었습니다"
			}
		}
		m.clampCursor()
		return m, nil
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}

	km, ok := msg.(tea.KeyMsg)
	if !ok || m.loading {
		return m, nil
	}
	return m.handleKey(km)
}

func (m Model) handleKey(km tea.KeyMsg) (Model, tea.Cmd) {
	row, _ := m.coll.Row(m.cursor)

	switch {
	case key.Matches(km, m.keys.Down):
		if m.cursor < m.coll.Len()-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.New):
		r := m.coll.AddRow()
		m.cursor = m.coll.Len() - 1
		return m, m.openForm(r)
	case key.Matches(km, m.keys.Edit), key.Matches(km, m.keys.Select):
		if row.Busy() {
			return m, nil
		}
		cmd := m.dispatch(m.cursor, issue.Edit{})
		row, _ = m.coll.Row(m.cursor)
		if row.Mode == issue.Editing {
			return m, tea.Batch(cmd, m.openForm(row))
		}
		return m, cmd
	case key.Matches(km, m.keys.Save):
		m.status = ""
		return m, m.dispatch(m.cursor, issue.Submit{})
	case key.Matches(km, m.keys.Cancel):
		m.status = ""
		return m, m.dispatch(m.cursor, issue.Cancel{})
	case key.Matches(km, m.keys.Delete):
		if row.Busy() {
			return m, nil
		}
		if !row.Saved() {
			return m, m.dispatch(m.cursor, issue.Delete{})
		}
		return m, m.openConfirm(row)
	case key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, nil
}

func options(names []string) []huh.Option[string] {
	return huh.NewOptions(names...)
}

func (m *Model) openForm(r issue.Row) tea.Cmd {
	*m.values = ValuesOf(r)
	m.formKey = r.Key
	m.mode = modeForm

	v := m.values
	var fields []huh.Field
	if m.coll.Context().Category == "" {
		fields = append(fields, huh.NewSelect[string]().
			Title("대분류").
			Options(options(m.tree.Categories())...).
			Value(&v.Category))
	}
	fields = append(fields,
		huh.NewSelect[string]().
			Title("중분류").
			OptionsFunc(func() []huh.Option[string] {
				return options(m.tree.MidCategoriesOf(v.Category))
			}, &v.Category).
			Value(&v.MidCategory),
		huh.NewSelect[string]().
			Title("소분류").
			OptionsFunc(func() []huh.Option[string] {
				return options(m.tree.SubCategoriesOf(v.Category, v.MidCategory))
			}, &v.MidCategory).
			Value(&v.SubCategory),
	)

	m.form = huh.NewForm(
		huh.NewGroup(fields...),
		huh.NewGroup(
			huh.NewText().
				Title("이슈 내용").
				Value(&v.Detail),
			huh.NewText().
				Title(fmt.Sprintf("링크 (한 줄에 하나, 최대 %d개)", issue.MaxLinks)).
				Lines(issue.MaxLinks).
				Value(&v.Links),
			huh.NewText().
				Title("의견").
				Value(&v.Opinion),
		),
	).WithWidth(m.formWidth())

	return m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.mode = modeList
		m.form = nil
		return m, m.applyValues()
	case huh.StateAborted:
		m.mode = modeList
		m.form = nil
		return m, nil
	}
	return m, cmd
}

// applyValues turns the submitted form into intents on the edited row.
func (m *Model) applyValues() tea.Cmd {
	i := m.coll.IndexOf(m.formKey)
	row, ok := m.coll.Row(i)
	if !ok {
		return nil
	}
	var cmds []tea.Cmd
	for _, in := range Intents(row, *m.values) {
		cmds = append(cmds, m.dispatch(i, in))
	}
	return tea.Batch(cmds...)
}

func (m *Model) openConfirm(r issue.Row) tea.Cmd {
	m.cb.ok = false
	m.formKey = r.Key
	m.mode = modeConfirmDelete
	m.confirm = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s > %s > %s 이슈를 삭제할까요?", r.Category, r.MidCategory, r.SubCategory)).
				Affirmative("삭제").
				Negative("취소").
				Value(&m.cb.ok),
		),
	).WithWidth(m.formWidth())
	return m.confirm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		m.mode = modeList
		m.confirm = nil
		if !m.cb.ok {
			return m, nil
		}
		i := m.coll.IndexOf(m.formKey)
		if i < 0 {
			return m, nil
		}
		eff, err := m.coll.RemoveRow(i)
		if err != nil {
			m.status = err.Error()
			if errors.Is(err, issue.ErrLastRow) {
				m.status = "마지막 행은 삭제할 수 없습니다"
			}
			return m, nil
		}
		return m, emit(eff)
	case huh.StateAborted:
		m.mode = modeList
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

// View renders the editor.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return lipgloss.NewStyle().Padding(1, 2).Render(
			theme.TitleStyle.Render("이슈 편집") + "\n" + m.form.View())
	case modeConfirmDelete:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.confirm.View())
	}

	ctx := m.coll.Context()
	title := fmt.Sprintf("이슈 리포트 · %s %s", ctx.DailyType.Label(), ctx.StartDate)
	if ctx.Category != "" {
		title += " · " + ctx.Category
	}

	var rows []string
	if m.loading {
		rows = append(rows, theme.DimmedStyle.Render("불러오는 중..."))
	} else {
		for i, r := range m.coll.Rows() {
			rows = append(rows, m.renderRow(i, r))
		}
	}

	parts := []string{theme.TitleStyle.Render(title), strings.Join(rows, "\n")}
	if m.status != "" {
		parts = append(parts, theme.DimmedStyle.Render(m.status))
	}
	parts = append(parts, theme.HelpStyle.Render(
		"n 추가 · e 편집 · ctrl+s 저장 · c 취소 · x 삭제 · esc 닫기"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m Model) renderRow(i int, r issue.Row) string {
	state := r.Mode.String()
	if r.Sync != issue.Idle {
		state = r.Sync.String()
	}
	if r.Deleting {
		state = "deleting"
	}

	path := fmt.Sprintf("%s > %s > %s", dash(r.Category), dash(r.MidCategory), dash(r.SubCategory))
	links := 0
	for _, l := range r.Links {
		if strings.TrimSpace(l) != "" {
			links++
		}
	}
	line := fmt.Sprintf("%2d %s %s  %d건  링크 %d  %s",
		i+1, theme.SyncStyle(r.Sync.String()).Render(state), path, r.OrgCnt, links, truncate(r.IssueDetail, 40))

	var extra []string
	for _, f := range []string{issue.FieldDailyType, issue.FieldCategory, issue.FieldMidCategory, issue.FieldSubCategory} {
		if msg, ok := r.Errors[f]; ok {
			extra = append(extra, theme.ErrorStyle.Render("   "+msg))
		}
	}
	if r.Err != nil {
		extra = append(extra, theme.ErrorStyle.Render("   "+r.Err.Error()))
	}

	style := theme.ListItemStyle
	if i == m.cursor {
		style = theme.SelectedItemStyle
	}
	return style.Render(strings.Join(append([]string{line}, extra...), "\n"))
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// SetSize updates the editor dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}
