package issues

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carepartner/internal/category"
	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/keys"
	"github.com/nhle/carepartner/internal/model"
)

var testCtx = issue.Context{DailyType: model.DailyTypeDaily, StartDate: "2024-03-15"}

func newEditor() Model {
	m := New(keys.DefaultKeyMap(), category.Default(), 100, 30)
	m.Open(testCtx)
	return m
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func effects(cmd tea.Cmd) []issue.Effect {
	var out []issue.Effect
	for _, msg := range collect(cmd) {
		if em, ok := msg.(EffectMsg); ok {
			out = append(out, em.Effect)
		}
	}
	return out
}

func fill(t *testing.T, m *Model) []issue.Effect {
	t.Helper()
	row, ok := m.coll.Row(m.cursor)
	require.True(t, ok)
	m.formKey = row.Key
	*m.values = Values{Category: "요양사", MidCategory: "앱 사용법", SubCategory: "로그인"}
	return effects(m.applyValues())
}

func TestLoadedHydrates(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx, Issues: []model.FlatIssue{
		{IssueReportID: 1, DailyType: model.DailyTypeDaily, Category: "기관", MidCategory: "기타", SubCategory: "기타"},
		{IssueReportID: 2, DailyType: model.DailyTypeDaily, Category: "요양사", MidCategory: "기타", SubCategory: "기타"},
	}})
	assert.Equal(t, 2, m.coll.Len())
	assert.Contains(t, m.View(), "기관 > 기타 > 기타")
}

func TestLoadedForOtherContextIgnored(t *testing.T) {
	m := newEditor()
	other := testCtx
	other.StartDate = "2024-03-14"
	m, _ = m.Update(LoadedMsg{Context: other, Issues: []model.FlatIssue{{IssueReportID: 1}}})
	assert.True(t, m.loading)
	assert.Equal(t, 1, m.coll.Len())
}

func TestLoadFailureShowsStatus(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx, Err: errors.New("timeout")})
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "timeout")
}

func TestFillRequestsCount(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx})

	effs := fill(t, &m)
	require.Len(t, effs, 1)
	count, ok := effs[0].(issue.CountEffect)
	require.True(t, ok)
	assert.Equal(t, "로그인", count.Query.SubCategory)
	assert.Equal(t, "2024-03-15", count.Query.StartDate)

	m, _ = m.Update(ResultMsg{Result: issue.CountResult{Key: count.Key, Seq: count.Seq, Count: 12}})
	row, _ := m.coll.Row(0)
	assert.Equal(t, int64(12), row.OrgCnt)
}

func TestSaveBlankRowShowsValidation(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Empty(t, effects(cmd))
	assert.Equal(t, "필수 항목을 확인하세요", m.status)
	assert.Contains(t, m.View(), "대분류를 선택하세요")
}

func TestSaveFlow(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx})
	fill(t, &m)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	effs := effects(cmd)
	require.Len(t, effs, 1)
	save, ok := effs[0].(issue.SaveEffect)
	require.True(t, ok)
	assert.Equal(t, "요양사", save.Issue.Category)

	m, _ = m.Update(ResultMsg{Result: issue.SaveResult{Key: save.Key, ID: 77}})
	row, _ := m.coll.Row(0)
	assert.Equal(t, int64(77), row.ID)
	assert.Equal(t, issue.Committed, row.Sync)
	assert.Equal(t, "저장되었습니다", m.status)
}

func TestStaleMidAfterCategorySwitchNotSaved(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx})
	fill(t, &m)

	row, _ := m.coll.Row(0)
	m.formKey = row.Key
	// The mid select still holds the previous category's value.
	*m.values = Values{Category: "일반", MidCategory: "기타", SubCategory: "기타"}
	assert.Empty(t, effects(m.applyValues()))

	row, _ = m.coll.Row(0)
	assert.Equal(t, "일반", row.Category)
	assert.Empty(t, row.MidCategory)
	assert.Contains(t, row.Errors, issue.FieldMidCategory)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Empty(t, effects(cmd))
	assert.Equal(t, "필수 항목을 확인하세요", m.status)
}

func TestDeleteOnlyRowRefused(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx})

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Empty(t, effects(cmd))
	assert.Equal(t, "마지막 행은 삭제할 수 없습니다", m.status)
	assert.Equal(t, 1, m.coll.Len())
}

func TestNewRowOpensForm(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	assert.Equal(t, 2, m.coll.Len())
	assert.Equal(t, 1, m.cursor)
	assert.True(t, m.Editing())

	// Unsaved second row can be removed locally once the form is closed.
	m.mode = modeList
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Empty(t, effects(cmd))
	assert.Equal(t, 1, m.coll.Len())
	assert.Equal(t, 0, m.cursor)
}

func TestCancelUnsavedOnlyRowResets(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx})
	fill(t, &m)
	before, _ := m.coll.Row(0)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	after, _ := m.coll.Row(0)
	assert.Equal(t, 1, m.coll.Len())
	assert.NotEqual(t, before.Key, after.Key)
	assert.Empty(t, after.Category)
}

func TestEscCloses(t *testing.T) {
	m := newEditor()
	m, _ = m.Update(LoadedMsg{Context: testCtx})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []tea.Msg{CloseMsg{}}, collect(cmd))
}
