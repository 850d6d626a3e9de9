package issue

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carepartner/internal/category"
	"github.com/nhle/carepartner/internal/model"
)

func filledRow(t *testing.T) Row {
	t.Helper()
	r := NewRow("k1", model.DailyTypeWeekly, "", "2025-01-13")
	r, _ = r.Apply(nil, SetCategory{"요양사"})
	r, _ = r.Apply(nil, SetMidCategory{"앱 사용법"})
	r, eff := r.Apply(nil, SetSubCategory{"로그인"})
	require.IsType(t, CountEffect{}, eff)
	return r
}

func savedRow() Row {
	return FromFlat("k2", model.FlatIssue{
		IssueReportID: 42,
		DailyType:     model.DailyTypeDaily,
		StartDate:     "2025-03-07",
		Category:      "기관",
		MidCategory:   "오류 문의",
		SubCategory:   "결제 오류",
		OrgCnt:        9,
		IssueDetail:   "결제 실패 다수",
		LinkURL1:      "https://a.example",
		LinkURL3:      "https://c.example",
		Opinion:       "PG사 확인",
	})
}

func TestNewRowStartsEditing(t *testing.T) {
	r := NewRow("k", model.DailyTypeDaily, "기관", "2025-03-07")
	assert.Equal(t, Editing, r.Mode)
	assert.Equal(t, []string{""}, r.Links)
	assert.Equal(t, "기관", r.Category)
	assert.False(t, r.Saved())
}

func TestFromFlatCompactsLinks(t *testing.T) {
	r := savedRow()
	assert.Equal(t, Viewing, r.Mode)
	assert.Equal(t, int64(42), r.ID)
	assert.Equal(t, []string{"https://a.example", "https://c.example"}, r.Links)

	empty := FromFlat("k", model.FlatIssue{IssueReportID: 1})
	assert.Equal(t, []string{""}, empty.Links)
}

func TestFlattenKeepsLinkPositions(t *testing.T) {
	r := NewRow("k", model.DailyTypeDaily, "", "2025-03-07")
	r.Links = []string{"a", "", " c "}
	f := r.Flatten()
	assert.Equal(t, "a", f.LinkURL1)
	assert.Equal(t, "", f.LinkURL2)
	assert.Equal(t, "c", f.LinkURL3)
	assert.Equal(t, "", f.LinkURL4)
	assert.Equal(t, "2025-03-07", f.StartDate)
}

func TestCategoryCascadeResets(t *testing.T) {
	r := filledRow(t)
	r = r.ApplyCount(CountResult{Key: r.Key, Seq: r.countSeq, Count: 12})
	require.Equal(t, int64(12), r.OrgCnt)

	r, eff := r.Apply(nil, SetCategory{"기관"})
	assert.Nil(t, eff)
	assert.Equal(t, "기관", r.Category)
	assert.Empty(t, r.MidCategory)
	assert.Empty(t, r.SubCategory)
	assert.Zero(t, r.OrgCnt)
}

func TestMidCategoryResetsSub(t *testing.T) {
	r := filledRow(t)
	r, _ = r.Apply(nil, SetMidCategory{"오류 문의"})
	assert.Equal(t, "요양사", r.Category)
	assert.Equal(t, "오류 문의", r.MidCategory)
	assert.Empty(t, r.SubCategory)
	assert.Zero(t, r.OrgCnt)
}

func TestSetSubCategoryRequestsCount(t *testing.T) {
	r := NewRow("k", model.DailyTypeMonthly, "", "2025-03-01")
	r, _ = r.Apply(nil, SetCategory{"아카데미"})
	r, _ = r.Apply(nil, SetMidCategory{"수강 안내"})
	_, eff := r.Apply(nil, SetSubCategory{"수강료"})

	count, ok := eff.(CountEffect)
	require.True(t, ok)
	assert.Equal(t, model.IssueCountQuery{
		StartDate:   "2025-03-01",
		DailyType:   model.DailyTypeMonthly,
		Category:    "아카데미",
		MidCategory: "수강 안내",
		SubCategory: "수강료",
	}, count.Query)
}

func TestSetSubCategoryWithoutParentsRequestsNothing(t *testing.T) {
	r := NewRow("k", model.DailyTypeDaily, "", "2025-03-01")
	_, eff := r.Apply(nil, SetSubCategory{"로그인"})
	assert.Nil(t, eff)
}

func TestStaleCountIsDropped(t *testing.T) {
	r := NewRow("k", model.DailyTypeDaily, "", "2025-03-01")
	r, _ = r.Apply(nil, SetCategory{"요양사"})
	r, _ = r.Apply(nil, SetMidCategory{"앱 사용법"})
	r, first := r.Apply(nil, SetSubCategory{"로그인"})
	r, second := r.Apply(nil, SetSubCategory{"회원가입"})

	stale := first.(CountEffect)
	fresh := second.(CountEffect)

	r = r.ApplyCount(CountResult{Key: r.Key, Seq: fresh.Seq, Count: 3})
	r = r.ApplyCount(CountResult{Key: r.Key, Seq: stale.Seq, Count: 99})
	assert.Equal(t, int64(3), r.OrgCnt)
}

func TestCountFailureZeroes(t *testing.T) {
	r := filledRow(t)
	r.OrgCnt = 5
	r = r.ApplyCount(CountResult{Key: r.Key, Seq: r.countSeq, Err: errors.New("boom")})
	assert.Zero(t, r.OrgCnt)
}

func TestLinks(t *testing.T) {
	r := NewRow("k", model.DailyTypeDaily, "", "")

	r, _ = r.Apply(nil, RemoveLink{Index: 0})
	assert.Len(t, r.Links, 1, "last link cannot be removed")

	for i := 0; i < 6; i++ {
		r, _ = r.Apply(nil, AddLink{})
	}
	assert.Len(t, r.Links, MaxLinks)

	r, _ = r.Apply(nil, SetLink{Index: 2, Value: "https://x.example"})
	assert.Equal(t, "https://x.example", r.Links[2])

	r, _ = r.Apply(nil, SetLink{Index: 9, Value: "ignored"})
	r, _ = r.Apply(nil, RemoveLink{Index: 1})
	assert.Equal(t, []string{"", "https://x.example", ""}, r.Links)
}

func TestApplyDoesNotAliasPreviousRow(t *testing.T) {
	before := NewRow("k", model.DailyTypeDaily, "", "")
	before, _ = before.Apply(nil, AddLink{})
	after, _ := before.Apply(nil, SetLink{Index: 0, Value: "changed"})
	assert.Equal(t, "", before.Links[0])
	assert.Equal(t, "changed", after.Links[0])
}

func TestFieldIntentsIgnoredWhileViewing(t *testing.T) {
	r := savedRow()
	next, eff := r.Apply(nil, SetCategory{"요양사"})
	assert.Nil(t, eff)
	assert.Equal(t, "기관", next.Category)
}

func TestSubmitValidation(t *testing.T) {
	r := NewRow("k", model.DailyType(""), "", "")
	r, eff := r.Apply(nil, Submit{})
	assert.Nil(t, eff)
	assert.Equal(t, Editing, r.Mode)
	assert.Contains(t, r.Errors, FieldDailyType)
	assert.Contains(t, r.Errors, FieldCategory)
	assert.Contains(t, r.Errors, FieldMidCategory)
	assert.Contains(t, r.Errors, FieldSubCategory)

	r, _ = r.Apply(nil, SetCategory{"요양사"})
	assert.NotContains(t, r.Errors, FieldCategory)
	assert.Contains(t, r.Errors, FieldMidCategory)
}

func TestSubmitSuccessCommits(t *testing.T) {
	r := filledRow(t)
	r, _ = r.Apply(nil, SetDetail{"로그인 실패 문의 급증"})

	r, eff := r.Apply(nil, Submit{})
	save, ok := eff.(SaveEffect)
	require.True(t, ok)
	assert.Equal(t, Pending, r.Sync)
	assert.Equal(t, "로그인", save.Issue.SubCategory)
	assert.Zero(t, save.Issue.IssueReportID)

	// Field edits are locked while the save is in flight.
	locked, _ := r.Apply(nil, SetOpinion{"x"})
	assert.Empty(t, locked.Opinion)

	r = r.ApplySave(SaveResult{Key: r.Key, ID: 77})
	assert.Equal(t, Committed, r.Sync)
	assert.Equal(t, Viewing, r.Mode)
	assert.Equal(t, int64(77), r.ID)
}

func TestSubmitFailureStaysEditing(t *testing.T) {
	r := filledRow(t)
	r, _ = r.Apply(nil, Submit{})
	r = r.ApplySave(SaveResult{Key: r.Key, Err: errors.New("503")})

	assert.Equal(t, Failed, r.Sync)
	assert.Equal(t, Editing, r.Mode)
	assert.ErrorIs(t, r.Err, ErrSave)
	assert.False(t, r.Saved())

	_, eff := r.Apply(nil, Submit{})
	assert.IsType(t, SaveEffect{}, eff, "retry allowed after failure")
}

func TestSaveResultIgnoredWhenNotPending(t *testing.T) {
	r := savedRow()
	next := r.ApplySave(SaveResult{Key: r.Key, ID: 1})
	assert.Equal(t, r.ID, next.ID)
	assert.Equal(t, Idle, next.Sync)
}

func TestCancelRestoresSnapshot(t *testing.T) {
	r := savedRow()
	r, _ = r.Apply(nil, Edit{})
	require.Equal(t, Editing, r.Mode)

	r, _ = r.Apply(nil, SetCategory{"요양사"})
	r, _ = r.Apply(nil, AddLink{})
	r, eff := r.Apply(nil, Cancel{})

	assert.Nil(t, eff)
	assert.Equal(t, Viewing, r.Mode)
	assert.Equal(t, "기관", r.Category)
	assert.Equal(t, "결제 오류", r.SubCategory)
	assert.Len(t, r.Links, 2)
}

func TestCancelAfterSaveRestoresSavedValues(t *testing.T) {
	r := filledRow(t)
	r, _ = r.Apply(nil, SetOpinion{"first"})
	r, _ = r.Apply(nil, Submit{})
	r = r.ApplySave(SaveResult{Key: r.Key, ID: 5})

	r, _ = r.Apply(nil, Edit{})
	r, _ = r.Apply(nil, SetOpinion{"second"})
	r, _ = r.Apply(nil, Cancel{})
	assert.Equal(t, "first", r.Opinion)
}

func TestCancelUnsavedRowRemoves(t *testing.T) {
	r := NewRow("k", model.DailyTypeDaily, "", "")
	_, eff := r.Apply(nil, Cancel{})
	assert.Equal(t, RemoveEffect{Key: "k"}, eff)
}

func TestDelete(t *testing.T) {
	_, eff := NewRow("k", model.DailyTypeDaily, "", "").Apply(nil, Delete{})
	assert.Equal(t, RemoveEffect{Key: "k"}, eff)

	r, eff := savedRow().Apply(nil, Delete{})
	assert.Equal(t, DeleteEffect{Key: "k2", ID: 42}, eff)
	assert.True(t, r.Deleting)

	_, again := r.Apply(nil, Delete{})
	assert.Nil(t, again, "no second delete while one is in flight")

	r = r.ApplyDeleteFailure(errors.New("timeout"))
	assert.False(t, r.Deleting)
	assert.ErrorIs(t, r.Err, ErrDelete)
}

func TestFieldErrorsMessageOrder(t *testing.T) {
	fe := FieldErrors{FieldSubCategory: "c", FieldCategory: "a"}
	assert.Equal(t, "category: a, subCategory: c", fe.Error())
}

func TestCascadeRefusesPathsOutsideTree(t *testing.T) {
	r := NewRow("k", model.DailyTypeWeekly, "", "2025-01-13")
	r, _ = r.Apply(nil, SetCategory{"요양사"})

	// A mid-category of 아카데미 is not offered under 요양사.
	r, eff := r.Apply(nil, SetMidCategory{"시험 및 자격"})
	assert.Nil(t, eff)
	assert.Empty(t, r.MidCategory)
	assert.Contains(t, r.Errors, FieldMidCategory)

	r, _ = r.Apply(nil, SetMidCategory{"앱 사용법"})
	assert.NotContains(t, r.Errors, FieldMidCategory)

	r, eff = r.Apply(nil, SetSubCategory{"없는 소분류"})
	assert.Nil(t, eff)
	assert.Empty(t, r.SubCategory)
	assert.Contains(t, r.Errors, FieldSubCategory)

	r, eff = r.Apply(nil, Submit{})
	assert.Nil(t, eff)
	assert.Equal(t, Idle, r.Sync)
	assert.Contains(t, r.Errors, FieldSubCategory)
}

func TestUnknownCategoryRefused(t *testing.T) {
	r := filledRow(t)
	next, eff := r.Apply(nil, SetCategory{"협력사"})
	assert.Nil(t, eff)
	assert.Equal(t, "요양사", next.Category)
	assert.Equal(t, "로그인", next.SubCategory, "refused change does not reset lower levels")
	assert.Contains(t, next.Errors, FieldCategory)
}

func TestSubmitRejectsStalePath(t *testing.T) {
	r := FromFlat("k", model.FlatIssue{
		IssueReportID: 3,
		DailyType:     model.DailyTypeDaily,
		Category:      "요양사",
		MidCategory:   "시험 및 자격",
		SubCategory:   "시험 접수",
	})
	r, _ = r.Apply(nil, Edit{})

	r, eff := r.Apply(nil, Submit{})
	assert.Nil(t, eff)
	assert.Equal(t, Editing, r.Mode)
	assert.Equal(t, FieldErrors{FieldMidCategory: unknownMidCategory}, r.Errors)
}

func TestApplyUsesGivenTree(t *testing.T) {
	tree, err := category.New([]category.Node{
		{Name: "협력사", Sub: []category.Node{
			{Name: "정산", Sub: []category.Node{{Name: "지급 지연"}}},
		}},
	})
	require.NoError(t, err)

	r := NewRow("k", model.DailyTypeDaily, "", "2025-03-07")
	r, _ = r.Apply(tree, SetCategory{"요양사"})
	assert.Empty(t, r.Category, "not in this tree")

	r, _ = r.Apply(tree, SetCategory{"협력사"})
	r, _ = r.Apply(tree, SetMidCategory{"정산"})
	r, eff := r.Apply(tree, SetSubCategory{"지급 지연"})
	assert.IsType(t, CountEffect{}, eff)
	assert.Empty(t, r.Errors)

	_, eff = r.Apply(tree, Submit{})
	assert.IsType(t, SaveEffect{}, eff)
}
