package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/carepartner/internal/model"
)

var testNow = time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC) // Thursday

func TestCurrentPeriodDefaultsToNow(t *testing.T) {
	v := model.ViewState{DailyType: model.DailyTypeDaily}
	assert.Equal(t, "2024-03-14", CurrentPeriod(v, testNow).Canonical())

	v.DailyType = model.DailyTypeWeekly
	assert.Equal(t, "2024-03-11", CurrentPeriod(v, testNow).Canonical())

	v.DailyType = model.DailyTypeMonthly
	assert.Equal(t, "2024-03-01", CurrentPeriod(v, testNow).Canonical())
}

func TestCurrentPeriodBadStartDate(t *testing.T) {
	v := model.ViewState{DailyType: model.DailyTypeDaily, StartDate: "yesterday"}
	assert.Equal(t, "2024-03-14", CurrentPeriod(v, testNow).Canonical())
}

func TestShiftPeriod(t *testing.T) {
	v := model.ViewState{DailyType: model.DailyTypeDaily, StartDate: "2024-03-01"}
	assert.Equal(t, "2024-02-29", ShiftPeriod(v, -1, testNow).StartDate)

	v = model.ViewState{DailyType: model.DailyTypeMonthly}
	assert.Equal(t, "2024-01-01", ShiftPeriod(v, -2, testNow).StartDate)
	assert.Equal(t, "2024-04-01", ShiftPeriod(v, 1, testNow).StartDate)
}

func TestCycleDivisionWraps(t *testing.T) {
	v := model.ViewState{Division: model.DivisionAll}
	assert.Equal(t, model.DivisionCaregiver, CycleDivision(v, 1).Division)
	assert.Equal(t, model.DivisionNormal, CycleDivision(v, -1).Division)

	v.Division = model.DivisionNormal
	assert.Equal(t, model.DivisionAll, CycleDivision(v, 1).Division)
}

func TestCycleDailyTypeKeepsAnchor(t *testing.T) {
	v := model.ViewState{DailyType: model.DailyTypeDaily, StartDate: "2024-02-14"}

	v = CycleDailyType(v, testNow)
	assert.Equal(t, model.DailyTypeWeekly, v.DailyType)
	assert.Equal(t, "2024-02-12", v.StartDate)

	v = CycleDailyType(v, testNow)
	assert.Equal(t, model.DailyTypeMonthly, v.DailyType)
	assert.Equal(t, "2024-02-01", v.StartDate)

	v = CycleDailyType(v, testNow)
	assert.Equal(t, model.DailyTypeDaily, v.DailyType)
	assert.Equal(t, "2024-02-01", v.StartDate)
}

func TestCycleDailyTypeWithoutStartDate(t *testing.T) {
	v := CycleDailyType(model.ViewState{DailyType: model.DailyTypeDaily}, testNow)
	assert.Equal(t, model.DailyTypeWeekly, v.DailyType)
	assert.Empty(t, v.StartDate)
}

func TestCycleTopN(t *testing.T) {
	assert.Equal(t, 10, CycleTopN(model.ViewState{TopN: 5}).TopN)
	assert.Equal(t, 3, CycleTopN(model.ViewState{TopN: 10}).TopN)
	assert.Equal(t, 3, CycleTopN(model.ViewState{TopN: 7}).TopN)
}

func TestFindDivision(t *testing.T) {
	d, ok := FindDivision("org")
	assert.True(t, ok)
	assert.Equal(t, model.DivisionOrg, d)

	d, ok = FindDivision("요양사")
	assert.True(t, ok)
	assert.Equal(t, model.DivisionCaregiver, d)

	d, ok = FindDivision("all")
	assert.True(t, ok)
	assert.Equal(t, model.DivisionAll, d)

	_, ok = FindDivision("vendors")
	assert.False(t, ok)
}

func TestIssueContext(t *testing.T) {
	v := model.ViewState{Division: model.DivisionOrg, DailyType: model.DailyTypeWeekly}
	ic := IssueContext(v, testNow)
	assert.Equal(t, "기관", ic.Category)
	assert.Equal(t, model.DailyTypeWeekly, ic.DailyType)
	assert.Equal(t, "2024-03-11", ic.StartDate)

	assert.Empty(t, IssueContext(model.ViewState{DailyType: model.DailyTypeDaily}, testNow).Category)
}

func TestSurveyRange(t *testing.T) {
	start, end := SurveyRange(model.ViewState{DailyType: model.DailyTypeMonthly, StartDate: "2024-02-10"}, testNow)
	assert.Equal(t, "2024-02-01", start)
	assert.Equal(t, "2024-02-29", end)

	start, end = SurveyRange(model.ViewState{DailyType: model.DailyTypeWeekly}, testNow)
	assert.Equal(t, "2024-03-11", start)
	assert.Equal(t, "2024-03-17", end)

	start, end = SurveyRange(model.ViewState{DailyType: model.DailyTypeDaily}, testNow)
	assert.Equal(t, start, end)
}
