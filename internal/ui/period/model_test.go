package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carepartner/internal/model"
	pm "github.com/nhle/carepartner/internal/period"
)

var now = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func TestSelectionForDefaultsToToday(t *testing.T) {
	sel := SelectionFor(model.ViewState{}, now)
	assert.Equal(t, model.DailyTypeDaily, sel.DailyType)
	assert.Equal(t, "2024-03-15", sel.Date)
	assert.Equal(t, "2024", sel.Year)
	assert.Equal(t, 3, sel.Month)
	assert.Equal(t, pm.WeekOfDate(now), sel.Week)
}

func TestSelectionForUsesViewStartDate(t *testing.T) {
	sel := SelectionFor(model.ViewState{DailyType: model.DailyTypeMonthly, StartDate: "2023-11-01"}, now)
	assert.Equal(t, model.DailyTypeMonthly, sel.DailyType)
	assert.Equal(t, "2023", sel.Year)
	assert.Equal(t, 11, sel.Month)
}

func TestSelectionPeriod(t *testing.T) {
	p, err := Selection{DailyType: model.DailyTypeDaily, Date: " 2024-03-15 "}.Period()
	require.NoError(t, err)
	assert.Equal(t, pm.KindDay, p.Kind())
	assert.Equal(t, "2024-03-15", p.Canonical())

	p, err = Selection{DailyType: model.DailyTypeMonthly, Year: "2024", Month: 2}.Period()
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", p.Canonical())

	p, err = Selection{DailyType: model.DailyTypeWeekly, Year: "2024", Week: 1}.Period()
	require.NoError(t, err)
	assert.Equal(t, pm.FormatDate(pm.MondayOfWeek(2024, 1)), p.Canonical())
}

func TestSelectionPeriodErrors(t *testing.T) {
	_, err := Selection{DailyType: model.DailyTypeDaily, Date: "15/03/2024"}.Period()
	assert.Error(t, err)

	_, err = Selection{DailyType: model.DailyTypeWeekly, Year: "abc", Week: 1}.Period()
	assert.Error(t, err)

	_, err = Selection{DailyType: model.DailyTypeWeekly, Year: "2024", Week: 99}.Period()
	assert.ErrorIs(t, err, pm.ErrWeekOutOfRange)

	_, err = Selection{DailyType: model.DailyTypeMonthly, Year: "2024", Month: 13}.Period()
	assert.ErrorIs(t, err, pm.ErrMonthOutOfRange)
}

func TestWeekOptions(t *testing.T) {
	opts := weekOptions("2024")
	require.Len(t, opts, pm.WeeksInYear(2024))
	assert.Equal(t, 1, opts[0].Value)
	assert.Nil(t, weekOptions("twenty"))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateDate("2024-01-31"))
	assert.Error(t, validateDate("2024-13-01"))
	assert.NoError(t, validateYear("2024"))
	assert.Error(t, validateYear("24"))
}
