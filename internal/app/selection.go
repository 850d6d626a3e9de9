package app

import (
	"slices"
	"strings"
	"time"

	"github.com/nhle/carepartner/internal/issue"
	"github.com/nhle/carepartner/internal/model"
	pm "github.com/nhle/carepartner/internal/period"
)

// topNChoices are the sizes T cycles through.
var topNChoices = []int{3, 5, 10}

// CurrentPeriod resolves the period the view is showing. An empty or
// unparsable start date means the period containing now.
func CurrentPeriod(v model.ViewState, now time.Time) pm.Period {
	kind, err := pm.KindFromDailyType(string(v.DailyType))
	if err != nil {
		kind = pm.KindDay
	}
	if v.StartDate != "" {
		if p, err := pm.FromCanonical(kind, v.StartDate); err == nil {
			return p
		}
	}
	p, err := pm.Containing(kind, now)
	if err != nil {
		return pm.Day(now)
	}
	return p
}

// ShiftPeriod moves the view one period back (delta < 0) or forward.
func ShiftPeriod(v model.ViewState, delta int, now time.Time) model.ViewState {
	p := CurrentPeriod(v, now)
	for ; delta < 0; delta++ {
		p = p.Prev()
	}
	for ; delta > 0; delta-- {
		p = p.Next()
	}
	v.StartDate = p.Canonical()
	return v
}

// CycleDivision moves to the next (step 1) or previous (step -1) tab.
func CycleDivision(v model.ViewState, step int) model.ViewState {
	i := slices.Index(model.Divisions, v.Division)
	if i < 0 {
		i = 0
	}
	n := len(model.Divisions)
	v.Division = model.Divisions[((i+step)%n+n)%n]
	return v
}

// CycleDailyType switches daily, weekly and monthly in turn, keeping the
// anchor date so the new period contains the old one.
func CycleDailyType(v model.ViewState, now time.Time) model.ViewState {
	anchor := CurrentPeriod(v, now).Anchor()
	i := slices.Index(model.DailyTypes, v.DailyType)
	v.DailyType = model.DailyTypes[(i+1)%len(model.DailyTypes)]
	if v.StartDate != "" {
		v.StartDate = CurrentPeriod(model.ViewState{DailyType: v.DailyType}, anchor).Canonical()
	}
	return v
}

// CycleTopN steps through topNChoices.
func CycleTopN(v model.ViewState) model.ViewState {
	i := slices.Index(topNChoices, v.TopN)
	v.TopN = topNChoices[(i+1)%len(topNChoices)]
	return v
}

// FindDivision matches a division by its API value or tab label.
func FindDivision(name string) (model.Division, bool) {
	name = strings.TrimSpace(name)
	for _, d := range model.Divisions {
		if strings.EqualFold(string(d), name) || d.Label() == name {
			return d, true
		}
	}
	if strings.EqualFold(name, "all") {
		return model.DivisionAll, true
	}
	return model.DivisionAll, false
}

// IssueContext is the editor scope for the view: its period and, unless
// every division is shown, its category.
func IssueContext(v model.ViewState, now time.Time) issue.Context {
	return issue.Context{
		DailyType: v.DailyType,
		Category:  v.Division.Category(),
		StartDate: CurrentPeriod(v, now).Canonical(),
	}
}

// SurveyRange returns the first and last day of the view's period.
func SurveyRange(v model.ViewState, now time.Time) (string, string) {
	p := CurrentPeriod(v, now)
	last := p.Next().Anchor().AddDate(0, 0, -1)
	return p.Canonical(), pm.FormatDate(last)
}
