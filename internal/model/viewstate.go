package model

import "time"

// ViewState is the dashboard selection restored on the next launch.
type ViewState struct {
	Division  Division  `db:"division"`
	DailyType DailyType `db:"daily_type"`
	// StartDate is the canonical YYYY-MM-DD anchor; empty means today.
	StartDate string    `db:"start_date"`
	TopN      int       `db:"top_n"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DefaultViewState is what a fresh install shows.
func DefaultViewState() ViewState {
	return ViewState{
		Division:  DivisionAll,
		DailyType: DailyTypeDaily,
		TopN:      5,
	}
}

// SummaryQuery returns the summary request for this view.
func (v ViewState) SummaryQuery(excluded []string) SummaryQuery {
	return SummaryQuery{
		Division:    v.Division,
		DailyType:   v.DailyType,
		StartDate:   v.StartDate,
		ExcludeTags: excluded,
		TopN:        v.TopN,
	}
}
