package dashboard

import (
	"fmt"

	"github.com/nhle/carepartner/internal/model"
)

// Share is one slice of the consultation type breakdown.
type Share struct {
	Name  string
	Value int64
}

// ChannelShares returns the consultation type breakdown of the current
// period. Missing data yields zero counts.
func ChannelShares(s model.Summary) []Share {
	var c model.Consultation
	for _, item := range s.Consultation {
		if item.DayIndex == 0 {
			c = item
			break
		}
	}
	return []Share{
		{Name: "사용법", Value: c.HowToUse},
		{Name: "오류문의", Value: c.Error},
		{Name: "불편신고", Value: c.Inconvenience},
		{Name: "기타", Value: c.Etc},
	}
}

// Point is one labelled sample of a time series.
type Point struct {
	Label string
	Value float64
}

// SatisfactionSeries returns average satisfaction oldest first.
func SatisfactionSeries(s model.Summary, dt model.DailyType) []Point {
	points := make([]Point, len(s.SurveyOverallAvg))
	for i, item := range s.SurveyOverallAvg {
		points[len(points)-1-i] = Point{
			Label: RelativePeriodLabel(dt, item.DayIndex),
			Value: item.AvgOverallSat,
		}
	}
	return points
}

// ConsultationSeries returns the per-type counts oldest first, one series
// per share name.
func ConsultationSeries(s model.Summary, dt model.DailyType) map[string][]Point {
	out := map[string][]Point{}
	for i := len(s.Consultation) - 1; i >= 0; i-- {
		c := s.Consultation[i]
		label := RelativePeriodLabel(dt, c.DayIndex)
		out["사용법"] = append(out["사용법"], Point{label, float64(c.HowToUse)})
		out["오류문의"] = append(out["오류문의"], Point{label, float64(c.Error)})
		out["불편신고"] = append(out["불편신고"], Point{label, float64(c.Inconvenience)})
		out["기타"] = append(out["기타"], Point{label, float64(c.Etc)})
	}
	return out
}

// normalGroup is the single group the "normal" division is shown as.
const normalGroup = "일반"

// NormalizeMids returns the mid-category groups to chart. The normal
// division has no meaningful mid level, so its subs are folded into one
// group; previous counts are kept only where non-zero.
func NormalizeMids(division model.Division, mids []model.MidCounts) []model.MidCounts {
	if division != model.DivisionNormal {
		return mids
	}
	folded := model.MidCounts{MidCategory: normalGroup, Subs: []model.SubCount{}}
	for _, m := range mids {
		for _, sub := range m.Subs {
			out := model.SubCount{SubCategory: sub.SubCategory, Cnt: sub.Cnt}
			if sub.PrevCnt != nil && *sub.PrevCnt != 0 {
				prev := *sub.PrevCnt
				out.PrevCnt = &prev
			}
			folded.Subs = append(folded.Subs, out)
		}
	}
	return []model.MidCounts{folded}
}

// Mids returns the current period's nested counts from s.
func Mids(s model.Summary) []model.MidCounts {
	if len(s.CatMidSubNested) == 0 {
		return nil
	}
	return s.CatMidSubNested[0].Mids
}

// HasComparison reports whether a group carries previous counts to draw
// next to the current ones.
func HasComparison(m model.MidCounts) bool {
	return len(m.Subs) > 0 && m.Subs[0].PrevCnt != nil
}

// TagRow is one numbered row of a top-tag table.
type TagRow struct {
	No          int
	SubCategory string
	Cnt         int64
	TrendPct    float64
}

// Trend renders the row's trend percent with an explicit sign.
func (r TagRow) Trend() string {
	if r.TrendPct > 0 {
		return fmt.Sprintf("+%.1f%%", r.TrendPct)
	}
	return fmt.Sprintf("%.1f%%", r.TrendPct)
}

// TopTags numbers tags from 1 in the order given.
func TopTags(tags []model.TopTag) []TagRow {
	rows := make([]TagRow, len(tags))
	for i, t := range tags {
		rows[i] = TagRow{No: i + 1, SubCategory: t.SubCategory, Cnt: t.Cnt, TrendPct: t.TrendPct}
	}
	return rows
}
