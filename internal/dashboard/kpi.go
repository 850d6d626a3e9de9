// Package dashboard turns a summary payload into what the dashboard
// shows: KPI cards, period-relative labels, chart series, top-tag rows,
// and the tag exclusion filter.
package dashboard

import (
	"strconv"
	"strings"

	"github.com/nhle/carepartner/internal/model"
	"github.com/nhle/carepartner/internal/trend"
)

// Accent is the color family a card is drawn with.
type Accent string

const (
	AccentBlue   Accent = "blue"
	AccentGreen  Accent = "green"
	AccentOrange Accent = "orange"
	AccentPurple Accent = "purple"
)

// Card is one KPI tile.
type Card struct {
	Title  string
	Value  string
	Trend  trend.Result
	Period string
	Accent Accent
}

// zeroClock stands in for a missing waiting time.
const zeroClock = "00:00:00"

// BuildKPIs returns the ten KPI cards for s, in display order.
func BuildKPIs(s model.Summary, dt model.DailyType) []Card {
	top := s.DashTop
	period := ComparisonLabel(dt)

	count := func(title string, cur, prev int64, accent Accent) Card {
		return Card{
			Title:  title,
			Value:  trend.WithUnit(cur, "건"),
			Trend:  trend.Trend(float64(cur), float64(prev), trend.ModeNumber),
			Period: period,
			Accent: accent,
		}
	}

	share := func(title string, part, total, lastPart, lastTotal int64) Card {
		cur := trend.Ratio(float64(part), float64(total), 1)
		prev := trend.Ratio(float64(lastPart), float64(lastTotal), 1)
		return Card{
			Title:  title,
			Value:  number(cur) + "%",
			Trend:  trend.Trend(cur, prev, trend.ModeRatio),
			Period: period,
			Accent: AccentGreen,
		}
	}

	callBack := Card{
		Title: "콜백 인입 건",
		Value: trend.WithUnit(top.CallBack, "건"),
		Trend: trend.Result{
			Direction: trend.Trend(float64(top.CallBack), float64(top.LastCallBack), trend.ModeNumber).Direction,
			Display:   trend.Delta(top.CallBack, top.LastCallBack, "건").Display,
		},
		Period: period,
		Accent: AccentOrange,
	}

	return []Card{
		count("총 상담 건수", top.TotalCount, top.LastTotalCount, AccentBlue),
		count("요양사 상담 건수", top.CaregiverCount, top.LastCaregiverCount, AccentBlue),
		count("기관 상담 건수", top.OrgCount, top.LastOrgCount, AccentGreen),
		count("아카데미 상담 건수", top.AcademyCount, top.LastAcademyCount, AccentOrange),
		share("채팅 상담율", top.ChatRate, top.TotalCount, top.LastChatRate, top.LastTotalCount),
		share("전화 상담율", top.CallRate, top.TotalCount, top.LastCallRate, top.LastTotalCount),
		callBack,
		count("콜백 완료율", top.CallBackSuc, top.LastCallBackSuc, AccentPurple),
		sameDayCard(s.DailyRate, period),
		waitingCard(s.WaitingTime, period),
	}
}

func sameDayCard(rates []model.DailyRate, period string) Card {
	var r model.DailyRate
	if len(rates) > 0 {
		r = rates[0]
	}
	return Card{
		Title: "당일 처리율",
		Value: number(r.CurrRatioPct) + "%",
		Trend: trend.Result{
			Direction: trend.Trend(r.CurrRatioPct, r.PrevRatioPct, trend.ModeNumber).Direction,
			Display:   number(r.DiffPct) + "%",
		},
		Period: period,
		Accent: AccentGreen,
	}
}

// waitingCard compares the first two waiting times. With fewer than two
// samples there is nothing to compare: the card shows "0시간 0분" and the
// trend line carries the lone sample.
func waitingCard(times []model.WaitingTime, period string) Card {
	card := Card{Title: "첫 응대시간", Period: period, Accent: AccentPurple}

	if len(times) < 2 {
		cur := zeroClock
		if len(times) == 1 && times[0].WaitingTime != "" {
			cur = times[0].WaitingTime
		}
		card.Value = "0시간 0분"
		card.Trend = trend.Result{Direction: trend.Neutral, Display: clockHoursMinutes(cur)}
		return card
	}

	cur, prev := times[0].WaitingTime, times[1].WaitingTime
	if cur == "" {
		cur = zeroClock
	}
	if prev == "" {
		prev = zeroClock
	}

	diff, err := trend.TimeDifference(cur, prev)
	if err != nil {
		card.Value = "-"
		card.Trend = trend.Result{Direction: trend.Neutral, Display: "-"}
		return card
	}
	card.Value = diff.Current
	card.Trend = trend.Result{Direction: diff.Direction, Display: diff.Display}
	return card
}

// clockHoursMinutes renders the hour and minute fields of an HH:MM:SS
// value as-is, without rounding the seconds.
func clockHoursMinutes(clock string) string {
	parts := strings.Split(clock, ":")
	if len(parts) < 2 {
		return "-"
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil {
		return "-"
	}
	return strconv.Itoa(h) + "시간 " + strconv.Itoa(m) + "분"
}

// number renders v in its shortest form: 25 → "25", 33.3 → "33.3".
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
