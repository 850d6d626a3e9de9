// Package trend computes the change indicators shown on KPI cards: the
// percentage trend between two samples, a share of a total, and the
// difference between two HH:MM:SS durations.
package trend

import (
	"fmt"
	"math"
)

// Direction classifies a change for display.
type Direction string

const (
	Up      Direction = "up"
	Down    Direction = "down"
	Neutral Direction = "neutral"

	// UpReverse and DownReverse are used where a larger value is worse,
	// such as response times.
	UpReverse   Direction = "up_reverse"
	DownReverse Direction = "down_reverse"
)

// Mode selects how Trend interprets its inputs.
type Mode int

const (
	// ModeNumber treats the samples as counts and reports relative change.
	ModeNumber Mode = iota
	// ModeRatio treats the samples as percentages and reports the
	// difference in percentage points.
	ModeRatio
)

// Result is a direction plus its display string.
type Result struct {
	Direction Direction
	Display   string
}

// roundHalfUp rounds x to the given number of decimals with halves going
// toward positive infinity, matching how the dashboard API's reference
// client rounds. math.Round would send -2.25 to -2.3 instead of -2.2.
func roundHalfUp(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Floor(x*p+0.5) / p
}

// roundHalfAway rounds halves away from zero, the way the point
// difference is shown: 0.25 → 0.3 and -0.25 → -0.3.
func roundHalfAway(x float64, decimals int) float64 {
	return math.Copysign(roundHalfUp(math.Abs(x), decimals), x)
}

// Trend compares current against previous.
//
// A zero previous value has no defined relative change: 0 → 0 reports
// neutral "0.0%" and anything else reports up "+100.0%".
func Trend(current, previous float64, mode Mode) Result {
	if previous == 0 {
		if current == 0 {
			return Result{Direction: Neutral, Display: "0.0%"}
		}
		return Result{Direction: Up, Display: "+100.0%"}
	}

	change := current - previous

	if mode == ModeRatio {
		dir := Neutral
		switch {
		case current > previous:
			dir = Up
		case current < previous:
			dir = Down
		}
		return Result{Direction: dir, Display: fmt.Sprintf("%.1f%%", roundHalfAway(change, 1))}
	}

	pct := change / previous * 100

	dir := Neutral
	switch {
	case pct > 0:
		dir = Up
	case pct < 0:
		dir = Down
	}

	rounded := roundHalfUp(pct, 1)
	switch {
	case rounded > 0:
		return Result{Direction: dir, Display: fmt.Sprintf("+%.1f%%", rounded)}
	case rounded < 0:
		return Result{Direction: dir, Display: fmt.Sprintf("%.1f%%", rounded)}
	default:
		return Result{Direction: dir, Display: "0.0%"}
	}
}

// Ratio returns value as a percentage of total rounded to decimals
// places, or 0 when total is 0.
func Ratio(value, total float64, decimals int) float64 {
	if total == 0 {
		return 0
	}
	return roundHalfUp(value/total*100, decimals)
}

// Delta reports the raw difference between two counts with the given unit
// suffix, signed the way count cards show it ("+3건", "-2건", "0건").
func Delta(current, previous int64, unit string) Result {
	diff := current - previous
	switch {
	case diff > 0:
		return Result{Direction: Up, Display: fmt.Sprintf("+%d%s", diff, unit)}
	case diff < 0:
		return Result{Direction: Down, Display: fmt.Sprintf("%d%s", diff, unit)}
	default:
		return Result{Direction: Neutral, Display: "0" + unit}
	}
}
