package trend

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedClock is returned for a duration that is not HH:MM or HH:MM:SS.
var ErrMalformedClock = errors.New("malformed clock value")

// TimeDiff is the comparison of two durations.
type TimeDiff struct {
	Direction Direction
	// Display is the absolute difference, formatted.
	Display string
	// Current is the current duration, formatted.
	Current string
	// DeltaMinutes is current minus previous; positive means slower.
	DeltaMinutes float64
}

// ClockMinutes parses an HH:MM:SS (or HH:MM) duration into minutes.
func ClockMinutes(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}

	var fields [3]float64
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedClock, s)
		}
		fields[i] = float64(n)
	}
	if fields[1] >= 60 || fields[2] >= 60 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}

	return fields[0]*60 + fields[1] + fields[2]/60, nil
}

// FormatDuration renders a minute count as "{h}시간 {m}분" using its
// absolute value. Minutes that round up to 60 carry into the hour.
func FormatDuration(minutes float64) string {
	abs := math.Abs(minutes)
	hours := math.Floor(abs / 60)
	mins := roundHalfUp(math.Mod(abs, 60), 0)
	if mins == 60 {
		hours++
		mins = 0
	}
	return fmt.Sprintf("%d시간 %d분", int(hours), int(mins))
}

// TimeDifference compares two HH:MM:SS durations. A longer current
// duration reports UpReverse, a shorter one DownReverse.
func TimeDifference(current, previous string) (TimeDiff, error) {
	cur, err := ClockMinutes(current)
	if err != nil {
		return TimeDiff{}, fmt.Errorf("current duration: %w", err)
	}
	prev, err := ClockMinutes(previous)
	if err != nil {
		return TimeDiff{}, fmt.Errorf("previous duration: %w", err)
	}

	delta := cur - prev

	dir := Neutral
	switch {
	case delta > 0:
		dir = UpReverse
	case delta < 0:
		dir = DownReverse
	}

	return TimeDiff{
		Direction:    dir,
		Display:      FormatDuration(delta),
		Current:      FormatDuration(cur),
		DeltaMinutes: delta,
	}, nil
}
