package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendNumberMode(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     Result
	}{
		{"increase", 120, 100, Result{Up, "+20.0%"}},
		{"decrease", 80, 100, Result{Down, "-20.0%"}},
		{"unchanged", 100, 100, Result{Neutral, "0.0%"}},
		{"zero base zero current", 0, 0, Result{Neutral, "0.0%"}},
		{"zero base positive current", 7, 0, Result{Up, "+100.0%"}},
		{"fractional decrease", 77.5, 100, Result{Down, "-22.5%"}},
		{"tiny change rounds to zero", 10000, 10001, Result{Down, "0.0%"}},
		{"one third", 4, 3, Result{Up, "+33.3%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Trend(tt.current, tt.previous, ModeNumber))
		})
	}
}

func TestTrendRatioMode(t *testing.T) {
	assert.Equal(t, Result{Up, "5.5%"}, Trend(30.5, 25, ModeRatio))
	assert.Equal(t, Result{Down, "-3.2%"}, Trend(21.8, 25, ModeRatio))
	assert.Equal(t, Result{Neutral, "0.0%"}, Trend(25, 25, ModeRatio))
	assert.Equal(t, Result{Up, "+100.0%"}, Trend(12, 0, ModeRatio))

	// Exact ties round away from zero.
	assert.Equal(t, Result{Up, "0.3%"}, Trend(10.25, 10, ModeRatio))
	assert.Equal(t, Result{Down, "-0.3%"}, Trend(10, 10.25, ModeRatio))
	assert.Equal(t, Result{Up, "1.3%"}, Trend(11.25, 10, ModeRatio))
}

func TestTrendDirectionFollowsSign(t *testing.T) {
	for prev := 1.0; prev <= 50; prev += 7 {
		for cur := 0.0; cur <= 60; cur += 3 {
			got := Trend(cur, prev, ModeNumber).Direction
			switch {
			case cur > prev:
				assert.Equal(t, Up, got)
			case cur < prev:
				assert.Equal(t, Down, got)
			default:
				assert.Equal(t, Neutral, got)
			}
			assert.Equal(t, got, Trend(cur, prev, ModeRatio).Direction)
		}
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 0.0, Ratio(50, 0, 1))
	assert.Equal(t, 25.0, Ratio(50, 200, 1))
	assert.Equal(t, 33.0, Ratio(33, 100, 1))
	assert.Equal(t, 33.3, Ratio(1, 3, 1))
	assert.Equal(t, 66.67, Ratio(2, 3, 2))
}

func TestDelta(t *testing.T) {
	assert.Equal(t, Result{Up, "+3건"}, Delta(10, 7, "건"))
	assert.Equal(t, Result{Down, "-2건"}, Delta(5, 7, "건"))
	assert.Equal(t, Result{Neutral, "0건"}, Delta(5, 5, "건"))
}

func TestTimeDifference(t *testing.T) {
	got, err := TimeDifference("01:30:00", "01:00:00")
	require.NoError(t, err)
	assert.Equal(t, UpReverse, got.Direction)
	assert.Equal(t, 30.0, got.DeltaMinutes)
	assert.Equal(t, "0시간 30분", got.Display)
	assert.Equal(t, "1시간 30분", got.Current)

	got, err = TimeDifference("01:00:00", "01:30:00")
	require.NoError(t, err)
	assert.Equal(t, DownReverse, got.Direction)
	assert.Equal(t, -30.0, got.DeltaMinutes)
	assert.Equal(t, "0시간 30분", got.Display)

	got, err = TimeDifference("00:10:00", "00:10:00")
	require.NoError(t, err)
	assert.Equal(t, Neutral, got.Direction)
	assert.Equal(t, "0시간 0분", got.Display)
}

func TestTimeDifferenceRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", "1:xx:00", "01:75:00", "1:2:3:4"} {
		_, err := TimeDifference(in, "00:00:00")
		assert.ErrorIs(t, err, ErrMalformedClock, "input %q", in)
	}
	_, err := TimeDifference("00:00:00", "nope")
	assert.ErrorIs(t, err, ErrMalformedClock)
}

func TestClockMinutes(t *testing.T) {
	m, err := ClockMinutes("00:45:30")
	require.NoError(t, err)
	assert.Equal(t, 45.5, m)

	m, err = ClockMinutes("02:05")
	require.NoError(t, err)
	assert.Equal(t, 125.0, m)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1시간 30분", FormatDuration(90))
	assert.Equal(t, "0시간 45분", FormatDuration(-45))
	assert.Equal(t, "1시간 0분", FormatDuration(59.9))
}

func TestWithUnit(t *testing.T) {
	assert.Equal(t, "120건", WithUnit(120, "건"))
	assert.Equal(t, "1,234건", WithUnit(1234, "건"))
	assert.Equal(t, "25.0%", Percent(25))
}

func TestRoundHalfUp(t *testing.T) {
	assert.Equal(t, 2.3, roundHalfUp(2.25, 1))
	assert.Equal(t, -2.2, roundHalfUp(-2.25, 1))
	assert.Equal(t, 3.0, roundHalfUp(2.5, 0))
}
