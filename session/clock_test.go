package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustClock(t *testing.T) *Clock {
	t.Helper()
	c, err := NewClock("Asia/Dubai", 5, 9, 11, 14)
	require.NoError(t, err)
	return c
}

func dubai(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Dubai")
	require.NoError(t, err)
	return loc
}

func TestNewClock_RejectsUnorderedHours(t *testing.T) {
	t.Parallel()

	_, err := NewClock("Asia/Dubai", 9, 5, 11, 14)
	assert.Error(t, err)

	_, err = NewClock("Asia/Dubai", 5, 12, 11, 14)
	assert.Error(t, err)

	_, err = NewClock("nowhere/invalid", 5, 9, 11, 14)
	assert.Error(t, err)
}

func TestPhase(t *testing.T) {
	t.Parallel()

	c := mustClock(t)
	loc := dubai(t)

	tests := []struct {
		name string
		hour int
		min  int
		want Phase
	}{
		{"before observation", 4, 59, Closed},
		{"observation open", 5, 0, Observation},
		{"observation mid", 7, 30, Observation},
		{"observation close boundary", 9, 0, PreExecution},
		{"pre-execution", 10, 15, PreExecution},
		{"execution open", 11, 0, Execution},
		{"execution mid", 13, 59, Execution},
		{"execution close boundary", 14, 0, Closed},
		{"evening", 20, 0, Closed},
		{"midnight", 0, 0, Closed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			now := time.Date(2024, 3, 12, tt.hour, tt.min, 0, 0, loc)
			assert.Equal(t, tt.want, c.Phase(now))
		})
	}
}

func TestPhase_UTCInputConverted(t *testing.T) {
	t.Parallel()

	c := mustClock(t)

	// 03:00 UTC is 07:00 in Dubai (UTC+4): observation.
	now := time.Date(2024, 3, 12, 3, 0, 0, 0, time.UTC)
	assert.Equal(t, Observation, c.Phase(now))
}

func TestIsNewDay_FiresOncePerGraceWindow(t *testing.T) {
	t.Parallel()

	c := mustClock(t)
	loc := dubai(t)

	lastDay := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)

	first := time.Date(2024, 3, 12, 0, 1, 0, 0, loc)
	second := time.Date(2024, 3, 12, 0, 3, 30, 0, loc)

	assert.True(t, c.IsNewDay(first, lastDay))

	// Caller advances lastDay after the reset; the second tick in the same
	// grace window must not fire again.
	lastDay = c.TradingDay(first)
	assert.False(t, c.IsNewDay(second, lastDay))
}

func TestIsNewDay_OutsideGraceWindow(t *testing.T) {
	t.Parallel()

	c := mustClock(t)
	loc := dubai(t)

	lastDay := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)
	late := time.Date(2024, 3, 12, 0, 6, 0, 0, loc)

	assert.False(t, c.IsNewDay(late, lastDay))
}

func TestObservationWindowUTC(t *testing.T) {
	t.Parallel()

	c := mustClock(t)
	loc := dubai(t)

	day := time.Date(2024, 3, 12, 0, 0, 0, 0, loc)
	start, end := c.ObservationWindowUTC(day)

	// Dubai is UTC+4 year-round: 05:00 local = 01:00 UTC.
	assert.Equal(t, time.Date(2024, 3, 12, 1, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 12, 5, 0, 0, 0, time.UTC), end)
}

func TestObservationWindowUTC_DSTTransition(t *testing.T) {
	t.Parallel()

	// London shifts to BST on 2024-03-31; boundaries computed from the
	// specific date must follow the shift.
	c, err := NewClock("Europe/London", 5, 9, 11, 14)
	require.NoError(t, err)

	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	before := time.Date(2024, 3, 29, 0, 0, 0, 0, loc)
	start, _ := c.ObservationWindowUTC(before)
	assert.Equal(t, 5, start.Hour()) // GMT: local == UTC

	after := time.Date(2024, 4, 1, 0, 0, 0, 0, loc)
	start, _ = c.ObservationWindowUTC(after)
	assert.Equal(t, 4, start.Hour()) // BST: local = UTC+1
}

func TestTradingDay(t *testing.T) {
	t.Parallel()

	c := mustClock(t)
	loc := dubai(t)

	// 23:30 UTC on the 11th is already 03:30 on the 12th in Dubai.
	now := time.Date(2024, 3, 11, 23, 30, 0, 0, time.UTC)
	day := c.TradingDay(now)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, loc), day)
}
