// Package session maps wall-clock time in a fixed reference timezone to the
// trading day's phases. All boundary math lives here so the rest of the bot
// can be tested with injected times, including DST-transition days.
package session

import (
	"fmt"
	"time"
)

// Phase is the time-of-day state of the trading pipeline.
type Phase int

const (
	Closed Phase = iota
	Observation
	PreExecution
	Execution
)

func (p Phase) String() string {
	switch p {
	case Observation:
		return "OBSERVATION"
	case PreExecution:
		return "PRE_EXECUTION"
	case Execution:
		return "EXECUTION"
	default:
		return "CLOSED"
	}
}

// resetGrace is the window past local midnight in which a day rollover is
// detected. Ticks inside the window on the same calendar day must trigger at
// most one reset, which the caller enforces by tracking the last reset day.
const resetGrace = 5 * time.Minute

// Clock derives session phases from boundary hours in a reference timezone.
// Boundaries are half-open: [start, end).
type Clock struct {
	loc       *time.Location
	obsStart  int
	obsEnd    int
	execStart int
	execEnd   int
}

// NewClock builds a Clock from local boundary hours. The hours must form the
// pipeline observation -> pre-execution -> execution within one calendar day.
func NewClock(tz string, obsStart, obsEnd, execStart, execEnd int) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	if !(0 <= obsStart && obsStart < obsEnd && obsEnd <= execStart && execStart < execEnd && execEnd <= 24) {
		return nil, fmt.Errorf("session hours must be ordered: obs [%d,%d) exec [%d,%d)",
			obsStart, obsEnd, execStart, execEnd)
	}
	return &Clock{
		loc:       loc,
		obsStart:  obsStart,
		obsEnd:    obsEnd,
		execStart: execStart,
		execEnd:   execEnd,
	}, nil
}

// Phase returns the session phase for the given instant.
func (c *Clock) Phase(now time.Time) Phase {
	local := now.In(c.loc)
	h := local.Hour()
	switch {
	case h >= c.obsStart && h < c.obsEnd:
		return Observation
	case h >= c.obsEnd && h < c.execStart:
		return PreExecution
	case h >= c.execStart && h < c.execEnd:
		return Execution
	default:
		return Closed
	}
}

// TradingDay returns the calendar date of the instant in the reference
// timezone, truncated to midnight local time.
func (c *Clock) TradingDay(now time.Time) time.Time {
	local := now.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// IsNewDay reports whether the instant falls in the rollover grace window of
// a calendar day later than lastDay. Callers reset per-day state when this
// returns true and then advance lastDay, so the reset fires exactly once even
// when several ticks land inside the same grace window.
func (c *Clock) IsNewDay(now time.Time, lastDay time.Time) bool {
	local := now.In(c.loc)
	if local.Hour() != 0 || local.Minute() >= int(resetGrace.Minutes()) {
		return false
	}
	return c.TradingDay(now).After(lastDay)
}

// ObservationWindowUTC returns the UTC bounds [start, end) of the observation
// window for the given trading day. The conversion uses that day's date in
// the reference timezone, so the bounds stay correct across DST transitions.
func (c *Clock) ObservationWindowUTC(day time.Time) (time.Time, time.Time) {
	local := day.In(c.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), c.obsStart, 0, 0, 0, c.loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), c.obsEnd, 0, 0, 0, c.loc)
	return start.UTC(), end.UTC()
}

// Location exposes the reference timezone for logging.
func (c *Clock) Location() *time.Location { return c.loc }
