// Package risk converts a fade signal into a sized trade intent and gates it
// against per-trade and daily risk limits.
package risk

import (
	"fmt"

	"rangefade/market"
	"rangefade/ranges"
)

// Intent is a fully priced candidate trade. It is ephemeral: produced here,
// consumed immediately by the position manager, never persisted.
type Intent struct {
	Symbol       string
	Direction    market.Direction
	Entry        float64
	Target       float64
	Stop         float64
	StopDistance float64
	RiskAmount   float64
}

// Sizer prices intents from the reference range.
type Sizer struct {
	StopLossMultiplier float64 // stop distance as a multiple of range size
	LotSize            float64 // configured volume per trade
}

// Size builds the intent for fading a breakout of r at entry. The target is
// the range bound being faded back toward: range high for longs, range low
// for shorts. Monetary risk is lot size times stop distance.
func (s Sizer) Size(r ranges.DailyRange, dir market.Direction, entry float64) Intent {
	stopDistance := r.Size * s.StopLossMultiplier

	var stop, target float64
	if dir == market.Long {
		stop = entry - stopDistance
		target = r.High
	} else {
		stop = entry + stopDistance
		target = r.Low
	}

	return Intent{
		Symbol:       r.Symbol,
		Direction:    dir,
		Entry:        entry,
		Target:       target,
		Stop:         stop,
		StopDistance: stopDistance,
		RiskAmount:   s.LotSize * stopDistance,
	}
}

// Violation codes for rejected intents.
const (
	CodeDailyRiskExceeded = "DAILY_RISK_EXCEEDED"
	CodeTradeRiskExceeded = "TRADE_RISK_EXCEEDED"
)

// Violation is a coded reason an intent was rejected.
type Violation struct {
	Code string
	Msg  string
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Msg)
}
