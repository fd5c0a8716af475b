// Package breakout decides whether a live price outside the reference range
// produces a fade signal. This is a mean-reversion fade: the signal trades
// against the breakout direction, betting on a move back into the range.
package breakout

import (
	"rangefade/market"
	"rangefade/ranges"
)

// Detect returns the fade direction for price against the range, or ok=false
// when price is inside the range. Prices exactly on a bound are not signals;
// strict inequality is required.
func Detect(price float64, r ranges.DailyRange) (market.Direction, bool) {
	switch {
	case price > r.High:
		return market.Short, true
	case price < r.Low:
		return market.Long, true
	default:
		return "", false
	}
}
