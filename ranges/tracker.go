// Package ranges computes and caches the observation-window high/low range
// used as the fade reference for each symbol and trading day.
package ranges

import (
	"time"

	"go.uber.org/zap"

	"rangefade/market"
	"rangefade/session"
)

// minBars is the fewest observation-window bars required before a range is
// considered representative.
const minBars = 3

// DailyRange is the observation-window reference range for one symbol on one
// trading day. Immutable once identified.
type DailyRange struct {
	Symbol       string
	Day          time.Time
	High         float64
	Low          float64
	Size         float64
	IdentifiedAt time.Time
}

// Tracker identifies and caches one DailyRange per symbol per day.
type Tracker struct {
	clock    *session.Clock
	minRange float64
	cache    map[string]DailyRange
	log      *zap.Logger
}

func NewTracker(clock *session.Clock, minRange float64, log *zap.Logger) *Tracker {
	return &Tracker{
		clock:    clock,
		minRange: minRange,
		cache:    make(map[string]DailyRange),
		log:      log,
	}
}

// Identify computes the observation range for symbol on the given trading day
// from raw candles. It returns ok=false while the range cannot be computed
// yet: too few bars inside the window, or a range below the configured floor.
// Callers retry on a later poll. After the first success the cached range is
// returned and never recomputed for that day.
func (t *Tracker) Identify(symbol string, candles []market.Candle, day time.Time, now time.Time) (DailyRange, bool) {
	if r, ok := t.cache[symbol]; ok {
		return r, true
	}

	start, end := t.clock.ObservationWindowUTC(day)

	var (
		high, low float64
		n         int
	)
	for _, c := range candles {
		ts := c.Time.UTC()
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		if n == 0 || c.High > high {
			high = c.High
		}
		if n == 0 || c.Low < low {
			low = c.Low
		}
		n++
	}

	if n < minBars {
		t.log.Warn("insufficient observation data",
			zap.String("symbol", symbol),
			zap.Int("bars", n))
		return DailyRange{}, false
	}

	size := high - low
	if size < t.minRange {
		t.log.Warn("observation range below minimum",
			zap.String("symbol", symbol),
			zap.Float64("size", size),
			zap.Float64("min", t.minRange))
		return DailyRange{}, false
	}

	r := DailyRange{
		Symbol:       symbol,
		Day:          day,
		High:         high,
		Low:          low,
		Size:         size,
		IdentifiedAt: now,
	}
	t.cache[symbol] = r

	t.log.Info("observation range identified",
		zap.String("symbol", symbol),
		zap.Float64("high", high),
		zap.Float64("low", low),
		zap.Float64("size", size))
	return r, true
}

// Get returns the cached range for symbol, if one was identified today.
func (t *Tracker) Get(symbol string) (DailyRange, bool) {
	r, ok := t.cache[symbol]
	return r, ok
}

// Reset discards all cached ranges. Called once at daily rollover.
func (t *Tracker) Reset() {
	t.cache = make(map[string]DailyRange)
}
