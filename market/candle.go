package market

import "time"

// Candle represents OHLC (Open, High, Low, Close) candlestick data
// for a single fixed-interval bar. Prices are in instrument points.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Granularity represents the time frame for candles.
type Granularity string

const (
	M1  Granularity = "M1"  // 1 minute
	M5  Granularity = "M5"  // 5 minutes
	M15 Granularity = "M15" // 15 minutes
	H1  Granularity = "H1"  // 1 hour
)
