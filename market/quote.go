package market

import "time"

// Quote is a bid/ask snapshot for a symbol.
type Quote struct {
	Symbol string
	Bid    float64
	Ask    float64
	Time   time.Time
}

func (q Quote) Mid() float64 {
	return (q.Bid + q.Ask) / 2
}

func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}
