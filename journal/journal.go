// Package journal persists the bot's trade and error history and answers the
// aggregate queries the engine and CLI need: running total P&L and per-day
// statistics.
package journal

import "time"

// Error categories recorded with ErrorRecord. Recoverable categories are
// retried by the engine; Fatal forces a close-all and process exit.
const (
	CatConnection     = "GATEWAY_CONNECTION"
	CatSymbol         = "SYMBOL_UNAVAILABLE"
	CatData           = "INSUFFICIENT_DATA"
	CatRange          = "RANGE_INVALID"
	CatOrder          = "ORDER_REJECTED"
	CatReconciliation = "RECONCILIATION"
	CatClose          = "CLOSE_FAILED"
	CatJournal        = "JOURNAL"
	CatFatal          = "FATAL"
)

// TradeRecord is one completed round trip.
type TradeRecord struct {
	TradeID    string
	Symbol     string
	Direction  string
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
	Reason     string
	EntryTime  time.Time
	ExitTime   time.Time
}

// ErrorRecord is one recoverable or fatal failure observed by the bot.
type ErrorRecord struct {
	ID       string
	Category string
	Symbol   string
	Message  string
	Time     time.Time
}

// Stats are the per-day aggregates shown in the daily summary.
type Stats struct {
	Trades  int
	Wins    int
	Losses  int
	WinRate float64 // percent
	PnL     float64
	Errors  int
}

// Journal is the append-only trade/error store.
type Journal interface {
	RecordTrade(TradeRecord) error
	RecordError(ErrorRecord) error

	// TotalRealizedPnL sums P&L over the whole history; loaded at startup.
	TotalRealizedPnL() (float64, error)

	// DayStats aggregates trades and errors with timestamps in [start, end).
	DayStats(start, end time.Time) (Stats, error)

	Close() error
}
