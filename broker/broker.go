// Package broker defines the gateway surface the bot needs from a trading
// venue: candles, quotes, order placement, and position queries.
package broker

import (
	"context"
	"time"

	"rangefade/market"
)

// Gateway is the minimal venue surface the engine operates against.
// Implementations must bound every call with the context deadline.
type Gateway interface {
	Candles(ctx context.Context, symbol string, g market.Granularity, count int) ([]market.Candle, error)
	Quote(ctx context.Context, symbol string) (market.Quote, error)
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderResult, error)
	OpenPosition(ctx context.Context, symbol string) (*VenuePosition, error)
	ClosePosition(ctx context.Context, symbol, venueRef string) (CloseResult, error)
	DescribeSymbol(ctx context.Context, symbol string) (SymbolInfo, error)
}

// OrderRequest is a market order with attached stop and target.
type OrderRequest struct {
	Symbol     string
	Direction  market.Direction
	Volume     float64
	Price      float64
	StopLoss   float64
	TakeProfit float64
}

// OrderResult reports the venue's decision on a submitted order.
type OrderResult struct {
	Accepted bool
	VenueRef string // venue-assigned ticket, set when accepted
	Reason   string // venue rejection reason, set when not accepted
}

// VenuePosition is the venue-side view of an open position.
type VenuePosition struct {
	Symbol     string
	VenueRef   string
	Direction  market.Direction
	Volume     float64
	EntryPrice float64
	Profit     float64 // venue-reported floating P&L
	OpenTime   time.Time
}

// CloseResult reports the outcome of a close request.
type CloseResult struct {
	Closed      bool
	ExitPrice   float64
	RealizedPnL float64
	Reason      string // venue failure reason, set when not closed
}

// SymbolInfo describes a venue symbol; used for preflight checks only.
type SymbolInfo struct {
	Name        string
	Description string
	Tradable    bool
	Spread      float64
	Digits      int
}
