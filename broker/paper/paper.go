// Package paper is an in-memory broker.Gateway for tests and dry runs. It
// fills orders immediately at the requested price, tracks venue positions,
// and can be scripted to reject orders or fail calls.
package paper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rangefade/broker"
	"rangefade/internal/id"
	"rangefade/market"
)

type Gateway struct {
	mu        sync.Mutex
	quotes    map[string]market.Quote
	candles   map[string][]market.Candle
	positions map[string]*broker.VenuePosition
	symbols   map[string]broker.SymbolInfo

	// Scripted behavior for tests.
	RejectOrders bool    // venue declines new orders
	RejectReason string  // reason reported with declined orders
	FailCalls    bool    // every call returns a transport error
	FailClose    bool    // close requests report failure
	ClosePnL     float64 // realized P&L reported on successful closes

	submitted []broker.OrderRequest
	closes    int
}

func New() *Gateway {
	return &Gateway{
		quotes:    make(map[string]market.Quote),
		candles:   make(map[string][]market.Candle),
		positions: make(map[string]*broker.VenuePosition),
		symbols:   make(map[string]broker.SymbolInfo),
	}
}

// SetQuote scripts the current quote for a symbol.
func (g *Gateway) SetQuote(q market.Quote) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.quotes[q.Symbol] = q
}

// SetCandles scripts the candle history for a symbol.
func (g *Gateway) SetCandles(symbol string, candles []market.Candle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.candles[symbol] = candles
}

// SetSymbol scripts the preflight description for a symbol.
func (g *Gateway) SetSymbol(info broker.SymbolInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.symbols[info.Name] = info
}

// RemovePosition simulates the venue closing a position (TP/SL hit).
func (g *Gateway) RemovePosition(symbol string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.positions, symbol)
}

// Submitted returns all order requests seen so far.
func (g *Gateway) Submitted() []broker.OrderRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]broker.OrderRequest, len(g.submitted))
	copy(out, g.submitted)
	return out
}

// CloseRequests returns how many close calls were made.
func (g *Gateway) CloseRequests() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closes
}

func (g *Gateway) Candles(ctx context.Context, symbol string, _ market.Granularity, count int) ([]market.Candle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCalls {
		return nil, fmt.Errorf("paper: scripted failure")
	}
	cs := g.candles[symbol]
	if len(cs) > count {
		cs = cs[len(cs)-count:]
	}
	out := make([]market.Candle, len(cs))
	copy(out, cs)
	return out, nil
}

func (g *Gateway) Quote(ctx context.Context, symbol string) (market.Quote, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCalls {
		return market.Quote{}, fmt.Errorf("paper: scripted failure")
	}
	q, ok := g.quotes[symbol]
	if !ok {
		return market.Quote{}, fmt.Errorf("paper: no quote for %s", symbol)
	}
	return q, nil
}

func (g *Gateway) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCalls {
		return broker.OrderResult{}, fmt.Errorf("paper: scripted failure")
	}

	g.submitted = append(g.submitted, req)

	if g.RejectOrders {
		reason := g.RejectReason
		if reason == "" {
			reason = "rejected"
		}
		return broker.OrderResult{Accepted: false, Reason: reason}, nil
	}

	ref := id.New()
	g.positions[req.Symbol] = &broker.VenuePosition{
		Symbol:     req.Symbol,
		VenueRef:   ref,
		Direction:  req.Direction,
		Volume:     req.Volume,
		EntryPrice: req.Price,
		OpenTime:   time.Now().UTC(),
	}
	return broker.OrderResult{Accepted: true, VenueRef: ref}, nil
}

func (g *Gateway) OpenPosition(ctx context.Context, symbol string) (*broker.VenuePosition, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCalls {
		return nil, fmt.Errorf("paper: scripted failure")
	}
	p, ok := g.positions[symbol]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (g *Gateway) ClosePosition(ctx context.Context, symbol, venueRef string) (broker.CloseResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closes++
	if g.FailCalls {
		return broker.CloseResult{}, fmt.Errorf("paper: scripted failure")
	}
	if g.FailClose {
		return broker.CloseResult{Closed: false, Reason: "requote"}, nil
	}

	p, ok := g.positions[symbol]
	if !ok {
		return broker.CloseResult{Closed: false, Reason: "no position"}, nil
	}

	exit := p.EntryPrice
	if q, ok := g.quotes[symbol]; ok {
		if p.Direction == market.Long {
			exit = q.Bid
		} else {
			exit = q.Ask
		}
	}
	delete(g.positions, symbol)
	return broker.CloseResult{Closed: true, ExitPrice: exit, RealizedPnL: g.ClosePnL}, nil
}

func (g *Gateway) DescribeSymbol(ctx context.Context, symbol string) (broker.SymbolInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailCalls {
		return broker.SymbolInfo{}, fmt.Errorf("paper: scripted failure")
	}
	info, ok := g.symbols[symbol]
	if !ok {
		return broker.SymbolInfo{}, fmt.Errorf("paper: unknown symbol %s", symbol)
	}
	return info, nil
}
