// Package position owns the lifecycle of at most one open position per
// symbol: entry, venue-side reconciliation, and forced exit. State only
// advances on a confirmed gateway response, so a failed call leaves the
// FLAT/OPEN invariant intact and the engine retries on its next tick.
package position

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"rangefade/broker"
	"rangefade/internal/id"
	"rangefade/journal"
	"rangefade/market"
	"rangefade/risk"
)

// Open is a confirmed venue position under management.
type Open struct {
	TradeID   string
	Symbol    string
	Direction market.Direction
	Entry     float64
	Target    float64
	Stop      float64
	EntryTime time.Time
	VenueRef  string
}

// Manager tracks open positions keyed by symbol. It is driven from the
// engine's single tick loop and is not safe for concurrent use.
type Manager struct {
	gw   broker.Gateway
	jrnl journal.Journal
	lot  float64
	log  *zap.Logger
	open map[string]Open
}

func NewManager(gw broker.Gateway, jrnl journal.Journal, lot float64, log *zap.Logger) *Manager {
	return &Manager{
		gw:   gw,
		jrnl: jrnl,
		lot:  lot,
		log:  log,
		open: make(map[string]Open),
	}
}

// Lookup returns the managed position for symbol, if any.
func (m *Manager) Lookup(symbol string) (Open, bool) {
	p, ok := m.open[symbol]
	return p, ok
}

// Count returns the number of open positions.
func (m *Manager) Count() int { return len(m.open) }

// Symbols returns the symbols with open positions.
func (m *Manager) Symbols() []string {
	out := make([]string, 0, len(m.open))
	for s := range m.open {
		out = append(out, s)
	}
	return out
}

// Enter submits the intent to the venue. On acceptance the position becomes
// OPEN; on venue rejection it stays FLAT and an ORDER_REJECTED error is
// journaled (no retry this tick). A transport failure is returned to the
// caller as a recoverable error without any state change.
func (m *Manager) Enter(ctx context.Context, in risk.Intent, now time.Time) error {
	if _, ok := m.open[in.Symbol]; ok {
		return fmt.Errorf("position already open for %s", in.Symbol)
	}

	res, err := m.gw.SubmitOrder(ctx, broker.OrderRequest{
		Symbol:     in.Symbol,
		Direction:  in.Direction,
		Volume:     m.lot,
		Price:      in.Entry,
		StopLoss:   in.Stop,
		TakeProfit: in.Target,
	})
	if err != nil {
		return fmt.Errorf("submit order %s: %w", in.Symbol, err)
	}

	if !res.Accepted {
		m.recordError(journal.CatOrder, in.Symbol, fmt.Sprintf("order rejected: %s", res.Reason), now)
		m.log.Warn("order rejected",
			zap.String("symbol", in.Symbol),
			zap.String("reason", res.Reason))
		return nil
	}

	m.open[in.Symbol] = Open{
		TradeID:   id.New(),
		Symbol:    in.Symbol,
		Direction: in.Direction,
		Entry:     in.Entry,
		Target:    in.Target,
		Stop:      in.Stop,
		EntryTime: now,
		VenueRef:  res.VenueRef,
	}

	m.log.Info("position opened",
		zap.String("symbol", in.Symbol),
		zap.String("direction", string(in.Direction)),
		zap.Float64("entry", in.Entry),
		zap.Float64("target", in.Target),
		zap.Float64("stop", in.Stop),
		zap.String("ticket", res.VenueRef))
	return nil
}

// Reconcile checks whether the venue still holds the position for symbol.
// When it is gone the stop or target was hit at the venue: realized P&L is
// computed from entry vs target, a "TP/SL Hit" trade is journaled, and the
// symbol returns to FLAT. A failed query changes nothing.
func (m *Manager) Reconcile(ctx context.Context, symbol string, now time.Time) error {
	p, ok := m.open[symbol]
	if !ok {
		return nil
	}

	vp, err := m.gw.OpenPosition(ctx, symbol)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", symbol, err)
	}
	if vp != nil {
		return nil // still open at the venue
	}

	// Exit price defaults to the target; a live quote refines it when
	// available. P&L mirrors the venue's TP fill: distance to target.
	exit := p.Target
	if q, qerr := m.gw.Quote(ctx, symbol); qerr == nil {
		if p.Direction == market.Long {
			exit = q.Bid
		} else {
			exit = q.Ask
		}
	}

	pnl := (p.Target - p.Entry) * m.lot
	if p.Direction == market.Short {
		pnl = (p.Entry - p.Target) * m.lot
	}

	m.recordTrade(p, exit, pnl, "TP/SL Hit", now)
	delete(m.open, symbol)

	m.log.Info("position closed at venue",
		zap.String("symbol", symbol),
		zap.Float64("pnl", pnl))
	return nil
}

// Close issues a venue close for the symbol's position with the given reason
// ("TIME_EXIT" or "SHUTDOWN"). State transitions only when the venue
// confirms; an unconfirmed or failed close leaves the position under
// management so the caller retries next tick.
func (m *Manager) Close(ctx context.Context, symbol, reason string, now time.Time) error {
	p, ok := m.open[symbol]
	if !ok {
		return nil
	}

	res, err := m.gw.ClosePosition(ctx, symbol, p.VenueRef)
	if err != nil {
		return fmt.Errorf("close %s: %w", symbol, err)
	}
	if !res.Closed {
		m.recordError(journal.CatClose, symbol, fmt.Sprintf("close not confirmed: %s", res.Reason), now)
		return fmt.Errorf("close %s not confirmed: %s", symbol, res.Reason)
	}

	m.recordTrade(p, res.ExitPrice, res.RealizedPnL, reason, now)
	delete(m.open, symbol)

	m.log.Info("position force-closed",
		zap.String("symbol", symbol),
		zap.String("reason", reason),
		zap.Float64("pnl", res.RealizedPnL))
	return nil
}

// CloseAll force-closes every open position with the given reason. Failures
// are collected per symbol; positions that fail stay managed for retry.
func (m *Manager) CloseAll(ctx context.Context, reason string, now time.Time) []error {
	var errs []error
	for _, symbol := range m.Symbols() {
		if err := m.Close(ctx, symbol, reason, now); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (m *Manager) recordTrade(p Open, exit, pnl float64, reason string, now time.Time) {
	err := m.jrnl.RecordTrade(journal.TradeRecord{
		TradeID:    p.TradeID,
		Symbol:     p.Symbol,
		Direction:  string(p.Direction),
		EntryPrice: p.Entry,
		ExitPrice:  exit,
		PnL:        pnl,
		Reason:     reason,
		EntryTime:  p.EntryTime,
		ExitTime:   now,
	})
	if err != nil {
		m.log.Error("journal trade failed", zap.String("symbol", p.Symbol), zap.Error(err))
	}
}

func (m *Manager) recordError(category, symbol, msg string, now time.Time) {
	err := m.jrnl.RecordError(journal.ErrorRecord{
		ID:       id.New(),
		Category: category,
		Symbol:   symbol,
		Message:  msg,
		Time:     now,
	})
	if err != nil {
		m.log.Error("journal error failed", zap.String("symbol", symbol), zap.Error(err))
	}
}
